package repository

import (
	"context"
	"time"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to leads.
type LeadReader interface {
	GetLead(ctx context.Context, id string) (Lead, error)
	ListByBos(ctx context.Context, bosID string) ([]Lead, error)
}

// LeadWriter creates leads. Creation is idempotent per (job request, bos) pair.
type LeadWriter interface {
	// CreateLead stores lead unless a lead with the same id exists; the stored
	// lead is returned either way and created reports which case happened.
	CreateLead(ctx context.Context, lead Lead) (stored Lead, created bool, err error)
}

// ReferenceChecker verifies the documents a lead points at.
type ReferenceChecker interface {
	JobRequestExists(ctx context.Context, jobRequestID string) (bool, error)
	ProfileExists(ctx context.Context, bosID string) (bool, error)
}

// CreditLedger moves lead credits. Every balance change happens in one atomic
// store update together with its CreditEntry.
type CreditLedger interface {
	Unlock(ctx context.Context, leadID, bosID string, now time.Time) (UnlockOutcome, error)
	Grant(ctx context.Context, bosID string, amount int, note, entryID string, now time.Time) (int, error)
	Balance(ctx context.Context, bosID string) (int, error)
	CreditHistory(ctx context.Context, bosID string, limit int) ([]CreditEntry, error)
}

// Repository is the full persistence contract of the leads context.
type Repository interface {
	LeadReader
	LeadWriter
	ReferenceChecker
	CreditLedger
}
