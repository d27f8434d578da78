package service

import (
	"context"
	"time"
)

// Client is the user posting a job request.
type Client struct {
	Role        string
	FullName    string
	PhoneNumber string
}

// ClientReader looks up the posting user. Unknown users yield an apperr NotFound.
type ClientReader interface {
	GetClient(ctx context.Context, userID string) (Client, error)
}

// CatalogLookup canonicalises categories and communes against the catalog.
type CatalogLookup interface {
	CanonicalCategory(name string) (string, error)
	CanonicalPlace(commune string) (canonical, city string, err error)
}

// LeadAccess is a professional's lead on one job request.
type LeadAccess struct {
	LeadID             string
	HasUnlockedContact bool
	UnlockedAt         *time.Time
}

// LeadGate opens (or returns) the caller's lead on a job request.
type LeadGate interface {
	OpenLead(ctx context.Context, jobRequestID, bosID string) (LeadAccess, error)
}

// BosPreferences supplies the default matching filter of a professional.
type BosPreferences interface {
	MatchingPreferences(ctx context.Context, bosID string) (categories []string, commune string, err error)
}
