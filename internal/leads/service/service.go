// Package service implements the lead ledger: idempotent lead creation, the
// credit-spending contact unlock, and credit provisioning.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bosfinder_backend/internal/events"
	"bosfinder_backend/internal/leads/repository"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/logger"

	"github.com/google/uuid"
)

// Messages carried by UnlockResult.
const (
	MsgAlreadyUnlocked     = "Contact already unlocked"
	MsgProfileNotFound     = "Profile not found"
	MsgInsufficientCredits = "Insufficient lead credits"
	MsgUnlocked            = "Contact unlocked successfully"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	maxGrantAmount      = 1000
)

// UnlockResult reports the outcome of UnlockContact.
type UnlockResult struct {
	Success         bool
	Message         string
	Lead            repository.Lead
	LeadCredits     int
	AlreadyUnlocked bool
}

// Service is the lead ledger.
type Service struct {
	repo     repository.Repository
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates the ledger service.
func New(repo repository.Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreateLead returns the lead for (jobRequestID, bosID), creating it on
// first use. Concurrent calls for the same pair all return the same lead.
func (s *Service) GetOrCreateLead(ctx context.Context, jobRequestID, bosID string) (repository.Lead, error) {
	jobRequestID = strings.TrimSpace(jobRequestID)
	bosID = strings.TrimSpace(bosID)
	if jobRequestID == "" || bosID == "" {
		return repository.Lead{}, apperr.Validation("jobRequestId and bosId are required")
	}

	exists, err := s.repo.JobRequestExists(ctx, jobRequestID)
	if err != nil {
		return repository.Lead{}, storageError("check job request", err)
	}
	if !exists {
		return repository.Lead{}, apperr.NotFound("job request not found")
	}
	exists, err = s.repo.ProfileExists(ctx, bosID)
	if err != nil {
		return repository.Lead{}, storageError("check profile", err)
	}
	if !exists {
		return repository.Lead{}, apperr.NotFound("profile not found")
	}

	lead, created, err := s.repo.CreateLead(ctx, repository.Lead{
		ID:           repository.LeadID(jobRequestID, bosID),
		JobRequestID: jobRequestID,
		BosID:        bosID,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return repository.Lead{}, storageError("create lead", err)
	}

	if created {
		s.log.WithContext(ctx).Info("lead created", "leadId", lead.ID, "jobRequestId", jobRequestID, "bosId", bosID)
		s.eventBus.Publish(ctx, events.LeadCreated{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			JobRequestID: jobRequestID,
			BosID:        bosID,
		})
	}
	return lead, nil
}

// UnlockContact spends one credit of bosID to reveal the contact behind leadID.
// Unlocking an unlocked lead succeeds without charging. When the balance is
// exhausted the result carries Success=false together with an
// InsufficientCredits error.
func (s *Service) UnlockContact(ctx context.Context, leadID, bosID string) (UnlockResult, error) {
	leadID = strings.TrimSpace(leadID)
	bosID = strings.TrimSpace(bosID)
	if leadID == "" || bosID == "" {
		return UnlockResult{}, apperr.Validation("leadId and bosId are required")
	}

	lead, err := s.repo.GetLead(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return UnlockResult{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return UnlockResult{}, storageError("load lead", err)
	}
	if lead.BosID != bosID {
		return UnlockResult{}, apperr.Forbidden("lead belongs to another professional")
	}

	outcome, err := s.repo.Unlock(ctx, leadID, bosID, s.now())
	result := UnlockResult{Lead: outcome.Lead, LeadCredits: outcome.Balance}

	switch {
	case err == nil:
	case errors.Is(err, repository.ErrInsufficientCredits):
		result.Message = MsgInsufficientCredits
		return result, apperr.InsufficientCredits(MsgInsufficientCredits)
	case errors.Is(err, repository.ErrProfileNotFound):
		result.Message = MsgProfileNotFound
		return result, apperr.NotFound(MsgProfileNotFound)
	case errors.Is(err, repository.ErrNotFound):
		return UnlockResult{}, apperr.NotFound("lead not found")
	case errors.Is(err, repository.ErrWrongOwner):
		return UnlockResult{}, apperr.Forbidden("lead belongs to another professional")
	default:
		return UnlockResult{}, storageError("unlock contact", err)
	}

	result.Success = true
	if outcome.AlreadyUnlocked {
		result.AlreadyUnlocked = true
		result.Message = MsgAlreadyUnlocked
		return result, nil
	}

	result.Message = MsgUnlocked
	s.log.WithContext(ctx).LedgerEvent("unlock", leadID, bosID, outcome.Balance)
	s.eventBus.Publish(ctx, events.LeadUnlocked{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       leadID,
		JobRequestID: outcome.Lead.JobRequestID,
		BosID:        bosID,
		Balance:      outcome.Balance,
	})
	return result, nil
}

// ListLeadsByBos returns the professional's leads, newest first.
func (s *Service) ListLeadsByBos(ctx context.Context, bosID string) ([]repository.Lead, error) {
	if strings.TrimSpace(bosID) == "" {
		return nil, apperr.Validation("bosId is required")
	}
	leads, err := s.repo.ListByBos(ctx, bosID)
	if err != nil {
		return nil, storageError("list leads", err)
	}
	return leads, nil
}

// GrantCredits adds amount credits to the balance of bosID and returns the new balance.
func (s *Service) GrantCredits(ctx context.Context, bosID string, amount int, note string) (int, error) {
	bosID = strings.TrimSpace(bosID)
	if bosID == "" {
		return 0, apperr.Validation("bosId is required")
	}
	if amount <= 0 || amount > maxGrantAmount {
		return 0, apperr.Validation("amount must be between 1 and 1000")
	}

	balance, err := s.repo.Grant(ctx, bosID, amount, strings.TrimSpace(note), uuid.NewString(), s.now())
	if errors.Is(err, repository.ErrProfileNotFound) {
		return 0, apperr.NotFound("profile not found")
	}
	if err != nil {
		return 0, storageError("grant credits", err)
	}

	s.log.WithContext(ctx).LedgerEvent("grant", "", bosID, balance)
	s.eventBus.Publish(ctx, events.CreditsGranted{
		BaseEvent: events.NewBaseEvent(),
		BosID:     bosID,
		Amount:    amount,
		Reason:    note,
		Balance:   balance,
	})
	return balance, nil
}

// Balance returns the current credit balance of bosID.
func (s *Service) Balance(ctx context.Context, bosID string) (int, error) {
	balance, err := s.repo.Balance(ctx, bosID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return 0, apperr.NotFound("profile not found")
	}
	if err != nil {
		return 0, storageError("load balance", err)
	}
	return balance, nil
}

// CreditHistory returns the newest credit entries of bosID.
func (s *Service) CreditHistory(ctx context.Context, bosID string, limit int) ([]repository.CreditEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	entries, err := s.repo.CreditHistory(ctx, bosID, limit)
	if err != nil {
		return nil, storageError("list credit history", err)
	}
	return entries, nil
}

// storageError translates store failures. Lost optimistic races surface as
// Conflict, everything else as a retryable Storage error.
func storageError(op string, err error) error {
	if errors.Is(err, docstore.ErrConflict) {
		return apperr.Conflict("the lead is being updated, please retry").WithOp(op)
	}
	return apperr.Storage("storage unavailable", err).WithOp(op)
}
