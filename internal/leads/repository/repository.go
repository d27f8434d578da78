package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bosfinder_backend/internal/shared/collections"
	"bosfinder_backend/platform/docstore"
)

var (
	ErrNotFound            = errors.New("lead not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrWrongOwner          = errors.New("lead belongs to another professional")
	ErrInsufficientCredits = errors.New("insufficient lead credits")
	ErrDuplicateEntry      = errors.New("credit entry already recorded")
)

// DocRepository persists leads and credit entries in the document store.
type DocRepository struct {
	store docstore.Store
}

// New creates a leads repository on store.
func New(store docstore.Store) *DocRepository {
	return &DocRepository{store: store}
}

// Compile-time check that DocRepository implements Repository.
var _ Repository = (*DocRepository)(nil)

func (r *DocRepository) GetLead(ctx context.Context, id string) (Lead, error) {
	doc, err := r.store.Get(ctx, collections.Leads, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return docstore.Decode[Lead](doc.Data)
}

func (r *DocRepository) ListByBos(ctx context.Context, bosID string) ([]Lead, error) {
	docs, err := r.store.Query(ctx, collections.Leads, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("bosId", docstore.OpEqual, bosID)},
		Order:   &docstore.Order{Field: "createdAt", Kind: docstore.OrderTime, Descending: true},
	})
	if err != nil {
		return nil, err
	}

	leads := make([]Lead, 0, len(docs))
	for _, doc := range docs {
		lead, err := docstore.Decode[Lead](doc.Data)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func (r *DocRepository) CreateLead(ctx context.Context, lead Lead) (Lead, bool, error) {
	data, err := docstore.Encode(lead)
	if err != nil {
		return Lead{}, false, err
	}

	err = r.store.Create(ctx, collections.Leads, lead.ID, data)
	if err == nil {
		return lead, true, nil
	}
	if !errors.Is(err, docstore.ErrAlreadyExists) {
		return Lead{}, false, err
	}

	existing, err := r.GetLead(ctx, lead.ID)
	if err != nil {
		return Lead{}, false, fmt.Errorf("load existing lead %s: %w", lead.ID, err)
	}
	return existing, false, nil
}

func (r *DocRepository) JobRequestExists(ctx context.Context, jobRequestID string) (bool, error) {
	return r.exists(ctx, collections.JobRequests, jobRequestID)
}

func (r *DocRepository) ProfileExists(ctx context.Context, bosID string) (bool, error) {
	return r.exists(ctx, collections.BosProfiles, bosID)
}

func (r *DocRepository) exists(ctx context.Context, collection, id string) (bool, error) {
	_, err := r.store.Get(ctx, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Unlock spends one credit of bosID on leadID. The lead, the profile balance
// and the unlock entry are read and written in a single atomic update, so
// concurrent calls for the same lead charge at most once and a balance never
// drops below zero.
//
// An already unlocked lead returns AlreadyUnlocked without writing anything.
// ErrInsufficientCredits comes with the outcome so callers can report the balance.
func (r *DocRepository) Unlock(ctx context.Context, leadID, bosID string, now time.Time) (UnlockOutcome, error) {
	leadKey := docstore.NewKey(collections.Leads, leadID)
	profileKey := docstore.NewKey(collections.BosProfiles, bosID)
	entryKey := docstore.NewKey(collections.CreditEntries, UnlockEntryID(leadID))

	// Reassigned on every attempt; after AtomicUpdate returns it holds the
	// outcome of the attempt that was committed or aborted.
	var outcome UnlockOutcome

	err := r.store.AtomicUpdate(ctx, []docstore.Key{leadKey, profileKey, entryKey}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		outcome = UnlockOutcome{}
		leadSnap, profileSnap, entrySnap := snaps[0], snaps[1], snaps[2]

		if !leadSnap.Exists {
			return nil, ErrNotFound
		}
		lead, err := docstore.Decode[Lead](leadSnap.Data)
		if err != nil {
			return nil, err
		}
		if lead.BosID != bosID {
			return nil, ErrWrongOwner
		}
		outcome.Lead = lead

		if !profileSnap.Exists {
			return nil, ErrProfileNotFound
		}
		profile, err := docstore.Decode[profileCredits](profileSnap.Data)
		if err != nil {
			return nil, err
		}
		outcome.Balance = profile.LeadCredits

		if lead.HasUnlockedContact {
			outcome.AlreadyUnlocked = true
			return nil, nil
		}

		unlockedAt := now
		lead.HasUnlockedContact = true
		lead.UnlockedAt = &unlockedAt
		leadData, err := docstore.Encode(lead)
		if err != nil {
			return nil, err
		}

		// The entry exists only if this lead was charged before; restore the
		// flag without charging again.
		if entrySnap.Exists {
			outcome.Lead = lead
			outcome.AlreadyUnlocked = true
			return []docstore.Write{{Key: leadKey, Data: leadData}}, nil
		}

		if profile.LeadCredits <= 0 {
			return nil, ErrInsufficientCredits
		}

		balance := profile.LeadCredits - 1
		profileData, err := docstore.Patch(profileSnap.Data, map[string]any{
			collections.FieldLeadCredits: balance,
			collections.FieldUpdatedAt:   now,
		})
		if err != nil {
			return nil, err
		}
		entryData, err := docstore.Encode(CreditEntry{
			ID:           entryKey.ID,
			BosID:        bosID,
			Type:         EntryTypeUnlock,
			Amount:       -1,
			BalanceAfter: balance,
			LeadID:       leadID,
			CreatedAt:    now,
		})
		if err != nil {
			return nil, err
		}

		outcome.Lead = lead
		outcome.Balance = balance
		return []docstore.Write{
			{Key: profileKey, Data: profileData},
			{Key: leadKey, Data: leadData},
			{Key: entryKey, Data: entryData},
		}, nil
	})
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Grant adds amount credits to bosID and records a grant entry under entryID.
func (r *DocRepository) Grant(ctx context.Context, bosID string, amount int, note, entryID string, now time.Time) (int, error) {
	profileKey := docstore.NewKey(collections.BosProfiles, bosID)
	entryKey := docstore.NewKey(collections.CreditEntries, entryID)

	var balance int
	err := r.store.AtomicUpdate(ctx, []docstore.Key{profileKey, entryKey}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		if !snaps[0].Exists {
			return nil, ErrProfileNotFound
		}
		if snaps[1].Exists {
			return nil, ErrDuplicateEntry
		}
		profile, err := docstore.Decode[profileCredits](snaps[0].Data)
		if err != nil {
			return nil, err
		}

		balance = profile.LeadCredits + amount
		profileData, err := docstore.Patch(snaps[0].Data, map[string]any{
			collections.FieldLeadCredits: balance,
			collections.FieldUpdatedAt:   now,
		})
		if err != nil {
			return nil, err
		}
		entryData, err := docstore.Encode(CreditEntry{
			ID:           entryID,
			BosID:        bosID,
			Type:         EntryTypeGrant,
			Amount:       amount,
			BalanceAfter: balance,
			Note:         note,
			CreatedAt:    now,
		})
		if err != nil {
			return nil, err
		}
		return []docstore.Write{
			{Key: profileKey, Data: profileData},
			{Key: entryKey, Data: entryData},
		}, nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *DocRepository) Balance(ctx context.Context, bosID string) (int, error) {
	doc, err := r.store.Get(ctx, collections.BosProfiles, bosID)
	if errors.Is(err, docstore.ErrNotFound) {
		return 0, ErrProfileNotFound
	}
	if err != nil {
		return 0, err
	}
	profile, err := docstore.Decode[profileCredits](doc.Data)
	if err != nil {
		return 0, err
	}
	return profile.LeadCredits, nil
}

func (r *DocRepository) CreditHistory(ctx context.Context, bosID string, limit int) ([]CreditEntry, error) {
	docs, err := r.store.Query(ctx, collections.CreditEntries, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("bosId", docstore.OpEqual, bosID)},
		Order:   &docstore.Order{Field: "createdAt", Kind: docstore.OrderTime, Descending: true},
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]CreditEntry, 0, len(docs))
	for _, doc := range docs {
		entry, err := docstore.Decode[CreditEntry](doc.Data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
