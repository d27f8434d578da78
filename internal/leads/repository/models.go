package repository

import (
	"time"

	"github.com/google/uuid"
)

// Credit entry types.
const (
	EntryTypeUnlock = "unlock"
	EntryTypeGrant  = "grant"
)

// leadNamespace seeds the name-based lead ids. Changing it orphans every stored lead.
var leadNamespace = uuid.MustParse("6f1c9a52-3d0e-4b8f-9a57-0c2b7e4d1a38")

// Lead records whether a professional paid to see a job request's contact.
type Lead struct {
	ID                 string     `json:"id"`
	JobRequestID       string     `json:"jobRequestId"`
	BosID              string     `json:"bosId"`
	HasUnlockedContact bool       `json:"hasUnlockedContact"`
	UnlockedAt         *time.Time `json:"unlockedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// CreditEntry is one line of a professional's credit history.
type CreditEntry struct {
	ID           string    `json:"id"`
	BosID        string    `json:"bosId"`
	Type         string    `json:"type"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balanceAfter"`
	LeadID       string    `json:"leadId,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UnlockOutcome describes what an unlock attempt found and did.
type UnlockOutcome struct {
	Lead            Lead
	Balance         int
	AlreadyUnlocked bool
}

// profileCredits is the slice of a bos profile the ledger reads.
type profileCredits struct {
	LeadCredits int `json:"leadCredits"`
}

// LeadID derives the id of the lead for a (job request, bos) pair. The same
// pair always maps to the same id, which makes the store's primary key the
// uniqueness constraint.
func LeadID(jobRequestID, bosID string) string {
	return uuid.NewSHA1(leadNamespace, []byte(jobRequestID+"/"+bosID)).String()
}

// UnlockEntryID is the id of the credit entry charged for unlocking leadID.
// A lead can only ever own one such entry.
func UnlockEntryID(leadID string) string {
	return "unlock:" + leadID
}
