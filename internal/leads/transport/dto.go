package transport

import "time"

// LeadResponse is the public representation of a lead.
type LeadResponse struct {
	ID                 string     `json:"id"`
	JobRequestID       string     `json:"jobRequestId"`
	BosID              string     `json:"bosId"`
	HasUnlockedContact bool       `json:"hasUnlockedContact"`
	UnlockedAt         *time.Time `json:"unlockedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// UnlockResponse is returned by POST /leads/:id/unlock.
type UnlockResponse struct {
	Success         bool          `json:"success"`
	Message         string        `json:"message"`
	Lead            *LeadResponse `json:"lead,omitempty"`
	LeadCredits     int           `json:"leadCredits"`
	AlreadyUnlocked bool          `json:"alreadyUnlocked,omitempty"`
}

type CreditEntryResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balanceAfter"`
	LeadID       string    `json:"leadId,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreditsResponse carries the balance and the newest ledger entries.
type CreditsResponse struct {
	Balance int                   `json:"balance"`
	History []CreditEntryResponse `json:"history"`
}

type CreditHistoryRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=200"`
}

// GrantCreditsRequest is the admin payload for manual provisioning.
type GrantCreditsRequest struct {
	Amount int    `json:"amount" validate:"required,min=1,max=1000"`
	Note   string `json:"note" validate:"max=200"`
}

type GrantCreditsResponse struct {
	BosID   string `json:"bosId"`
	Balance int    `json:"balance"`
}
