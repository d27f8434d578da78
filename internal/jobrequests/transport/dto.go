package transport

import "time"

type CreateJobRequestRequest struct {
	Title         string     `json:"title" validate:"required,min=3,max=120"`
	Description   string     `json:"description" validate:"required,min=10,max=2000"`
	Category      string     `json:"category" validate:"required,category"`
	Commune       string     `json:"commune" validate:"required,commune"`
	PreferredDate *time.Time `json:"preferredDate"`
	// ClientPhone overrides the phone number on the user record.
	ClientPhone string `json:"clientPhone" validate:"omitempty,max=30"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_contact closed"`
}

type MatchingRequest struct {
	Categories []string `form:"category" validate:"omitempty,max=10,dive,category"`
	Commune    string   `form:"commune" validate:"omitempty,commune"`
}

// JobRequestResponse is the owner's view, contact included.
type JobRequestResponse struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"clientId"`
	ClientName    string     `json:"clientName,omitempty"`
	ClientPhone   string     `json:"clientPhone"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Commune       string     `json:"commune"`
	City          string     `json:"city"`
	PreferredDate *time.Time `json:"preferredDate,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type JobRequestListResponse struct {
	Items []JobRequestResponse `json:"items"`
	Total int                  `json:"total"`
}

// LeadSummary tells a professional whether the contact is unlocked.
type LeadSummary struct {
	ID                 string     `json:"id"`
	HasUnlockedContact bool       `json:"hasUnlockedContact"`
	UnlockedAt         *time.Time `json:"unlockedAt,omitempty"`
}

// JobRequestViewResponse is what professionals see. The contact fields are
// empty until their lead is unlocked.
type JobRequestViewResponse struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Category      string       `json:"category"`
	Commune       string       `json:"commune"`
	City          string       `json:"city"`
	PreferredDate *time.Time   `json:"preferredDate,omitempty"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	ClientName    string       `json:"clientName,omitempty"`
	ClientPhone   string       `json:"clientPhone,omitempty"`
	Lead          *LeadSummary `json:"lead,omitempty"`
}

type JobRequestViewListResponse struct {
	Items []JobRequestViewResponse `json:"items"`
	Total int                      `json:"total"`
}
