package repository

import "time"

// Job request statuses.
const (
	StatusOpen      = "open"
	StatusInContact = "in_contact"
	StatusClosed    = "closed"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInContact, StatusClosed:
		return true
	}
	return false
}

// JobRequest is the full stored record, including the client's contact.
// Only the owning client and unlocked professionals may see the contact.
type JobRequest struct {
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

// JobRequestView is what professionals read. It has no contact fields, so a
// locked view cannot leak them.
type JobRequestView struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"clientId"`
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

// Contact is the gated part of a job request.
type Contact struct {
	ClientName  string `json:"clientName,omitempty"`
	ClientPhone string `json:"clientPhone"`
}

// MatchFilter selects open job requests for professionals.
type MatchFilter struct {
	Categories []string
	Commune    string
	Limit      int
}
