// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"bosfinder_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Job Request Domain Events
// =============================================================================

// JobRequestCreated is published when a client posts a new job request.
type JobRequestCreated struct {
	BaseEvent
	JobRequestID string `json:"jobRequestId"`
	ClientID     string `json:"clientId"`
	Category     string `json:"category"`
	Commune      string `json:"commune"`
}

func (e JobRequestCreated) EventName() string { return "jobrequests.job_request.created" }

// JobRequestStatusChanged is published when a job request moves between open, assigned and closed.
type JobRequestStatusChanged struct {
	BaseEvent
	JobRequestID string `json:"jobRequestId"`
	OldStatus    string `json:"oldStatus"`
	NewStatus    string `json:"newStatus"`
}

func (e JobRequestStatusChanged) EventName() string { return "jobrequests.job_request.status_changed" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published the first time a bos engages with a job request.
type LeadCreated struct {
	BaseEvent
	LeadID       string `json:"leadId"`
	JobRequestID string `json:"jobRequestId"`
	BosID        string `json:"bosId"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUnlocked is published after a credit has been spent on a lead.
type LeadUnlocked struct {
	BaseEvent
	LeadID       string `json:"leadId"`
	JobRequestID string `json:"jobRequestId"`
	BosID        string `json:"bosId"`
	Balance      int    `json:"balance"`
}

func (e LeadUnlocked) EventName() string { return "leads.lead.unlocked" }

// CreditsGranted is published when credits are added to a bos balance.
type CreditsGranted struct {
	BaseEvent
	BosID   string `json:"bosId"`
	Amount  int    `json:"amount"`
	Reason  string `json:"reason"`
	Balance int    `json:"balance"`
}

func (e CreditsGranted) EventName() string { return "leads.credits.granted" }

// =============================================================================
// Reviews Domain Events
// =============================================================================

// ReviewCreated is published when a client reviews a bos.
type ReviewCreated struct {
	BaseEvent
	ReviewID      string  `json:"reviewId"`
	BosID         string  `json:"bosId"`
	Rating        int     `json:"rating"`
	RatingAverage float64 `json:"ratingAverage"`
	RatingCount   int     `json:"ratingCount"`
}

func (e ReviewCreated) EventName() string { return "reviews.review.created" }
