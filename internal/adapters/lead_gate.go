package adapters

import (
	"context"

	jobsvc "bosfinder_backend/internal/jobrequests/service"
	leadsrepo "bosfinder_backend/internal/leads/repository"
)

// LeadOpener is the narrow ledger interface the job request view needs.
type LeadOpener interface {
	GetOrCreateLead(ctx context.Context, jobRequestID, bosID string) (leadsrepo.Lead, error)
}

// LeadGate implements jobrequests/service.LeadGate with the lead ledger.
type LeadGate struct {
	leads LeadOpener
}

func NewLeadGate(leads LeadOpener) *LeadGate {
	return &LeadGate{leads: leads}
}

func (a *LeadGate) OpenLead(ctx context.Context, jobRequestID, bosID string) (jobsvc.LeadAccess, error) {
	lead, err := a.leads.GetOrCreateLead(ctx, jobRequestID, bosID)
	if err != nil {
		return jobsvc.LeadAccess{}, err
	}
	return jobsvc.LeadAccess{
		LeadID:             lead.ID,
		HasUnlockedContact: lead.HasUnlockedContact,
		UnlockedAt:         lead.UnlockedAt,
	}, nil
}

// Compile-time checks that the adapters satisfy their ports.
var (
	_ jobsvc.LeadGate      = (*LeadGate)(nil)
	_ jobsvc.ClientReader  = (*JobClientReader)(nil)
	_ jobsvc.CatalogLookup = (*CatalogLookup)(nil)
)
