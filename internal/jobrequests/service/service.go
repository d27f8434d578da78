// Package service implements job requests: posting, the owner's view, the
// contact-gated professional view and category matching.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bosfinder_backend/internal/events"
	"bosfinder_backend/internal/jobrequests/repository"
	"bosfinder_backend/internal/jobrequests/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/phone"
	"bosfinder_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	matchLimit        = 50
	roleClient        = "client"
	msgJobNotFound    = "job request not found"
	msgNotJobOwner    = "job request belongs to another client"
	maxTitleLength    = 120
	maxDescriptionLen = 2000
)

type Service struct {
	repo     *repository.Repository
	clients  ClientReader
	catalog  CatalogLookup
	leads    LeadGate
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo *repository.Repository, clients ClientReader, catalog CatalogLookup, leads LeadGate, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		clients:  clients,
		catalog:  catalog,
		leads:    leads,
		eventBus: eventBus,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create posts a job request for clientID. Name and phone default to the
// user record; the phone is stored in E.164.
func (s *Service) Create(ctx context.Context, clientID string, req transport.CreateJobRequestRequest) (transport.JobRequestResponse, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return transport.JobRequestResponse{}, err
	}
	if client.Role != roleClient {
		return transport.JobRequestResponse{}, apperr.Forbidden("only clients can post job requests")
	}

	category, err := s.catalog.CanonicalCategory(req.Category)
	if err != nil {
		return transport.JobRequestResponse{}, err
	}
	commune, city, err := s.catalog.CanonicalPlace(req.Commune)
	if err != nil {
		return transport.JobRequestResponse{}, err
	}

	rawPhone := client.PhoneNumber
	if strings.TrimSpace(req.ClientPhone) != "" {
		rawPhone = req.ClientPhone
	}
	clientPhone, err := phone.ParseE164(rawPhone)
	if err != nil {
		return transport.JobRequestResponse{}, apperr.Validation("invalid client phone number")
	}

	title := sanitize.Truncate(sanitize.Line(req.Title), maxTitleLength)
	if title == "" {
		return transport.JobRequestResponse{}, apperr.Validation("title is required")
	}
	description := sanitize.Truncate(sanitize.Text(req.Description), maxDescriptionLen)
	if description == "" {
		return transport.JobRequestResponse{}, apperr.Validation("description is required")
	}

	now := s.now()
	job := repository.JobRequest{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		ClientName:    client.FullName,
		ClientPhone:   clientPhone,
		Title:         title,
		Description:   description,
		Category:      category,
		Commune:       commune,
		City:          city,
		PreferredDate: utcPtr(req.PreferredDate),
		Status:        repository.StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return transport.JobRequestResponse{}, storageError("jobrequests.Create", err)
	}

	s.log.WithContext(ctx).Info("job request created", "jobRequestId", job.ID, "clientId", clientID, "category", category)
	s.eventBus.Publish(ctx, events.JobRequestCreated{
		BaseEvent:    events.NewBaseEvent(),
		JobRequestID: job.ID,
		ClientID:     clientID,
		Category:     category,
		Commune:      commune,
	})
	return toResponse(job), nil
}

// GetForOwner returns the full record to the client who posted it.
func (s *Service) GetForOwner(ctx context.Context, id, clientID string) (transport.JobRequestResponse, error) {
	job, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.JobRequestResponse{}, apperr.NotFound(msgJobNotFound)
	}
	if err != nil {
		return transport.JobRequestResponse{}, storageError("jobrequests.GetForOwner", err)
	}
	if job.ClientID != clientID {
		return transport.JobRequestResponse{}, apperr.Forbidden(msgNotJobOwner)
	}
	return toResponse(job), nil
}

// GetForBos returns the professional view of a job request and opens the
// caller's lead on it. The contact is only read once that lead is unlocked.
func (s *Service) GetForBos(ctx context.Context, id, bosID string) (transport.JobRequestViewResponse, error) {
	view, err := s.repo.GetView(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.JobRequestViewResponse{}, apperr.NotFound(msgJobNotFound)
	}
	if err != nil {
		return transport.JobRequestViewResponse{}, storageError("jobrequests.GetForBos", err)
	}

	lead, err := s.leads.OpenLead(ctx, id, bosID)
	if err != nil {
		return transport.JobRequestViewResponse{}, err
	}

	resp := toViewResponse(view)
	resp.Lead = &transport.LeadSummary{
		ID:                 lead.LeadID,
		HasUnlockedContact: lead.HasUnlockedContact,
		UnlockedAt:         lead.UnlockedAt,
	}
	if lead.HasUnlockedContact {
		contact, err := s.repo.GetContact(ctx, id)
		if err != nil {
			return transport.JobRequestViewResponse{}, storageError("jobrequests.GetForBos", err)
		}
		resp.ClientName = contact.ClientName
		resp.ClientPhone = contact.ClientPhone
	}
	return resp, nil
}

// ListByClient returns the client's job requests, newest first.
func (s *Service) ListByClient(ctx context.Context, clientID string) (transport.JobRequestListResponse, error) {
	jobs, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return transport.JobRequestListResponse{}, storageError("jobrequests.ListByClient", err)
	}
	items := make([]transport.JobRequestResponse, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, toResponse(job))
	}
	return transport.JobRequestListResponse{Items: items, Total: len(items)}, nil
}

// UpdateStatus lets the owning client move a job request to any status.
func (s *Service) UpdateStatus(ctx context.Context, id, clientID, status string) error {
	if !repository.ValidStatus(status) {
		return apperr.Validation("status must be one of open, in_contact, closed")
	}

	errNotOwner := apperr.Forbidden(msgNotJobOwner)
	previous, err := s.repo.UpdateStatus(ctx, id, status, s.now(), func(job repository.JobRequest) error {
		if job.ClientID != clientID {
			return errNotOwner
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(msgJobNotFound)
	case errors.Is(err, errNotOwner):
		return errNotOwner
	default:
		return storageError("jobrequests.UpdateStatus", err)
	}

	if previous != status {
		s.log.WithContext(ctx).Info("job request status changed", "jobRequestId", id, "from", previous, "to", status)
		s.eventBus.Publish(ctx, events.JobRequestStatusChanged{
			BaseEvent:    events.NewBaseEvent(),
			JobRequestID: id,
			OldStatus:    previous,
			NewStatus:    status,
		})
	}
	return nil
}

// MatchingJobRequests lists open job requests in any of categories, optionally
// limited to one commune. Names missing from the catalog match nothing, so an
// empty or fully unknown category set yields an empty list.
func (s *Service) MatchingJobRequests(ctx context.Context, categories []string, commune *string) (transport.JobRequestViewListResponse, error) {
	empty := transport.JobRequestViewListResponse{Items: []transport.JobRequestViewResponse{}}

	canonical := make([]string, 0, len(categories))
	for _, name := range categories {
		c, err := s.catalog.CanonicalCategory(name)
		if apperr.Is(err, apperr.KindValidation) {
			continue
		}
		if err != nil {
			return transport.JobRequestViewListResponse{}, err
		}
		canonical = append(canonical, c)
	}
	if len(canonical) == 0 {
		return empty, nil
	}

	filter := repository.MatchFilter{Categories: canonical, Limit: matchLimit}
	if commune != nil && strings.TrimSpace(*commune) != "" {
		name, _, err := s.catalog.CanonicalPlace(*commune)
		if apperr.Is(err, apperr.KindValidation) {
			return empty, nil
		}
		if err != nil {
			return transport.JobRequestViewListResponse{}, err
		}
		filter.Commune = name
	}

	views, err := s.repo.Match(ctx, filter)
	if err != nil {
		return transport.JobRequestViewListResponse{}, storageError("jobrequests.MatchingJobRequests", err)
	}
	items := make([]transport.JobRequestViewResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toViewResponse(v))
	}
	return transport.JobRequestViewListResponse{Items: items, Total: len(items)}, nil
}

func toResponse(job repository.JobRequest) transport.JobRequestResponse {
	return transport.JobRequestResponse{
		ID:            job.ID,
		ClientID:      job.ClientID,
		ClientName:    job.ClientName,
		ClientPhone:   job.ClientPhone,
		Title:         job.Title,
		Description:   job.Description,
		Category:      job.Category,
		Commune:       job.Commune,
		City:          job.City,
		PreferredDate: job.PreferredDate,
		Status:        job.Status,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
}

func toViewResponse(v repository.JobRequestView) transport.JobRequestViewResponse {
	return transport.JobRequestViewResponse{
		ID:            v.ID,
		Title:         v.Title,
		Description:   v.Description,
		Category:      v.Category,
		Commune:       v.Commune,
		City:          v.City,
		PreferredDate: v.PreferredDate,
		Status:        v.Status,
		CreatedAt:     v.CreatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func storageError(op string, err error) error {
	return apperr.Storage("storage unavailable", err).WithOp(op)
}
