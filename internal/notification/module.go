// Package notification keeps each user's in-app inbox and fills it from
// domain events.
package notification

import (
	"context"
	"fmt"

	"bosfinder_backend/internal/events"
	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/internal/notification/handler"
	"bosfinder_backend/internal/notification/inapp"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/logger"
)

// ProfessionalFinder lists the professionals working a category in a commune.
type ProfessionalFinder interface {
	ProfessionalsFor(ctx context.Context, category, commune string) ([]string, error)
}

// Module is the notification bounded context module implementing http.Module
// and events.Handler.
type Module struct {
	inApp         *inapp.Service
	handler       *handler.HTTPHandler
	professionals ProfessionalFinder
	log           *logger.Logger
}

func New(store docstore.Store, professionals ProfessionalFinder, log *logger.Logger) *Module {
	svc := inapp.NewService(inapp.NewRepository(store), log)
	return &Module{
		inApp:         svc,
		handler:       handler.NewHTTPHandler(svc),
		professionals: professionals,
		log:           log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// InApp returns the inbox service.
func (m *Module) InApp() *inapp.Service {
	return m.inApp
}

// RegisterRoutes mounts the inbox routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

// RegisterHandlers subscribes the module to the events it turns into notifications.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.JobRequestCreated{}.EventName(), m)
	bus.Subscribe(events.LeadUnlocked{}.EventName(), m)
	bus.Subscribe(events.CreditsGranted{}.EventName(), m)
	bus.Subscribe(events.ReviewCreated{}.EventName(), m)
}

// Handle routes events to the appropriate handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.JobRequestCreated:
		return m.handleJobRequestCreated(ctx, e)
	case events.LeadUnlocked:
		return m.handleLeadUnlocked(ctx, e)
	case events.CreditsGranted:
		return m.handleCreditsGranted(ctx, e)
	case events.ReviewCreated:
		return m.handleReviewCreated(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleJobRequestCreated(ctx context.Context, e events.JobRequestCreated) error {
	if m.professionals == nil {
		return nil
	}
	bosIDs, err := m.professionals.ProfessionalsFor(ctx, e.Category, e.Commune)
	if err != nil {
		m.log.Error("failed to find professionals for job request", "jobRequestId", e.JobRequestID, "error", err)
		return err
	}

	sent := 0
	for _, bosID := range bosIDs {
		_, err := m.inApp.Send(ctx, inapp.SendParams{
			UserID:       bosID,
			EventID:      e.EventID(),
			Title:        "New job request",
			Content:      fmt.Sprintf("A client in %s is looking for a %s.", e.Commune, e.Category),
			ResourceID:   e.JobRequestID,
			ResourceType: "job_request",
		})
		if err != nil {
			continue
		}
		sent++
	}
	m.log.Info("job request notifications sent", "jobRequestId", e.JobRequestID, "matched", len(bosIDs), "sent", sent)
	return nil
}

func (m *Module) handleLeadUnlocked(ctx context.Context, e events.LeadUnlocked) error {
	if e.Balance > 0 {
		return nil
	}
	_, err := m.inApp.Send(ctx, inapp.SendParams{
		UserID:       e.BosID,
		EventID:      e.EventID(),
		Title:        "No lead credits left",
		Content:      "You used your last lead credit. Contact BòsFinder to add more.",
		ResourceID:   e.LeadID,
		ResourceType: "lead",
		Category:     inapp.CategoryWarning,
	})
	return err
}

func (m *Module) handleCreditsGranted(ctx context.Context, e events.CreditsGranted) error {
	_, err := m.inApp.Send(ctx, inapp.SendParams{
		UserID:   e.BosID,
		EventID:  e.EventID(),
		Title:    "Lead credits added",
		Content:  fmt.Sprintf("%d lead credits were added to your account. Balance: %d.", e.Amount, e.Balance),
		Category: inapp.CategorySuccess,
	})
	return err
}

func (m *Module) handleReviewCreated(ctx context.Context, e events.ReviewCreated) error {
	_, err := m.inApp.Send(ctx, inapp.SendParams{
		UserID:       e.BosID,
		EventID:      e.EventID(),
		Title:        "New review",
		Content:      fmt.Sprintf("A client rated you %d/5. Your average is now %.1f over %d reviews.", e.Rating, e.RatingAverage, e.RatingCount),
		ResourceID:   e.ReviewID,
		ResourceType: "review",
	})
	return err
}

// Compile-time checks
var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
