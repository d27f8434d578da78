package inapp

import (
	"context"
	"strings"
	"time"

	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/logger"

	"github.com/google/uuid"
)

// Notification categories.
const (
	CategoryInfo    = "info"
	CategorySuccess = "success"
	CategoryWarning = "warning"
)

// dedupeNamespace derives notification ids from the triggering event.
var dedupeNamespace = uuid.MustParse("5b0d7a3e-2f4c-4e8a-9c61-7d2b1f0e4a93")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service struct {
	repo *Repository
	log  *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type SendParams struct {
	UserID       string
	Title        string
	Content      string
	ResourceID   string
	ResourceType string
	Category     string // "info", "success", "warning"
	// EventID makes delivery idempotent per user: a second send for the same
	// event is dropped.
	EventID string
}

// Send stores a notification in the user's inbox.
func (s *Service) Send(ctx context.Context, p SendParams) (Notification, error) {
	if p.Category == "" {
		p.Category = CategoryInfo
	}

	id := uuid.NewString()
	if p.EventID != "" {
		id = uuid.NewSHA1(dedupeNamespace, []byte(p.EventID+"/"+p.UserID)).String()
	}

	n := Notification{
		ID:           id,
		UserID:       strings.TrimSpace(p.UserID),
		Title:        strings.TrimSpace(p.Title),
		Content:      strings.TrimSpace(p.Content),
		ResourceID:   p.ResourceID,
		ResourceType: p.ResourceType,
		Category:     p.Category,
		CreatedAt:    s.now(),
	}
	err := s.repo.Create(ctx, n)
	if p.EventID != "" && apperr.Is(err, apperr.KindConflict) {
		s.log.WithContext(ctx).Debug("duplicate notification dropped", "eventId", p.EventID, "userId", p.UserID)
		return n, nil
	}
	if err != nil {
		s.log.WithContext(ctx).Error("failed to persist in-app notification", "error", err, "userId", p.UserID)
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.List(ctx, userID, limit)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
