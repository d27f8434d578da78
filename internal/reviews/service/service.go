package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bosfinder_backend/internal/events"
	"bosfinder_backend/internal/reviews/repository"
	"bosfinder_backend/internal/reviews/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/sanitize"
)

const (
	listLimit     = 20
	maxCommentLen = 1000
)

type Service struct {
	repo     *repository.Repository
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo *repository.Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create records the rating clientID gives bosID for one of their job requests.
func (s *Service) Create(ctx context.Context, clientID string, req transport.CreateReviewRequest) (transport.CreateReviewResponse, error) {
	jobRequestID := strings.TrimSpace(req.JobRequestID)
	bosID := strings.TrimSpace(req.BosID)
	if jobRequestID == "" || bosID == "" {
		return transport.CreateReviewResponse{}, apperr.Validation("jobRequestId and bosId are required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return transport.CreateReviewResponse{}, apperr.Validation("rating must be between 1 and 5")
	}

	now := s.now()
	review := repository.Review{
		ID:           repository.ReviewID(jobRequestID, bosID),
		JobRequestID: jobRequestID,
		BosID:        bosID,
		ClientID:     clientID,
		Rating:       req.Rating,
		Comment:      sanitize.Truncate(sanitize.Text(req.Comment), maxCommentLen),
		CreatedAt:    now,
	}

	rating, err := s.repo.Create(ctx, review, now)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrJobNotFound):
		return transport.CreateReviewResponse{}, apperr.NotFound("job request not found")
	case errors.Is(err, repository.ErrProfileNotFound):
		return transport.CreateReviewResponse{}, apperr.NotFound("profile not found")
	case errors.Is(err, repository.ErrNotJobOwner):
		return transport.CreateReviewResponse{}, apperr.Forbidden("only the job request owner can review it")
	case errors.Is(err, repository.ErrAlreadyReviewed):
		return transport.CreateReviewResponse{}, apperr.Conflict("this job request was already reviewed for this professional")
	case errors.Is(err, docstore.ErrConflict):
		return transport.CreateReviewResponse{}, apperr.Conflict("the profile is being updated, please retry").WithOp("reviews.Create")
	default:
		return transport.CreateReviewResponse{}, apperr.Storage("storage unavailable", err).WithOp("reviews.Create")
	}

	s.log.WithContext(ctx).Info("review created", "reviewId", review.ID, "bosId", bosID, "rating", review.Rating, "ratingAverage", rating.Average)
	s.eventBus.Publish(ctx, events.ReviewCreated{
		BaseEvent:     events.NewBaseEvent(),
		ReviewID:      review.ID,
		BosID:         bosID,
		Rating:        review.Rating,
		RatingAverage: rating.Average,
		RatingCount:   rating.Count,
	})

	return transport.CreateReviewResponse{
		Review:        toResponse(review),
		RatingAverage: rating.Average,
		RatingCount:   rating.Count,
	}, nil
}

// ListByBos returns the newest reviews of a professional.
func (s *Service) ListByBos(ctx context.Context, bosID string) (transport.ReviewListResponse, error) {
	reviews, err := s.repo.ListByBos(ctx, bosID, listLimit)
	if err != nil {
		return transport.ReviewListResponse{}, apperr.Storage("storage unavailable", err).WithOp("reviews.ListByBos")
	}
	items := make([]transport.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, toResponse(r))
	}
	return transport.ReviewListResponse{Items: items, Total: len(items)}, nil
}

func toResponse(r repository.Review) transport.ReviewResponse {
	return transport.ReviewResponse{
		ID:           r.ID,
		JobRequestID: r.JobRequestID,
		BosID:        r.BosID,
		ClientID:     r.ClientID,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
	}
}
