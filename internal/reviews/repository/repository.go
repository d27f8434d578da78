package repository

import (
	"context"
	"errors"
	"time"

	"bosfinder_backend/internal/shared/collections"
	"bosfinder_backend/platform/docstore"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound     = errors.New("job request not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotJobOwner     = errors.New("job request belongs to another client")
	ErrAlreadyReviewed = errors.New("job request already reviewed for this professional")
)

// reviewNamespace seeds review ids so one job request yields at most one
// review per professional.
var reviewNamespace = uuid.MustParse("b2d7e0a4-58c1-4f36-9e2a-7d10c4f8a913")

// Review is a client's rating of a professional for one job request.
type Review struct {
	ID           string    `json:"id"`
	JobRequestID string    `json:"jobRequestId"`
	BosID        string    `json:"bosId"`
	ClientID     string    `json:"clientId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Rating is the aggregate kept on the profile.
type Rating struct {
	Average float64 `json:"ratingAverage"`
	Count   int     `json:"ratingCount"`
}

type jobOwner struct {
	ClientID string `json:"clientId"`
}

// ReviewID derives the review id for a (job request, bos) pair.
func ReviewID(jobRequestID, bosID string) string {
	return uuid.NewSHA1(reviewNamespace, []byte(jobRequestID+"/"+bosID)).String()
}

type Repository struct {
	store docstore.Store
}

func New(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Create stores review and folds its rating into the profile's running
// average in one atomic update.
func (r *Repository) Create(ctx context.Context, review Review, now time.Time) (Rating, error) {
	reviewKey := docstore.NewKey(collections.Reviews, review.ID)
	profileKey := docstore.NewKey(collections.BosProfiles, review.BosID)
	jobKey := docstore.NewKey(collections.JobRequests, review.JobRequestID)

	var rating Rating
	err := r.store.AtomicUpdate(ctx, []docstore.Key{reviewKey, profileKey, jobKey}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		reviewSnap, profileSnap, jobSnap := snaps[0], snaps[1], snaps[2]

		if !jobSnap.Exists {
			return nil, ErrJobNotFound
		}
		job, err := docstore.Decode[jobOwner](jobSnap.Data)
		if err != nil {
			return nil, err
		}
		if job.ClientID != review.ClientID {
			return nil, ErrNotJobOwner
		}
		if !profileSnap.Exists {
			return nil, ErrProfileNotFound
		}
		if reviewSnap.Exists {
			return nil, ErrAlreadyReviewed
		}

		current, err := docstore.Decode[Rating](profileSnap.Data)
		if err != nil {
			return nil, err
		}
		rating = Rating{
			Count:   current.Count + 1,
			Average: (current.Average*float64(current.Count) + float64(review.Rating)) / float64(current.Count+1),
		}

		profileData, err := docstore.Patch(profileSnap.Data, map[string]any{
			collections.FieldRatingAverage: rating.Average,
			collections.FieldRatingCount:   rating.Count,
			collections.FieldUpdatedAt:     now,
		})
		if err != nil {
			return nil, err
		}
		reviewData, err := docstore.Encode(review)
		if err != nil {
			return nil, err
		}
		return []docstore.Write{
			{Key: reviewKey, Data: reviewData},
			{Key: profileKey, Data: profileData},
		}, nil
	})
	if err != nil {
		return Rating{}, err
	}
	return rating, nil
}

// ListByBos returns the newest reviews of bosID.
func (r *Repository) ListByBos(ctx context.Context, bosID string, limit int) ([]Review, error) {
	docs, err := r.store.Query(ctx, collections.Reviews, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("bosId", docstore.OpEqual, bosID)},
		Order:   &docstore.Order{Field: "createdAt", Kind: docstore.OrderTime, Descending: true},
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	reviews := make([]Review, 0, len(docs))
	for _, doc := range docs {
		review, err := docstore.Decode[Review](doc.Data)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}
