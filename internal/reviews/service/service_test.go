package service

import (
	"context"
	"encoding/json"
	"testing"

	"bosfinder_backend/internal/events"
	"bosfinder_backend/internal/reviews/repository"
	"bosfinder_backend/internal/reviews/transport"
	"bosfinder_backend/internal/shared/collections"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/docstore/memstore"
	"bosfinder_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func seed(t *testing.T, store docstore.Store) {
	t.Helper()
	ctx := context.Background()
	put := func(collection, id, body string) {
		require.NoError(t, store.Put(ctx, collection, id, json.RawMessage(body)))
	}
	put(collections.BosProfiles, "bos-1", `{"id":"bos-1","displayName":"Jean","leadCredits":3,"ratingAverage":0,"ratingCount":0}`)
	for _, job := range []string{"job-1", "job-2", "job-3"} {
		put(collections.JobRequests, job, `{"id":"`+job+`","clientId":"client-1","status":"closed"}`)
	}
	put(collections.JobRequests, "job-other", `{"id":"job-other","clientId":"client-2","status":"open"}`)
}

func newService(t *testing.T) (*Service, docstore.Store, *events.InMemoryBus) {
	t.Helper()
	store := memstore.New()
	seed(t, store)
	bus := events.NewInMemoryBus(logger.Discard())
	return New(repository.New(store), bus, logger.Discard()), store, bus
}

func review(job string, rating int) transport.CreateReviewRequest {
	return transport.CreateReviewRequest{JobRequestID: job, BosID: "bos-1", Rating: rating, Comment: "<p>Good   work</p>"}
}

func TestRunningAverage(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, "client-1", review("job-1", 5))
	require.NoError(t, err)
	assert.Equal(t, 5.0, resp.RatingAverage)
	assert.Equal(t, 1, resp.RatingCount)
	assert.Equal(t, "Good work", resp.Review.Comment)

	resp, err = svc.Create(ctx, "client-1", review("job-2", 2))
	require.NoError(t, err)
	assert.InDelta(t, 3.5, resp.RatingAverage, 1e-9)
	assert.Equal(t, 2, resp.RatingCount)

	resp, err = svc.Create(ctx, "client-1", review("job-3", 4))
	require.NoError(t, err)
	assert.InDelta(t, 11.0/3.0, resp.RatingAverage, 1e-9)

	doc, err := store.Get(ctx, collections.BosProfiles, "bos-1")
	require.NoError(t, err)
	profile, err := docstore.Decode[map[string]any](doc.Data)
	require.NoError(t, err)
	assert.EqualValues(t, 3, profile["ratingCount"])
	assert.EqualValues(t, 3, profile["leadCredits"])
	assert.Equal(t, "Jean", profile["displayName"])

	list, err := svc.ListByBos(ctx, "bos-1")
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
}

func TestCreateRules(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "client-1", review("job-1", 4))
	require.NoError(t, err)

	tests := []struct {
		name   string
		client string
		req    transport.CreateReviewRequest
		kind   apperr.Kind
	}{
		{"duplicate", "client-1", review("job-1", 1), apperr.KindConflict},
		{"not owner", "client-1", review("job-other", 3), apperr.KindForbidden},
		{"missing job", "client-1", review("job-404", 3), apperr.KindNotFound},
		{"missing profile", "client-1", transport.CreateReviewRequest{JobRequestID: "job-2", BosID: "bos-404", Rating: 3}, apperr.KindNotFound},
		{"rating too high", "client-1", review("job-2", 6), apperr.KindValidation},
		{"rating too low", "client-1", review("job-2", 0), apperr.KindValidation},
		{"no bos", "client-1", transport.CreateReviewRequest{JobRequestID: "job-2", Rating: 3}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.client, tt.req)
			assert.True(t, apperr.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestConcurrentReviewsCountOnce(t *testing.T) {
	svc, _, bus := newService(t)
	ctx := context.Background()

	var created int
	bus.Subscribe(events.ReviewCreated{}.EventName(), events.HandlerFunc(func(context.Context, events.Event) error {
		created++
		return nil
	}))

	const callers = 10
	results := make([]error, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			_, results[i] = svc.Create(ctx, "client-1", review("job-1", 4))
			return nil
		})
	}
	require.NoError(t, g.Wait())
	bus.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, created)

	list, err := svc.ListByBos(ctx, "bos-1")
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}
