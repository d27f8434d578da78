package repository

import (
	"context"
	"errors"
	"time"

	"bosfinder_backend/internal/shared/collections"
	"bosfinder_backend/platform/docstore"
)

var ErrNotFound = errors.New("job request not found")

type Repository struct {
	store docstore.Store
}

func New(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Create(ctx context.Context, job JobRequest) error {
	data, err := docstore.Encode(job)
	if err != nil {
		return err
	}
	return r.store.Create(ctx, collections.JobRequests, job.ID, data)
}

// Get returns the full record. Callers must be the owner.
func (r *Repository) Get(ctx context.Context, id string) (JobRequest, error) {
	return get[JobRequest](ctx, r.store, id)
}

// GetView returns the record without its contact fields.
func (r *Repository) GetView(ctx context.Context, id string) (JobRequestView, error) {
	return get[JobRequestView](ctx, r.store, id)
}

// GetContact returns only the contact fields.
func (r *Repository) GetContact(ctx context.Context, id string) (Contact, error) {
	return get[Contact](ctx, r.store, id)
}

func (r *Repository) ListByClient(ctx context.Context, clientID string) ([]JobRequest, error) {
	return query[JobRequest](ctx, r.store, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("clientId", docstore.OpEqual, clientID)},
		Order:   newestFirst(),
	})
}

// Match returns open requests in any of f.Categories, newest first.
func (r *Repository) Match(ctx context.Context, f MatchFilter) ([]JobRequestView, error) {
	if len(f.Categories) == 0 {
		return []JobRequestView{}, nil
	}
	filters := []docstore.Filter{
		docstore.Where("status", docstore.OpEqual, StatusOpen),
		docstore.Where("category", docstore.OpIn, f.Categories),
	}
	if f.Commune != "" {
		filters = append(filters, docstore.Where("commune", docstore.OpEqual, f.Commune))
	}
	return query[JobRequestView](ctx, r.store, docstore.Query{
		Filters: filters,
		Order:   newestFirst(),
		Limit:   f.Limit,
	})
}

// UpdateStatus sets the status of id and returns the previous status. check
// runs against the stored record before the write and may abort it.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string, now time.Time, check func(JobRequest) error) (string, error) {
	key := docstore.NewKey(collections.JobRequests, id)

	var previous string
	err := r.store.AtomicUpdate(ctx, []docstore.Key{key}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		if !snaps[0].Exists {
			return nil, ErrNotFound
		}
		job, err := docstore.Decode[JobRequest](snaps[0].Data)
		if err != nil {
			return nil, err
		}
		if err := check(job); err != nil {
			return nil, err
		}
		previous = job.Status
		if job.Status == status {
			return nil, nil
		}
		data, err := docstore.Patch(snaps[0].Data, map[string]any{
			"status":                   status,
			collections.FieldUpdatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		return []docstore.Write{{Key: key, Data: data}}, nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

func newestFirst() *docstore.Order {
	return &docstore.Order{Field: "createdAt", Kind: docstore.OrderTime, Descending: true}
}

func get[T any](ctx context.Context, store docstore.Store, id string) (T, error) {
	doc, err := store.Get(ctx, collections.JobRequests, id)
	if errors.Is(err, docstore.ErrNotFound) {
		var zero T
		return zero, ErrNotFound
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return docstore.Decode[T](doc.Data)
}

func query[T any](ctx context.Context, store docstore.Store, q docstore.Query) ([]T, error) {
	docs, err := store.Query(ctx, collections.JobRequests, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := docstore.Decode[T](doc.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
