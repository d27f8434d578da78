package repository

import (
	"context"
	"errors"
	"time"

	"bosfinder_backend/internal/shared/collections"
	"bosfinder_backend/platform/docstore"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
)

type Repository struct {
	store docstore.Store
}

func New(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Create(ctx context.Context, profile Profile) error {
	data, err := docstore.Encode(profile)
	if err != nil {
		return err
	}
	err = r.store.Create(ctx, collections.BosProfiles, profile.ID, data)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	return err
}

func (r *Repository) Get(ctx context.Context, id string) (Profile, error) {
	doc, err := r.store.Get(ctx, collections.BosProfiles, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return docstore.Decode[Profile](doc.Data)
}

// Update patches the allow-listed fields of upd onto the stored profile. The
// returned pair is the profile before and after the change.
func (r *Repository) Update(ctx context.Context, id string, upd ProfileUpdate, now time.Time) (before, after Profile, err error) {
	key := docstore.NewKey(collections.BosProfiles, id)

	err = r.store.AtomicUpdate(ctx, []docstore.Key{key}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		if !snaps[0].Exists {
			return nil, ErrNotFound
		}
		var err error
		if before, err = docstore.Decode[Profile](snaps[0].Data); err != nil {
			return nil, err
		}

		fields := upd.fields()
		fields[collections.FieldUpdatedAt] = now
		data, err := docstore.Patch(snaps[0].Data, fields)
		if err != nil {
			return nil, err
		}
		if after, err = docstore.Decode[Profile](data); err != nil {
			return nil, err
		}
		return []docstore.Write{{Key: key, Data: data}}, nil
	})
	if err != nil {
		return Profile{}, Profile{}, err
	}
	return before, after, nil
}

// Search returns profiles matching f, best rated first.
func (r *Repository) Search(ctx context.Context, f SearchFilter) ([]Profile, error) {
	var filters []docstore.Filter
	if f.Category != "" {
		filters = append(filters, docstore.Where("categories", docstore.OpArrayContains, f.Category))
	}
	if f.Commune != "" {
		filters = append(filters, docstore.Where("commune", docstore.OpEqual, f.Commune))
	}
	if f.MinRating > 0 {
		filters = append(filters, docstore.Where(collections.FieldRatingAverage, docstore.OpGreaterOrEq, f.MinRating))
	}

	docs, err := r.store.Query(ctx, collections.BosProfiles, docstore.Query{
		Filters: filters,
		Order:   &docstore.Order{Field: collections.FieldRatingAverage, Kind: docstore.OrderNumber, Descending: true},
		Limit:   f.Limit,
	})
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(docs))
	for _, doc := range docs {
		p, err := docstore.Decode[Profile](doc.Data)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
