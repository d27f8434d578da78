package repository

import (
	"context"
	"errors"
	"time"

	"bosfinder_backend/internal/shared/collections"
	"bosfinder_backend/platform/docstore"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// User roles.
const (
	RoleClient = "client"
	RoleBos    = "bos"
)

// User is a registered client or professional, keyed by the auth subject.
type User struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserUpdate lists the editable fields; nil leaves a field unchanged.
type UserUpdate struct {
	FullName    *string
	PhoneNumber *string
	Email       *string
}

type Repository struct {
	store docstore.Store
}

func New(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Create(ctx context.Context, user User) error {
	data, err := docstore.Encode(user)
	if err != nil {
		return err
	}
	err = r.store.Create(ctx, collections.Users, user.ID, data)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	return err
}

func (r *Repository) Get(ctx context.Context, id string) (User, error) {
	doc, err := r.store.Get(ctx, collections.Users, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return docstore.Decode[User](doc.Data)
}

// Update applies the non-nil fields of upd and returns the stored user.
func (r *Repository) Update(ctx context.Context, id string, upd UserUpdate, now time.Time) (User, error) {
	key := docstore.NewKey(collections.Users, id)

	var updated User
	err := r.store.AtomicUpdate(ctx, []docstore.Key{key}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		if !snaps[0].Exists {
			return nil, ErrNotFound
		}
		fields := map[string]any{collections.FieldUpdatedAt: now}
		if upd.FullName != nil {
			fields["fullName"] = *upd.FullName
		}
		if upd.PhoneNumber != nil {
			fields["phoneNumber"] = *upd.PhoneNumber
		}
		if upd.Email != nil {
			fields["email"] = *upd.Email
		}
		data, err := docstore.Patch(snaps[0].Data, fields)
		if err != nil {
			return nil, err
		}
		if updated, err = docstore.Decode[User](data); err != nil {
			return nil, err
		}
		return []docstore.Write{{Key: key, Data: data}}, nil
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}
