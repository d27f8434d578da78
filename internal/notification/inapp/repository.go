package inapp

import (
	"context"
	"errors"
	"time"

	"bosfinder_backend/internal/shared/collections"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/docstore"
)

const (
	opCreate      = "notification.inapp.repository.create"
	opList        = "notification.inapp.repository.list"
	opCountUnread = "notification.inapp.repository.count_unread"
	opMarkRead    = "notification.inapp.repository.mark_read"
	opMarkAllRead = "notification.inapp.repository.mark_all_read"

	errUserIDRequired = "userId is required"
	errNotFound       = "notification not found"
)

type Notification struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ResourceID   string    `json:"resourceId,omitempty"`
	ResourceType string    `json:"resourceType,omitempty"`
	Category     string    `json:"category"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Create(ctx context.Context, n Notification) error {
	if n.UserID == "" {
		return apperr.Validation(errUserIDRequired).WithOp(opCreate)
	}
	if n.Title == "" || n.Content == "" {
		return apperr.Validation("title and content are required").WithOp(opCreate)
	}

	data, err := docstore.Encode(n)
	if err != nil {
		return apperr.Internal("encode notification").WithOp(opCreate)
	}
	err = r.store.Create(ctx, collections.Notifications, n.ID, data)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return apperr.Conflict("notification already delivered").WithOp(opCreate)
	}
	if err != nil {
		return apperr.Storage("create in-app notification failed", err).WithOp(opCreate)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if userID == "" {
		return nil, apperr.Validation(errUserIDRequired).WithOp(opList)
	}
	return r.query(ctx, opList, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("userId", docstore.OpEqual, userID)},
		Order:   &docstore.Order{Field: "createdAt", Kind: docstore.OrderTime, Descending: true},
		Limit:   limit,
	})
}

func (r *Repository) CountUnread(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperr.Validation(errUserIDRequired).WithOp(opCountUnread)
	}
	unread, err := r.unread(ctx, opCountUnread, userID)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// MarkRead flags one notification of userID as read. Notifications of other
// users are reported as missing.
func (r *Repository) MarkRead(ctx context.Context, userID, notificationID string) error {
	if userID == "" || notificationID == "" {
		return apperr.Validation("userId and notificationId are required").WithOp(opMarkRead)
	}

	key := docstore.NewKey(collections.Notifications, notificationID)
	err := r.store.AtomicUpdate(ctx, []docstore.Key{key}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		if !snaps[0].Exists {
			return nil, docstore.ErrNotFound
		}
		n, err := docstore.Decode[Notification](snaps[0].Data)
		if err != nil {
			return nil, err
		}
		if n.UserID != userID {
			return nil, docstore.ErrNotFound
		}
		if n.IsRead {
			return nil, nil
		}
		data, err := docstore.Patch(snaps[0].Data, map[string]any{"isRead": true})
		if err != nil {
			return nil, err
		}
		return []docstore.Write{{Key: key, Data: data}}, nil
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound(errNotFound).WithOp(opMarkRead)
	}
	if err != nil {
		return apperr.Storage("mark notification read failed", err).WithOp(opMarkRead)
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return apperr.Validation(errUserIDRequired).WithOp(opMarkAllRead)
	}
	unread, err := r.unread(ctx, opMarkAllRead, userID)
	if err != nil {
		return err
	}
	for _, n := range unread {
		if err := r.MarkRead(ctx, userID, n.ID); err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
	}
	return nil
}

func (r *Repository) unread(ctx context.Context, op, userID string) ([]Notification, error) {
	return r.query(ctx, op, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Where("userId", docstore.OpEqual, userID),
			docstore.Where("isRead", docstore.OpEqual, false),
		},
	})
}

func (r *Repository) query(ctx context.Context, op string, q docstore.Query) ([]Notification, error) {
	docs, err := r.store.Query(ctx, collections.Notifications, q)
	if err != nil {
		return nil, apperr.Storage("query notifications failed", err).WithOp(op)
	}
	items := make([]Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := docstore.Decode[Notification](doc.Data)
		if err != nil {
			return nil, apperr.Internal("decode notification").WithOp(op)
		}
		items = append(items, n)
	}
	return items, nil
}
