package adapters

import (
	"context"

	bossvc "bosfinder_backend/internal/bos/service"
	identitytransport "bosfinder_backend/internal/identity/transport"
	jobsvc "bosfinder_backend/internal/jobrequests/service"
)

// UserGetter is the narrow identity interface the user readers need.
type UserGetter interface {
	GetUser(ctx context.Context, userID string) (identitytransport.UserResponse, error)
}

// BosOwnerReader implements bos/service.OwnerReader on top of identity.
type BosOwnerReader struct {
	users UserGetter
}

func NewBosOwnerReader(users UserGetter) *BosOwnerReader {
	return &BosOwnerReader{users: users}
}

func (a *BosOwnerReader) GetOwner(ctx context.Context, userID string) (bossvc.Owner, error) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		return bossvc.Owner{}, err
	}
	return bossvc.Owner{Role: user.Role, FullName: user.FullName, PhoneNumber: user.PhoneNumber}, nil
}

// JobClientReader implements jobrequests/service.ClientReader on top of identity.
type JobClientReader struct {
	users UserGetter
}

func NewJobClientReader(users UserGetter) *JobClientReader {
	return &JobClientReader{users: users}
}

func (a *JobClientReader) GetClient(ctx context.Context, userID string) (jobsvc.Client, error) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		return jobsvc.Client{}, err
	}
	return jobsvc.Client{Role: user.Role, FullName: user.FullName, PhoneNumber: user.PhoneNumber}, nil
}

// Compile-time checks that the adapters satisfy their ports.
var (
	_ bossvc.OwnerReader   = (*BosOwnerReader)(nil)
	_ bossvc.CatalogLookup = (*CatalogLookup)(nil)
)
