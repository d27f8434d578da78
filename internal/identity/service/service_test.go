package service

import (
	"context"
	"testing"

	"bosfinder_backend/internal/identity/repository"
	"bosfinder_backend/internal/identity/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/docstore/memstore"
	"bosfinder_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	return New(repository.New(memstore.New()), logger.Discard())
}

func TestCreateUserNormalizesInput(t *testing.T) {
	svc := newService()
	user, err := svc.CreateUser(context.Background(), "u1", transport.CreateUserRequest{
		Role:        "client",
		FullName:    "  Marie   <b>Joseph</b> ",
		PhoneNumber: "3712 3456",
		Email:       " Marie@Example.HT ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Marie Joseph", user.FullName)
	assert.Equal(t, "+50937123456", user.PhoneNumber)
	assert.Equal(t, "marie@example.ht", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		req  transport.CreateUserRequest
	}{
		{"missing id", "", transport.CreateUserRequest{Role: "client", FullName: "Ana", PhoneNumber: "37123456"}},
		{"unknown role", "u1", transport.CreateUserRequest{Role: "admin", FullName: "Ana", PhoneNumber: "37123456"}},
		{"blank name", "u1", transport.CreateUserRequest{Role: "bos", FullName: "   ", PhoneNumber: "37123456"}},
		{"bad phone", "u1", transport.CreateUserRequest{Role: "bos", FullName: "Ana", PhoneNumber: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.id, tt.req)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestCreateUserOnlyOnce(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	req := transport.CreateUserRequest{Role: "bos", FullName: "Jean Pierre", PhoneNumber: "37123456"}

	_, err := svc.CreateUser(ctx, "u1", req)
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "u1", req)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestUpdateUser(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "u1", transport.CreateUserRequest{Role: "bos", FullName: "Jean", PhoneNumber: "37123456"})
	require.NoError(t, err)

	name := "Jean Baptiste"
	user, err := svc.UpdateUser(ctx, "u1", transport.UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jean Baptiste", user.FullName)
	assert.Equal(t, "+50937123456", user.PhoneNumber)
	assert.Equal(t, "bos", user.Role)

	got, err := svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = svc.UpdateUser(ctx, "ghost", transport.UpdateUserRequest{FullName: &name})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	bad := "x1"
	_, err = svc.UpdateUser(ctx, "u1", transport.UpdateUserRequest{PhoneNumber: &bad})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
