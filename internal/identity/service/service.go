package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bosfinder_backend/internal/identity/repository"
	"bosfinder_backend/internal/identity/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/phone"
	"bosfinder_backend/platform/sanitize"
)

const msgUserNotFound = "user not found"

type Service struct {
	repo *repository.Repository
	log  *logger.Logger
	now  func() time.Time
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser registers the authenticated caller. A user can only be created once.
func (s *Service) CreateUser(ctx context.Context, userID string, req transport.CreateUserRequest) (transport.UserResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return transport.UserResponse{}, apperr.Validation("user id is required")
	}
	if req.Role != repository.RoleClient && req.Role != repository.RoleBos {
		return transport.UserResponse{}, apperr.Validation("role must be client or bos")
	}
	fullName := sanitize.Line(req.FullName)
	if fullName == "" {
		return transport.UserResponse{}, apperr.Validation("fullName is required")
	}
	phoneNumber, err := phone.ParseE164(req.PhoneNumber)
	if err != nil {
		return transport.UserResponse{}, apperr.Validation("invalid phone number")
	}

	now := s.now()
	user := repository.User{
		ID:          userID,
		Role:        req.Role,
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		Email:       normalizeEmail(req.Email),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.repo.Create(ctx, user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return transport.UserResponse{}, apperr.Conflict("user already exists")
	}
	if err != nil {
		return transport.UserResponse{}, apperr.Storage("storage unavailable", err).WithOp("identity.CreateUser")
	}

	s.log.WithContext(ctx).Info("user created", "userId", userID, "role", user.Role)
	return toResponse(user), nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (transport.UserResponse, error) {
	user, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return transport.UserResponse{}, apperr.Storage("storage unavailable", err).WithOp("identity.GetUser")
	}
	return toResponse(user), nil
}

// UpdateUser changes the caller's name, phone or email. The role is fixed at creation.
func (s *Service) UpdateUser(ctx context.Context, userID string, req transport.UpdateUserRequest) (transport.UserResponse, error) {
	var upd repository.UserUpdate
	if req.FullName != nil {
		name := sanitize.Line(*req.FullName)
		if name == "" {
			return transport.UserResponse{}, apperr.Validation("fullName cannot be empty")
		}
		upd.FullName = &name
	}
	if req.PhoneNumber != nil {
		number, err := phone.ParseE164(*req.PhoneNumber)
		if err != nil {
			return transport.UserResponse{}, apperr.Validation("invalid phone number")
		}
		upd.PhoneNumber = &number
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		upd.Email = &email
	}

	user, err := s.repo.Update(ctx, userID, upd, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return transport.UserResponse{}, apperr.Storage("storage unavailable", err).WithOp("identity.UpdateUser")
	}
	return toResponse(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toResponse(u repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:          u.ID,
		Role:        u.Role,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
