package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/id"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
	"github.com/mirrorboxapp/mirrorbox-server/internal/validation"
)

// UserService manages local accounts. Authentication itself lives in an
// outer layer; the catalog only needs stable user IDs to scope restrictions
// and overlays.
type UserService struct {
	users     store.UserStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users store.UserStore, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		validator: validator,
		logger:    logger,
	}
}

// UserInput carries the editable fields of an account.
type UserInput struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	IsAdmin bool   `json:"is_admin"`
}

// CreateUser creates a local account.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (*domain.User, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:      id.MustGenerate("user"),
		Name:    input.Name,
		IsAdmin: input.IsAdmin,
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "name", u.Name)
	return u, nil
}

// GetUser returns one account by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// ListUsers returns all accounts ordered by name.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListUsers(ctx)
}

// DeleteUser removes an account together with its restrictions and overlays.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}
