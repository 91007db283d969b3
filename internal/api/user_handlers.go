package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all user accounts (admin only)",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "createUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users",
		Summary:     "Create user",
		Description: "Creates a user account (admin only)",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes a user account (admin only)",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleDeleteUser)
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100" doc:"Display name"`
	IsAdmin bool   `json:"is_admin,omitempty" doc:"Grant admin rights"`
}

// CreateUserInput wraps the create user request for huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// UserOutput wraps a single user for huma.
type UserOutput struct {
	Body dto.UserResponse
}

// ListUsersResponse contains all user accounts.
type ListUsersResponse struct {
	Users []dto.UserResponse `json:"users" doc:"User accounts"`
}

// ListUsersOutput wraps the user list for huma.
type ListUsersOutput struct {
	Body ListUsersResponse
}

// UserIDInput contains parameters for user-scoped operations.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: dto.NewUserResponse(user)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.User.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, dto.NewUserResponse(u))
	}

	return &ListUsersOutput{Body: ListUsersResponse{Users: resp}}, nil
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	user, err := s.services.User.CreateUser(ctx, service.UserInput{
		Name:    input.Body.Name,
		IsAdmin: input.Body.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: dto.NewUserResponse(user)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserIDInput) (*dto.MessageOutput, error) {
	adminID, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if adminID == input.ID {
		return nil, huma.Error400BadRequest("Cannot delete your own account")
	}

	if err := s.services.User.DeleteUser(ctx, input.ID); err != nil {
		return nil, err
	}

	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "User deleted"}}, nil
}
