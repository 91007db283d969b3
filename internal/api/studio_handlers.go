package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func (s *Server) registerStudioRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listStudios",
		Method:      http.MethodGet,
		Path:        "/api/v1/studios",
		Summary:     "List studios",
		Description: "Returns a page of studios visible to the current user, filtered by the optional criteria",
		Tags:        []string{"Studios"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListStudios)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStudio",
		Method:      http.MethodGet,
		Path:        "/api/v1/studios/{key}",
		Summary:     "Get studio",
		Description: "Returns a studio by key (\"id\" or \"id:instanceId\")",
		Tags:        []string{"Studios"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetStudio)
}

// ListStudiosInput contains parameters for listing studios.
type ListStudiosInput struct {
	dto.ListQuery
}

// ListStudiosOutput wraps a page of studios for huma.
type ListStudiosOutput struct {
	Body dto.ListResponse[dto.StudioResponse]
}

// GetStudioInput contains parameters for getting a studio.
type GetStudioInput struct {
	dto.KeyParam
}

// StudioOutput wraps a single studio for huma.
type StudioOutput struct {
	Body dto.StudioResponse
}

func (s *Server) handleListStudios(ctx context.Context, input *ListStudiosInput) (*ListStudiosOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := decodeFilter[store.StudioFilter](input.Filter)
	if err != nil {
		return nil, err
	}

	params := input.ListParams()
	result, err := s.services.Browse.ListStudios(ctx, userID, f, params)
	if err != nil {
		return nil, err
	}

	return &ListStudiosOutput{Body: dto.NewListResponse(result, params, dto.NewStudioResponse)}, nil
}

func (s *Server) handleGetStudio(ctx context.Context, input *GetStudioInput) (*StudioOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	studios, err := s.services.Browse.GetStudios(ctx, userID, []domain.EntityKey{key})
	if err != nil {
		return nil, err
	}
	if len(studios) == 0 {
		return nil, huma.Error404NotFound("Studio not found")
	}

	return &StudioOutput{Body: dto.NewStudioResponse(studios[0])}, nil
}
