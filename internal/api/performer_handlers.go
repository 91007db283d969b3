package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func (s *Server) registerPerformerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPerformers",
		Method:      http.MethodGet,
		Path:        "/api/v1/performers",
		Summary:     "List performers",
		Description: "Returns a page of performers visible to the current user, filtered by the optional criteria",
		Tags:        []string{"Performers"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListPerformers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPerformer",
		Method:      http.MethodGet,
		Path:        "/api/v1/performers/{key}",
		Summary:     "Get performer",
		Description: "Returns a performer by key (\"id\" or \"id:instanceId\")",
		Tags:        []string{"Performers"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetPerformer)
}

// ListPerformersInput contains parameters for listing performers.
type ListPerformersInput struct {
	dto.ListQuery
}

// ListPerformersOutput wraps a page of performers for huma.
type ListPerformersOutput struct {
	Body dto.ListResponse[dto.PerformerResponse]
}

// GetPerformerInput contains parameters for getting a performer.
type GetPerformerInput struct {
	dto.KeyParam
}

// PerformerOutput wraps a single performer for huma.
type PerformerOutput struct {
	Body dto.PerformerResponse
}

func (s *Server) handleListPerformers(ctx context.Context, input *ListPerformersInput) (*ListPerformersOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := decodeFilter[store.PerformerFilter](input.Filter)
	if err != nil {
		return nil, err
	}

	params := input.ListParams()
	result, err := s.services.Browse.ListPerformers(ctx, userID, f, params)
	if err != nil {
		return nil, err
	}

	return &ListPerformersOutput{Body: dto.NewListResponse(result, params, dto.NewPerformerResponse)}, nil
}

func (s *Server) handleGetPerformer(ctx context.Context, input *GetPerformerInput) (*PerformerOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	performers, err := s.services.Browse.GetPerformers(ctx, userID, []domain.EntityKey{key})
	if err != nil {
		return nil, err
	}
	if len(performers) == 0 {
		return nil, huma.Error404NotFound("Performer not found")
	}

	return &PerformerOutput{Body: dto.NewPerformerResponse(performers[0])}, nil
}
