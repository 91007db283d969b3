package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func (s *Server) registerSceneRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listScenes",
		Method:      http.MethodGet,
		Path:        "/api/v1/scenes",
		Summary:     "List scenes",
		Description: "Returns a page of scenes visible to the current user, filtered by the optional criteria",
		Tags:        []string{"Scenes"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListScenes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getScene",
		Method:      http.MethodGet,
		Path:        "/api/v1/scenes/{key}",
		Summary:     "Get scene",
		Description: "Returns a scene by key (\"id\" or \"id:instanceId\")",
		Tags:        []string{"Scenes"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetScene)
}

// ListScenesInput contains parameters for listing scenes.
type ListScenesInput struct {
	dto.ListQuery
}

// ListScenesOutput wraps a page of scenes for huma.
type ListScenesOutput struct {
	Body dto.ListResponse[dto.SceneResponse]
}

// GetSceneInput contains parameters for getting a scene.
type GetSceneInput struct {
	dto.KeyParam
}

// SceneOutput wraps a single scene for huma.
type SceneOutput struct {
	Body dto.SceneResponse
}

func (s *Server) handleListScenes(ctx context.Context, input *ListScenesInput) (*ListScenesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := decodeFilter[store.SceneFilter](input.Filter)
	if err != nil {
		return nil, err
	}

	params := input.ListParams()
	result, err := s.services.Browse.ListScenes(ctx, userID, f, params)
	if err != nil {
		return nil, err
	}

	return &ListScenesOutput{Body: dto.NewListResponse(result, params, dto.NewSceneResponse)}, nil
}

func (s *Server) handleGetScene(ctx context.Context, input *GetSceneInput) (*SceneOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	scenes, err := s.services.Browse.GetScenes(ctx, userID, []domain.EntityKey{key})
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, huma.Error404NotFound("Scene not found")
	}

	return &SceneOutput{Body: dto.NewSceneResponse(scenes[0])}, nil
}
