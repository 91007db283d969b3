package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns a page of tags visible to the current user, filtered by the optional criteria",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{key}",
		Summary:     "Get tag",
		Description: "Returns a tag by key (\"id\" or \"id:instanceId\")",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetTag)
}

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	dto.ListQuery
}

// ListTagsOutput wraps a page of tags for huma.
type ListTagsOutput struct {
	Body dto.ListResponse[dto.TagResponse]
}

// GetTagInput contains parameters for getting a tag.
type GetTagInput struct {
	dto.KeyParam
}

// TagOutput wraps a single tag for huma.
type TagOutput struct {
	Body dto.TagResponse
}

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := decodeFilter[store.TagFilter](input.Filter)
	if err != nil {
		return nil, err
	}

	params := input.ListParams()
	result, err := s.services.Browse.ListTags(ctx, userID, f, params)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: dto.NewListResponse(result, params, dto.NewTagResponse)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Browse.GetTags(ctx, userID, []domain.EntityKey{key})
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, huma.Error404NotFound("Tag not found")
	}

	return &TagOutput{Body: dto.NewTagResponse(tags[0])}, nil
}
