package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func (s *Server) registerGroupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGroups",
		Method:      http.MethodGet,
		Path:        "/api/v1/groups",
		Summary:     "List groups",
		Description: "Returns a page of groups visible to the current user, filtered by the optional criteria",
		Tags:        []string{"Groups"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGroup",
		Method:      http.MethodGet,
		Path:        "/api/v1/groups/{key}",
		Summary:     "Get group",
		Description: "Returns a group by key (\"id\" or \"id:instanceId\")",
		Tags:        []string{"Groups"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetGroup)
}

// ListGroupsInput contains parameters for listing groups.
type ListGroupsInput struct {
	dto.ListQuery
}

// ListGroupsOutput wraps a page of groups for huma.
type ListGroupsOutput struct {
	Body dto.ListResponse[dto.GroupResponse]
}

// GetGroupInput contains parameters for getting a group.
type GetGroupInput struct {
	dto.KeyParam
}

// GroupOutput wraps a single group for huma.
type GroupOutput struct {
	Body dto.GroupResponse
}

func (s *Server) handleListGroups(ctx context.Context, input *ListGroupsInput) (*ListGroupsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := decodeFilter[store.GroupFilter](input.Filter)
	if err != nil {
		return nil, err
	}

	params := input.ListParams()
	result, err := s.services.Browse.ListGroups(ctx, userID, f, params)
	if err != nil {
		return nil, err
	}

	return &ListGroupsOutput{Body: dto.NewListResponse(result, params, dto.NewGroupResponse)}, nil
}

func (s *Server) handleGetGroup(ctx context.Context, input *GetGroupInput) (*GroupOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	groups, err := s.services.Browse.GetGroups(ctx, userID, []domain.EntityKey{key})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, huma.Error404NotFound("Group not found")
	}

	return &GroupOutput{Body: dto.NewGroupResponse(groups[0])}, nil
}
