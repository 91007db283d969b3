package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
)

func (s *Server) registerOverlayRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getOverlay",
		Method:      http.MethodGet,
		Path:        "/api/v1/overlays/{type}/{key}",
		Summary:     "Get overlay",
		Description: "Returns the current user's overlay for an entity",
		Tags:        []string{"Overlays"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetOverlay)

	huma.Register(s.api, huma.Operation{
		OperationID: "setOverlay",
		Method:      http.MethodPut,
		Path:        "/api/v1/overlays/{type}/{key}",
		Summary:     "Set overlay",
		Description: "Sets the current user's rating and favorite flag for an entity",
		Tags:        []string{"Overlays"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleSetOverlay)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordView",
		Method:      http.MethodPost,
		Path:        "/api/v1/overlays/{type}/{key}/view",
		Summary:     "Record view",
		Description: "Increments the current user's view count for an entity",
		Tags:        []string{"Overlays"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleRecordView)
}

// entityTypes lists the valid values of the overlay type path parameter.
var entityTypes = []domain.EntityType{
	domain.EntityScene, domain.EntityPerformer, domain.EntityStudio,
	domain.EntityTag, domain.EntityGroup, domain.EntityGallery,
	domain.EntityImage,
}

func parseEntityType(raw string) (domain.EntityType, error) {
	for _, t := range entityTypes {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", huma.Error400BadRequest("Unknown entity type: " + raw)
}

// OverlayPathInput identifies the entity an overlay operation targets.
type OverlayPathInput struct {
	Type string `path:"type" doc:"Entity type (scene, performer, studio, tag, group, gallery, image)"`
	Key  string `path:"key" doc:"Entity key (\"id\" or \"id:instanceId\")"`
}

// OverlayRequest is the request body for setting an overlay.
type OverlayRequest struct {
	Rating   *int `json:"rating,omitempty" validate:"omitempty,gte=0,lte=100" doc:"Personal rating (0-100), null to clear"`
	Favorite bool `json:"favorite" doc:"Personal favorite flag"`
}

// SetOverlayInput wraps the set overlay request for huma.
type SetOverlayInput struct {
	Type string `path:"type" doc:"Entity type (scene, performer, studio, tag, group, gallery, image)"`
	Key  string `path:"key" doc:"Entity key (\"id\" or \"id:instanceId\")"`
	Body OverlayRequest
}

// OverlayOutput wraps an overlay for huma.
type OverlayOutput struct {
	Body dto.OverlayResponse
}

// ViewCountResponse reports the view count after an increment.
type ViewCountResponse struct {
	ViewCount int `json:"view_count" doc:"View count after the increment"`
}

// ViewCountOutput wraps the view count response for huma.
type ViewCountOutput struct {
	Body ViewCountResponse
}

func (s *Server) handleGetOverlay(ctx context.Context, input *OverlayPathInput) (*OverlayOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entityType, err := parseEntityType(input.Type)
	if err != nil {
		return nil, err
	}
	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	overlay, err := s.services.Overlay.GetOverlay(ctx, userID, entityType, key)
	if err != nil {
		return nil, err
	}

	return &OverlayOutput{Body: *dto.NewOverlayResponse(overlay)}, nil
}

func (s *Server) handleSetOverlay(ctx context.Context, input *SetOverlayInput) (*OverlayOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entityType, err := parseEntityType(input.Type)
	if err != nil {
		return nil, err
	}
	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	overlay, err := s.services.Overlay.SetOverlay(ctx, userID, entityType, key, service.OverlayInput{
		Rating:   input.Body.Rating,
		Favorite: input.Body.Favorite,
	})
	if err != nil {
		return nil, err
	}

	return &OverlayOutput{Body: *dto.NewOverlayResponse(overlay)}, nil
}

func (s *Server) handleRecordView(ctx context.Context, input *OverlayPathInput) (*ViewCountOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entityType, err := parseEntityType(input.Type)
	if err != nil {
		return nil, err
	}
	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	count, err := s.services.Overlay.RecordView(ctx, userID, entityType, key)
	if err != nil {
		return nil, err
	}

	return &ViewCountOutput{Body: ViewCountResponse{ViewCount: count}}, nil
}
