package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
)

func (s *Server) registerRestrictionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRestrictions",
		Method:      http.MethodGet,
		Path:        "/api/v1/restrictions",
		Summary:     "List restrictions",
		Description: "Returns the current user's content restriction rules",
		Tags:        []string{"Restrictions"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListRestrictions)

	huma.Register(s.api, huma.Operation{
		OperationID: "createRestriction",
		Method:      http.MethodPost,
		Path:        "/api/v1/restrictions",
		Summary:     "Create restriction",
		Description: "Creates a content restriction rule for the current user",
		Tags:        []string{"Restrictions"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleCreateRestriction)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRestriction",
		Method:      http.MethodGet,
		Path:        "/api/v1/restrictions/{id}",
		Summary:     "Get restriction",
		Description: "Returns one of the current user's restriction rules",
		Tags:        []string{"Restrictions"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetRestriction)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRestriction",
		Method:      http.MethodPut,
		Path:        "/api/v1/restrictions/{id}",
		Summary:     "Update restriction",
		Description: "Replaces the editable fields of a restriction rule",
		Tags:        []string{"Restrictions"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleUpdateRestriction)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRestriction",
		Method:      http.MethodDelete,
		Path:        "/api/v1/restrictions/{id}",
		Summary:     "Delete restriction",
		Description: "Deletes a restriction rule",
		Tags:        []string{"Restrictions"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleDeleteRestriction)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibrarySummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/summary",
		Summary:     "Get library summary",
		Description: "Returns per-type counts of the library as the current user sees it, with restriction rules and empty-entity pruning applied",
		Tags:        []string{"Restrictions"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleLibrarySummary)
}

// RestrictionRequest is the request body for creating or updating a
// restriction rule.
type RestrictionRequest struct {
	EntityType    string   `json:"entity_type" validate:"required,oneof=tag studio performer group gallery" doc:"Entity type the rule targets"`
	Mode          string   `json:"mode" validate:"required,oneof=INCLUDE EXCLUDE" doc:"INCLUDE (whitelist) or EXCLUDE (blacklist)"`
	EntityIDs     []string `json:"entity_ids" validate:"required,min=1,dive,required" doc:"Bare entity IDs, matched in any source instance"`
	RestrictEmpty bool     `json:"restrict_empty,omitempty" doc:"Hide entities with no tags (EXCLUDE tag rules only)"`
}

func (r RestrictionRequest) toInput() service.RestrictionInput {
	return service.RestrictionInput{
		EntityType:    r.EntityType,
		Mode:          r.Mode,
		EntityIDs:     r.EntityIDs,
		RestrictEmpty: r.RestrictEmpty,
	}
}

// CreateRestrictionInput wraps the create restriction request for huma.
type CreateRestrictionInput struct {
	Body RestrictionRequest
}

// RestrictionOutput wraps a single restriction rule for huma.
type RestrictionOutput struct {
	Body dto.RestrictionResponse
}

// ListRestrictionsResponse contains the user's restriction rules.
type ListRestrictionsResponse struct {
	Restrictions []dto.RestrictionResponse `json:"restrictions" doc:"Restriction rules, oldest first"`
}

// ListRestrictionsOutput wraps the restriction list for huma.
type ListRestrictionsOutput struct {
	Body ListRestrictionsResponse
}

// RestrictionIDInput contains parameters for rule-scoped operations.
type RestrictionIDInput struct {
	ID string `path:"id" doc:"Restriction rule ID"`
}

// UpdateRestrictionInput wraps the update restriction request for huma.
type UpdateRestrictionInput struct {
	ID   string `path:"id" doc:"Restriction rule ID"`
	Body RestrictionRequest
}

// LibrarySummaryResponse contains per-type counts of the visible library.
type LibrarySummaryResponse struct {
	Scenes     int `json:"scenes" doc:"Visible scene count"`
	Images     int `json:"images" doc:"Visible image count"`
	Galleries  int `json:"galleries" doc:"Visible gallery count"`
	Performers int `json:"performers" doc:"Visible performer count"`
	Studios    int `json:"studios" doc:"Visible studio count"`
	Tags       int `json:"tags" doc:"Visible tag count"`
	Groups     int `json:"groups" doc:"Visible group count"`
}

// LibrarySummaryOutput wraps the library summary for huma.
type LibrarySummaryOutput struct {
	Body LibrarySummaryResponse
}

func (s *Server) handleListRestrictions(ctx context.Context, _ *struct{}) (*ListRestrictionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := s.services.Restriction.ListRestrictions(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.RestrictionResponse, 0, len(rules))
	for _, r := range rules {
		resp = append(resp, dto.NewRestrictionResponse(r))
	}

	return &ListRestrictionsOutput{Body: ListRestrictionsResponse{Restrictions: resp}}, nil
}

func (s *Server) handleCreateRestriction(ctx context.Context, input *CreateRestrictionInput) (*RestrictionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rule, err := s.services.Restriction.CreateRestriction(ctx, userID, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	return &RestrictionOutput{Body: dto.NewRestrictionResponse(rule)}, nil
}

func (s *Server) handleGetRestriction(ctx context.Context, input *RestrictionIDInput) (*RestrictionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rule, err := s.services.Restriction.GetRestriction(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &RestrictionOutput{Body: dto.NewRestrictionResponse(rule)}, nil
}

func (s *Server) handleUpdateRestriction(ctx context.Context, input *UpdateRestrictionInput) (*RestrictionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rule, err := s.services.Restriction.UpdateRestriction(ctx, userID, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	return &RestrictionOutput{Body: dto.NewRestrictionResponse(rule)}, nil
}

func (s *Server) handleDeleteRestriction(ctx context.Context, input *RestrictionIDInput) (*dto.MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Restriction.DeleteRestriction(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Restriction deleted"}}, nil
}

func (s *Server) handleLibrarySummary(ctx context.Context, _ *struct{}) (*LibrarySummaryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	lib, err := s.services.Restriction.VisibleLibrary(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LibrarySummaryOutput{
		Body: LibrarySummaryResponse{
			Scenes:     len(lib.Scenes),
			Images:     len(lib.Images),
			Galleries:  len(lib.Galleries),
			Performers: len(lib.Performers),
			Studios:    len(lib.Studios),
			Tags:       len(lib.Tags),
			Groups:     len(lib.Groups),
		},
	}, nil
}
