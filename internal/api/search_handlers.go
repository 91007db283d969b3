package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the catalog",
		Description: "Full-text search across scenes, performers, studios, tags, groups and galleries",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query       string  `query:"q" doc:"Search query"`
	Types       string  `query:"types" doc:"Comma-separated document types (scene, performer, studio, tag, group, gallery)"`
	Tags        string  `query:"tags" doc:"Comma-separated exact tag names to require"`
	MinRating   int     `query:"min_rating" validate:"omitempty,gte=0,lte=100" doc:"Minimum rating (0-100)"`
	MaxRating   int     `query:"max_rating" validate:"omitempty,gte=0,lte=100" doc:"Maximum rating (0-100)"`
	MinDuration float64 `query:"min_duration" doc:"Minimum duration in seconds (scenes only)"`
	MaxDuration float64 `query:"max_duration" doc:"Maximum duration in seconds"`
	Limit       int     `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Maximum results (default 20)"`
	Offset      int     `query:"offset" validate:"omitempty,gte=0" doc:"Result offset for pagination"`
	SortBy      string  `query:"sort" validate:"omitempty,oneof=relevance name recent rating duration" doc:"Sort order"`
	SortOrder   string  `query:"order" validate:"omitempty,oneof=asc desc" doc:"Sort direction"`
	Facets      bool    `query:"facets" doc:"Include type and tag facet counts"`
	Highlight   bool    `query:"highlight" doc:"Include match highlighting"`
}

// SearchOutput wraps search results for huma.
type SearchOutput struct {
	Body search.Result
}

// splitList splits a comma-separated query value, dropping empty elements.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.Types = splitList(input.Types)
	params.Tags = splitList(input.Tags)
	params.MinRating = input.MinRating
	params.MaxRating = input.MaxRating
	params.MinDuration = input.MinDuration
	params.MaxDuration = input.MaxDuration
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}
	params.IncludeFacets = input.Facets
	params.Highlight = input.Highlight

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}
