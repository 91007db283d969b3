package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/search"
)

// SearchService runs full-text queries against the mirror's search index.
type SearchService struct {
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		logger: logger,
	}
}

// Search executes a query. Hits carry the entity keys a client feeds back
// into the detail endpoints.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	s.logger.Debug("search executed",
		"query", params.Query,
		"total", result.Total,
		"took_ms", result.TookMs,
	)
	return result, nil
}

// HitKeys maps one result page to entity keys grouped by type, preserving
// hit order within each type.
func HitKeys(result *search.Result) map[domain.EntityType][]domain.EntityKey {
	keys := make(map[domain.EntityType][]domain.EntityKey)
	for _, hit := range result.Hits {
		t := domain.EntityType(hit.Type)
		keys[t] = append(keys[t], domain.EntityKey{ID: hit.ID, InstanceID: hit.InstanceID})
	}
	return keys
}
