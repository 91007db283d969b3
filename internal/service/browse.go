// Package service provides the business logic layer for browsing the
// mirrored catalog, managing per-user restrictions and overlays, and
// ingesting sync batches.
package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

// BrowseService orchestrates the per-entity list and detail queries.
type BrowseService struct {
	store    store.EntityReader
	expander *filter.Expander
	logger   *slog.Logger
}

// NewBrowseService creates a new browse service.
func NewBrowseService(s store.EntityReader, expander *filter.Expander, logger *slog.Logger) *BrowseService {
	return &BrowseService{
		store:    s,
		expander: expander,
		logger:   logger,
	}
}

// prepareParams normalizes paging and fills in the day-stable default random
// seed. Each user gets their own shuffle, re-rolled once per day, so paging
// through a random-sorted list stays consistent within a browsing session.
func (s *BrowseService) prepareParams(userID string, params *store.ListParams) {
	params.Normalize()
	if strings.EqualFold(params.Sort, "random") && params.RandomSeed == 0 {
		params.RandomSeed = dayStableSeed(userID, time.Now())
	}
}

// dayStableSeed derives a random-sort seed from the user and the current day.
func dayStableSeed(userID string, now time.Time) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", userID, now.Unix()/86400)
	seed := h.Sum64()
	if seed == 0 {
		seed = 1
	}
	return seed
}

// expandHierarchy expands a tag or studio criterion's values to their
// descendant closure when a depth is requested. Requested values keep
// whatever instance qualification they carried; descendants discovered
// through lineage join as bare IDs. An ID requested only in qualified form
// is never re-added bare, since the bare form would match every source.
func expandHierarchy(ctx context.Context, c *filter.MultiCriterion, expand func(context.Context, []string, int) ([]string, error)) error {
	if c == nil || c.Depth == 0 || len(c.Values) == 0 {
		return nil
	}

	keys, _ := filter.ParseCompositeValues(c.Values)
	roots := make([]string, 0, len(keys))
	anyInstance := make(map[string]bool, len(keys))
	for _, k := range keys {
		roots = append(roots, k.ID)
		anyInstance[k.ID] = anyInstance[k.ID] || k.Wildcard()
	}

	expanded, err := expand(ctx, roots, c.Depth)
	if err != nil {
		return fmt.Errorf("expand hierarchy: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Values)+len(expanded))
	merged := make([]string, 0, len(c.Values)+len(expanded))
	for _, v := range c.Values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		merged = append(merged, v)
	}
	for _, id := range expanded {
		if wild, requested := anyInstance[id]; requested && !wild {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}

	c.Values = merged
	c.Depth = 0
	return nil
}

func (s *BrowseService) expandTags(ctx context.Context, criteria ...*filter.MultiCriterion) error {
	for _, c := range criteria {
		if err := expandHierarchy(ctx, c, s.expander.ExpandTagIDs); err != nil {
			return err
		}
	}
	return nil
}

func (s *BrowseService) expandStudios(ctx context.Context, criteria ...*filter.MultiCriterion) error {
	for _, c := range criteria {
		if err := expandHierarchy(ctx, c, s.expander.ExpandStudioIDs); err != nil {
			return err
		}
	}
	return nil
}

// ListScenes returns one page of scenes matching the filter.
func (s *BrowseService) ListScenes(ctx context.Context, userID string, f store.SceneFilter, params store.ListParams) (*store.ListResult[*domain.Scene], error) {
	s.prepareParams(userID, &params)
	if err := s.expandTags(ctx, f.Tags, f.PerformerTags); err != nil {
		return nil, err
	}
	if err := s.expandStudios(ctx, f.Studios); err != nil {
		return nil, err
	}
	return s.store.ListScenes(ctx, userID, f, params)
}

// ListImages returns one page of images matching the filter.
func (s *BrowseService) ListImages(ctx context.Context, userID string, f store.ImageFilter, params store.ListParams) (*store.ListResult[*domain.Image], error) {
	s.prepareParams(userID, &params)
	if err := s.expandTags(ctx, f.Tags, f.PerformerTags); err != nil {
		return nil, err
	}
	if err := s.expandStudios(ctx, f.Studios); err != nil {
		return nil, err
	}
	return s.store.ListImages(ctx, userID, f, params)
}

// ListGalleries returns one page of galleries matching the filter.
func (s *BrowseService) ListGalleries(ctx context.Context, userID string, f store.GalleryFilter, params store.ListParams) (*store.ListResult[*domain.Gallery], error) {
	s.prepareParams(userID, &params)
	if err := s.expandTags(ctx, f.Tags, f.PerformerTags); err != nil {
		return nil, err
	}
	if err := s.expandStudios(ctx, f.Studios); err != nil {
		return nil, err
	}
	return s.store.ListGalleries(ctx, userID, f, params)
}

// ListPerformers returns one page of performers matching the filter.
func (s *BrowseService) ListPerformers(ctx context.Context, userID string, f store.PerformerFilter, params store.ListParams) (*store.ListResult[*domain.Performer], error) {
	s.prepareParams(userID, &params)
	if err := s.expandTags(ctx, f.Tags); err != nil {
		return nil, err
	}
	return s.store.ListPerformers(ctx, userID, f, params)
}

// ListStudios returns one page of studios matching the filter.
func (s *BrowseService) ListStudios(ctx context.Context, userID string, f store.StudioFilter, params store.ListParams) (*store.ListResult[*domain.Studio], error) {
	s.prepareParams(userID, &params)
	if err := s.expandTags(ctx, f.Tags); err != nil {
		return nil, err
	}
	if err := s.expandStudios(ctx, f.Parents); err != nil {
		return nil, err
	}
	return s.store.ListStudios(ctx, userID, f, params)
}

// ListTags returns one page of tags matching the filter.
func (s *BrowseService) ListTags(ctx context.Context, userID string, f store.TagFilter, params store.ListParams) (*store.ListResult[*domain.Tag], error) {
	s.prepareParams(userID, &params)
	if err := s.expandTags(ctx, f.Parents); err != nil {
		return nil, err
	}
	return s.store.ListTags(ctx, userID, f, params)
}

// ListGroups returns one page of groups matching the filter.
func (s *BrowseService) ListGroups(ctx context.Context, userID string, f store.GroupFilter, params store.ListParams) (*store.ListResult[*domain.Group], error) {
	s.prepareParams(userID, &params)
	if err := s.expandTags(ctx, f.Tags); err != nil {
		return nil, err
	}
	if err := s.expandStudios(ctx, f.Studios); err != nil {
		return nil, err
	}
	return s.store.ListGroups(ctx, userID, f, params)
}

// GetScenes returns the scenes for the given keys, in request order.
func (s *BrowseService) GetScenes(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Scene, error) {
	return s.store.GetScenesByIDs(ctx, userID, keys)
}

// GetImages returns the images for the given keys, in request order.
func (s *BrowseService) GetImages(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Image, error) {
	return s.store.GetImagesByIDs(ctx, userID, keys)
}

// GetGalleries returns the galleries for the given keys, in request order.
func (s *BrowseService) GetGalleries(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Gallery, error) {
	return s.store.GetGalleriesByIDs(ctx, userID, keys)
}

// GetPerformers returns the performers for the given keys, in request order.
func (s *BrowseService) GetPerformers(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Performer, error) {
	return s.store.GetPerformersByIDs(ctx, userID, keys)
}

// GetStudios returns the studios for the given keys, in request order.
func (s *BrowseService) GetStudios(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Studio, error) {
	return s.store.GetStudiosByIDs(ctx, userID, keys)
}

// GetTags returns the tags for the given keys, in request order.
func (s *BrowseService) GetTags(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Tag, error) {
	return s.store.GetTagsByIDs(ctx, userID, keys)
}

// GetGroups returns the groups for the given keys, in request order.
func (s *BrowseService) GetGroups(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Group, error) {
	return s.store.GetGroupsByIDs(ctx, userID, keys)
}
