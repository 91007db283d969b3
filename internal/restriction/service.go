// Package restriction applies per-user content-visibility rules to
// materialized entity collections: INCLUDE whitelists first, then EXCLUDE
// rules with their cascades, then empty-entity pruning.
package restriction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// RuleSource loads a user's stored restriction rules. A fetch failure must
// propagate to the caller: serving unrestricted content on a persistence
// error would be a content-safety violation, so callers fail closed.
type RuleSource interface {
	ListRestrictionsForUser(ctx context.Context, userID string) ([]*domain.ContentRestriction, error)
}

// Service evaluates restriction rules against entity collections. It holds
// no state beyond its collaborators and is safe for concurrent use.
type Service struct {
	rules  RuleSource
	logger *slog.Logger
}

// NewService creates a restriction service.
func NewService(rules RuleSource, logger *slog.Logger) *Service {
	return &Service{rules: rules, logger: logger}
}

// ruleset is a user's rules grouped for evaluation. INCLUDE sets union
// within an entity type and intersect across types; EXCLUDE sets union.
type ruleset struct {
	includes map[domain.EntityType]map[string]struct{}
	excludes map[domain.EntityType]map[string]struct{}

	// restrictEmptyTags is set when any EXCLUDE-tags rule carries
	// RestrictEmpty: entities with no tags at all are then hidden too.
	restrictEmptyTags bool
}

func (r *ruleset) empty() bool {
	return len(r.includes) == 0 && len(r.excludes) == 0
}

func (r *ruleset) includeSet(t domain.EntityType) (map[string]struct{}, bool) {
	set, ok := r.includes[t]
	return set, ok
}

func (r *ruleset) excludeSet(t domain.EntityType) map[string]struct{} {
	return r.excludes[t]
}

func (s *Service) loadRules(ctx context.Context, userID string) (*ruleset, error) {
	rules, err := s.rules.ListRestrictionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load restrictions for user %s: %w", userID, err)
	}

	rs := &ruleset{
		includes: make(map[domain.EntityType]map[string]struct{}),
		excludes: make(map[domain.EntityType]map[string]struct{}),
	}
	for _, rule := range rules {
		target := rs.excludes
		if rule.Mode == domain.RestrictionInclude {
			target = rs.includes
		}
		set := target[rule.EntityType]
		if set == nil {
			set = make(map[string]struct{})
			target[rule.EntityType] = set
		}
		for _, id := range rule.EntityIDs {
			set[id] = struct{}{}
		}
		if rule.Mode == domain.RestrictionExclude && rule.EntityType == domain.EntityTag && rule.RestrictEmpty {
			rs.restrictEmptyTags = true
		}
	}
	if !rs.empty() {
		s.logger.Debug("loaded content restrictions",
			"user_id", userID,
			"include_types", len(rs.includes),
			"exclude_types", len(rs.excludes),
			"restrict_empty_tags", rs.restrictEmptyTags)
	}
	return rs, nil
}

// anyKeyIn reports whether any key's bare ID is in the rule set.
func anyKeyIn(keys []domain.EntityKey, set map[string]struct{}) bool {
	for _, k := range keys {
		if _, ok := set[k.ID]; ok {
			return true
		}
	}
	return false
}

func studioIn(studio *domain.Studio, set map[string]struct{}) bool {
	if studio == nil {
		return false
	}
	_, ok := set[studio.ID]
	return ok
}

// studioTagKeys returns the tags of a possibly-nil studio.
func studioTagKeys(studio *domain.Studio) []domain.EntityKey {
	if studio == nil {
		return nil
	}
	return studio.TagKeys()
}

// performersTaggedIn reports whether any performer carries a tag from the
// set. This is the performer-tag leg of the exclusion cascade.
func performersTaggedIn(performers []*domain.Performer, tags map[string]struct{}) bool {
	for _, p := range performers {
		if anyKeyIn(p.TagKeys(), tags) {
			return true
		}
	}
	return false
}

// filterEntities is the shared INCLUDE-then-EXCLUDE evaluation. dims lists
// the restriction dimensions relevant to the entity kind; excluded decides
// the EXCLUDE phase including cascades.
func filterEntities[T any](items []T, rs *ruleset, dims func(T) map[domain.EntityType][]domain.EntityKey, excluded func(T, *ruleset) bool) []T {
	if rs.empty() {
		return items
	}

	kept := make([]T, 0, len(items))
	for _, item := range items {
		matchable := dims(item)

		// INCLUDE phase: the entity must match every active INCLUDE
		// dimension that applies to its kind.
		retained := true
		for entityType, keys := range matchable {
			set, active := rs.includeSet(entityType)
			if !active {
				continue
			}
			if !anyKeyIn(keys, set) {
				retained = false
				break
			}
		}
		if !retained {
			continue
		}

		// EXCLUDE phase.
		if excluded(item, rs) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// FilterScenesForUser returns the scenes the user may see. Exclusions
// cascade: a scene is hidden by a direct excluded tag, its studio, a
// performer, a performer tagged with an excluded tag, a studio tagged with
// an excluded tag, an excluded group, or an excluded gallery.
func (s *Service) FilterScenesForUser(ctx context.Context, userID string, scenes []*domain.Scene) ([]*domain.Scene, error) {
	rs, err := s.loadRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterEntities(scenes, rs, sceneDims, sceneExcluded), nil
}

func sceneDims(sc *domain.Scene) map[domain.EntityType][]domain.EntityKey {
	dims := map[domain.EntityType][]domain.EntityKey{
		domain.EntityTag:       sc.TagKeys(),
		domain.EntityPerformer: sc.PerformerKeys(),
		domain.EntityGroup:     sc.GroupKeys(),
		domain.EntityGallery:   sc.GalleryKeys(),
	}
	if sc.Studio != nil {
		dims[domain.EntityStudio] = []domain.EntityKey{sc.Studio.Key()}
	} else {
		dims[domain.EntityStudio] = nil
	}
	return dims
}

func sceneExcluded(sc *domain.Scene, rs *ruleset) bool {
	tags := rs.excludeSet(domain.EntityTag)
	if anyKeyIn(sc.TagKeys(), tags) {
		return true
	}
	if rs.restrictEmptyTags && len(sc.Tags) == 0 {
		return true
	}
	if studioIn(sc.Studio, rs.excludeSet(domain.EntityStudio)) {
		return true
	}
	if anyKeyIn(sc.PerformerKeys(), rs.excludeSet(domain.EntityPerformer)) {
		return true
	}
	if anyKeyIn(sc.GroupKeys(), rs.excludeSet(domain.EntityGroup)) {
		return true
	}
	if anyKeyIn(sc.GalleryKeys(), rs.excludeSet(domain.EntityGallery)) {
		return true
	}
	// Cascade through performer and studio tags.
	if performersTaggedIn(sc.Performers, tags) {
		return true
	}
	return anyKeyIn(studioTagKeys(sc.Studio), tags)
}

// FilterGalleriesForUser returns the galleries the user may see, with the
// same cascade legs as scenes.
func (s *Service) FilterGalleriesForUser(ctx context.Context, userID string, galleries []*domain.Gallery) ([]*domain.Gallery, error) {
	rs, err := s.loadRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterEntities(galleries, rs, galleryDims, galleryExcluded), nil
}

func galleryDims(g *domain.Gallery) map[domain.EntityType][]domain.EntityKey {
	dims := map[domain.EntityType][]domain.EntityKey{
		domain.EntityTag:       g.TagKeys(),
		domain.EntityPerformer: g.PerformerKeys(),
		domain.EntityGallery:   {g.Key()},
	}
	if g.Studio != nil {
		dims[domain.EntityStudio] = []domain.EntityKey{g.Studio.Key()}
	} else {
		dims[domain.EntityStudio] = nil
	}
	return dims
}

func galleryExcluded(g *domain.Gallery, rs *ruleset) bool {
	tags := rs.excludeSet(domain.EntityTag)
	if anyKeyIn(g.TagKeys(), tags) {
		return true
	}
	if rs.restrictEmptyTags && len(g.Tags) == 0 {
		return true
	}
	if _, ok := rs.excludeSet(domain.EntityGallery)[g.ID]; ok {
		return true
	}
	if studioIn(g.Studio, rs.excludeSet(domain.EntityStudio)) {
		return true
	}
	if anyKeyIn(g.PerformerKeys(), rs.excludeSet(domain.EntityPerformer)) {
		return true
	}
	if performersTaggedIn(g.Performers, tags) {
		return true
	}
	return anyKeyIn(studioTagKeys(g.Studio), tags)
}

// FilterGroupsForUser returns the groups the user may see.
func (s *Service) FilterGroupsForUser(ctx context.Context, userID string, groups []*domain.Group) ([]*domain.Group, error) {
	rs, err := s.loadRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterEntities(groups, rs, groupDims, groupExcluded), nil
}

func groupDims(g *domain.Group) map[domain.EntityType][]domain.EntityKey {
	dims := map[domain.EntityType][]domain.EntityKey{
		domain.EntityTag:   g.TagKeys(),
		domain.EntityGroup: {g.Key()},
	}
	if g.Studio != nil {
		dims[domain.EntityStudio] = []domain.EntityKey{g.Studio.Key()}
	} else {
		dims[domain.EntityStudio] = nil
	}
	return dims
}

func groupExcluded(g *domain.Group, rs *ruleset) bool {
	tags := rs.excludeSet(domain.EntityTag)
	if anyKeyIn(g.TagKeys(), tags) {
		return true
	}
	if rs.restrictEmptyTags && len(g.Tags) == 0 {
		return true
	}
	if _, ok := rs.excludeSet(domain.EntityGroup)[g.ID]; ok {
		return true
	}
	if studioIn(g.Studio, rs.excludeSet(domain.EntityStudio)) {
		return true
	}
	return anyKeyIn(studioTagKeys(g.Studio), tags)
}

// FilterPerformersForUser returns the performers the user may see.
func (s *Service) FilterPerformersForUser(ctx context.Context, userID string, performers []*domain.Performer) ([]*domain.Performer, error) {
	rs, err := s.loadRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterEntities(performers, rs, performerDims, performerExcluded), nil
}

func performerDims(p *domain.Performer) map[domain.EntityType][]domain.EntityKey {
	return map[domain.EntityType][]domain.EntityKey{
		domain.EntityTag:       p.TagKeys(),
		domain.EntityPerformer: {p.Key()},
	}
}

func performerExcluded(p *domain.Performer, rs *ruleset) bool {
	if _, ok := rs.excludeSet(domain.EntityPerformer)[p.ID]; ok {
		return true
	}
	if anyKeyIn(p.TagKeys(), rs.excludeSet(domain.EntityTag)) {
		return true
	}
	return rs.restrictEmptyTags && len(p.Tags) == 0
}

// FilterStudiosForUser returns the studios the user may see.
func (s *Service) FilterStudiosForUser(ctx context.Context, userID string, studios []*domain.Studio) ([]*domain.Studio, error) {
	rs, err := s.loadRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterEntities(studios, rs, studioDims, studioExcluded), nil
}

func studioDims(st *domain.Studio) map[domain.EntityType][]domain.EntityKey {
	return map[domain.EntityType][]domain.EntityKey{
		domain.EntityTag:    st.TagKeys(),
		domain.EntityStudio: {st.Key()},
	}
}

func studioExcluded(st *domain.Studio, rs *ruleset) bool {
	if _, ok := rs.excludeSet(domain.EntityStudio)[st.ID]; ok {
		return true
	}
	if anyKeyIn(st.TagKeys(), rs.excludeSet(domain.EntityTag)) {
		return true
	}
	return rs.restrictEmptyTags && len(st.Tags) == 0
}

// FilterTagsForUser returns the tags the user may see.
func (s *Service) FilterTagsForUser(ctx context.Context, userID string, tags []*domain.Tag) ([]*domain.Tag, error) {
	rs, err := s.loadRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterEntities(tags, rs, tagDims, tagExcluded), nil
}

func tagDims(t *domain.Tag) map[domain.EntityType][]domain.EntityKey {
	return map[domain.EntityType][]domain.EntityKey{
		domain.EntityTag: {t.Key()},
	}
}

func tagExcluded(t *domain.Tag, rs *ruleset) bool {
	_, ok := rs.excludeSet(domain.EntityTag)[t.ID]
	return ok
}

// FilterImagesForUser returns the images the user may see. Images follow the
// scene cascade: tags, studio, performers, galleries, and the performer-tag
// and studio-tag legs.
func (s *Service) FilterImagesForUser(ctx context.Context, userID string, images []*domain.Image) ([]*domain.Image, error) {
	rs, err := s.loadRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterEntities(images, rs, imageDims, imageExcluded), nil
}

func imageDims(img *domain.Image) map[domain.EntityType][]domain.EntityKey {
	dims := map[domain.EntityType][]domain.EntityKey{
		domain.EntityTag:       img.TagKeys(),
		domain.EntityPerformer: img.PerformerKeys(),
		domain.EntityGallery:   img.GalleryKeys(),
	}
	if img.Studio != nil {
		dims[domain.EntityStudio] = []domain.EntityKey{img.Studio.Key()}
	} else {
		dims[domain.EntityStudio] = nil
	}
	return dims
}

func imageExcluded(img *domain.Image, rs *ruleset) bool {
	tags := rs.excludeSet(domain.EntityTag)
	if anyKeyIn(img.TagKeys(), tags) {
		return true
	}
	if rs.restrictEmptyTags && len(img.Tags) == 0 {
		return true
	}
	if studioIn(img.Studio, rs.excludeSet(domain.EntityStudio)) {
		return true
	}
	if anyKeyIn(img.PerformerKeys(), rs.excludeSet(domain.EntityPerformer)) {
		return true
	}
	if anyKeyIn(img.GalleryKeys(), rs.excludeSet(domain.EntityGallery)) {
		return true
	}
	if performersTaggedIn(img.Performers, tags) {
		return true
	}
	return anyKeyIn(studioTagKeys(img.Studio), tags)
}
