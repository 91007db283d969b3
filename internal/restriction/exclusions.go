package restriction

import (
	"context"
	"fmt"
	"sort"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// Exclusions is the SQL-facing form of a user's EXCLUDE rules: per-type bare
// ID sets the entity query builders turn into NOT EXISTS predicates,
// including the performer-tag and studio-tag cascade legs.
type Exclusions struct {
	TagIDs       []string
	StudioIDs    []string
	PerformerIDs []string
	GroupIDs     []string
	GalleryIDs   []string

	// RestrictEmptyTags hides rows with no tags at all.
	RestrictEmptyTags bool
}

// Empty reports whether no exclusion applies.
func (e *Exclusions) Empty() bool {
	return e == nil || (len(e.TagIDs) == 0 && len(e.StudioIDs) == 0 &&
		len(e.PerformerIDs) == 0 && len(e.GroupIDs) == 0 &&
		len(e.GalleryIDs) == 0 && !e.RestrictEmptyTags)
}

// ExclusionsForUser derives the SQL-facing exclusion sets from the user's
// stored EXCLUDE rules. INCLUDE rules are not represented here; they are
// applied by the collection filters, not the paginated queries.
func (s *Service) ExclusionsForUser(ctx context.Context, userID string) (*Exclusions, error) {
	rules, err := s.rules.ListRestrictionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load restrictions for user %s: %w", userID, err)
	}
	return ExclusionsFromRules(rules), nil
}

// ExclusionsFromRules collects EXCLUDE rules into sorted per-type ID lists.
func ExclusionsFromRules(rules []*domain.ContentRestriction) *Exclusions {
	sets := map[domain.EntityType]map[string]struct{}{}
	ex := &Exclusions{}
	for _, rule := range rules {
		if rule.Mode != domain.RestrictionExclude {
			continue
		}
		set := sets[rule.EntityType]
		if set == nil {
			set = make(map[string]struct{})
			sets[rule.EntityType] = set
		}
		for _, id := range rule.EntityIDs {
			set[id] = struct{}{}
		}
		if rule.EntityType == domain.EntityTag && rule.RestrictEmpty {
			ex.RestrictEmptyTags = true
		}
	}

	ex.TagIDs = sortedIDs(sets[domain.EntityTag])
	ex.StudioIDs = sortedIDs(sets[domain.EntityStudio])
	ex.PerformerIDs = sortedIDs(sets[domain.EntityPerformer])
	ex.GroupIDs = sortedIDs(sets[domain.EntityGroup])
	ex.GalleryIDs = sortedIDs(sets[domain.EntityGallery])
	return ex
}

func sortedIDs(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
