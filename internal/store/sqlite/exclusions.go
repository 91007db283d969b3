package sqlite

import (
	"context"
	"fmt"

	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
	"github.com/mirrorboxapp/mirrorbox-server/internal/restriction"
)

// userExclusions derives the SQL-applicable exclusion sets from the user's
// stored EXCLUDE rules. INCLUDE rules and the full cascade are evaluated by
// the restriction service; the query-level sets keep excluded content out of
// paged results without materializing the library.
func (s *Store) userExclusions(ctx context.Context, userID string) (*restriction.Exclusions, error) {
	rules, err := s.ListRestrictionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}
	return restriction.ExclusionsFromRules(rules), nil
}

// notLinked excludes rows linked through a junction table to any entity in
// ids. Matching is by bare ID: exclusion rules apply across all source
// instances.
func notLinked(table, parentIDCol, parentInstanceCol, entityIDCol, parentIDExpr, parentInstanceExpr string, ids []string) filter.Clause {
	if len(ids) == 0 {
		return filter.Clause{}
	}
	in := inList(table+"."+entityIDCol, ids)
	return filter.Clause{
		SQL: "NOT EXISTS (SELECT 1 FROM " + table +
			" WHERE " + table + "." + parentIDCol + " = " + parentIDExpr +
			" AND " + table + "." + parentInstanceCol + " = " + parentInstanceExpr +
			" AND " + in.SQL + ")",
		Args: in.Args,
	}
}

// notOneOf excludes rows whose own bare ID is in ids.
func notOneOf(idExpr string, ids []string) filter.Clause {
	if len(ids) == 0 {
		return filter.Clause{}
	}
	in := inList(idExpr, ids)
	return filter.Clause{
		SQL:  "NOT " + in.SQL,
		Args: in.Args,
	}
}

// studioNotOneOf excludes rows referencing an excluded studio; NULL studio
// references pass.
func studioNotOneOf(idCol string, ids []string) filter.Clause {
	if len(ids) == 0 {
		return filter.Clause{}
	}
	in := inList(idCol, ids)
	return filter.Clause{
		SQL:  "(" + idCol + " IS NULL OR NOT " + in.SQL + ")",
		Args: in.Args,
	}
}

// studioNotTagged excludes rows whose studio carries an excluded tag.
func studioNotTagged(studioIDCol, studioInstanceCol string, tagIDs []string) filter.Clause {
	if len(tagIDs) == 0 {
		return filter.Clause{}
	}
	in := inList("studio_tags.tag_id", tagIDs)
	return filter.Clause{
		SQL: "NOT EXISTS (SELECT 1 FROM studio_tags" +
			" WHERE studio_tags.studio_id = " + studioIDCol +
			" AND studio_tags.studio_instance_id = " + studioInstanceCol +
			" AND " + in.SQL + ")",
		Args: in.Args,
	}
}

// mustHaveTags requires at least one tag link (the RestrictEmpty behaviour).
func mustHaveTags(table, parentIDCol, parentInstanceCol, parentIDExpr, parentInstanceExpr string) filter.Clause {
	return filter.Clause{
		SQL: "EXISTS (SELECT 1 FROM " + table +
			" WHERE " + table + "." + parentIDCol + " = " + parentIDExpr +
			" AND " + table + "." + parentInstanceCol + " = " + parentInstanceExpr + ")",
	}
}

// sceneExclusions applies the full exclusion cascade to a scene query:
// direct tags, performers, groups and galleries, the studio reference, and
// the tags of linked performers and of the studio.
func sceneExclusions(ex *restriction.Exclusions) []filter.Clause {
	if ex == nil || ex.Empty() {
		return nil
	}
	clauses := []filter.Clause{
		notLinked("scene_tags", "scene_id", "scene_instance_id", "tag_id", "s.id", "s.instance_id", ex.TagIDs),
		notLinked("scene_performers", "scene_id", "scene_instance_id", "performer_id", "s.id", "s.instance_id", ex.PerformerIDs),
		notLinked("scene_performer_tags", "scene_id", "scene_instance_id", "tag_id", "s.id", "s.instance_id", ex.TagIDs),
		notLinked("group_scenes", "scene_id", "scene_instance_id", "group_id", "s.id", "s.instance_id", ex.GroupIDs),
		notLinked("scene_galleries", "scene_id", "scene_instance_id", "gallery_id", "s.id", "s.instance_id", ex.GalleryIDs),
		studioNotOneOf("s.studio_id", ex.StudioIDs),
		studioNotTagged("s.studio_id", "s.studio_instance_id", ex.TagIDs),
	}
	if ex.RestrictEmptyTags {
		clauses = append(clauses, mustHaveTags("scene_tags", "scene_id", "scene_instance_id", "s.id", "s.instance_id"))
	}
	return clauses
}

func imageExclusions(ex *restriction.Exclusions) []filter.Clause {
	if ex == nil || ex.Empty() {
		return nil
	}
	clauses := []filter.Clause{
		notLinked("image_tags", "image_id", "image_instance_id", "tag_id", "i.id", "i.instance_id", ex.TagIDs),
		notLinked("image_performers", "image_id", "image_instance_id", "performer_id", "i.id", "i.instance_id", ex.PerformerIDs),
		notLinked("image_performer_tags", "image_id", "image_instance_id", "tag_id", "i.id", "i.instance_id", ex.TagIDs),
		notLinked("image_galleries", "image_id", "image_instance_id", "gallery_id", "i.id", "i.instance_id", ex.GalleryIDs),
		studioNotOneOf("i.studio_id", ex.StudioIDs),
		studioNotTagged("i.studio_id", "i.studio_instance_id", ex.TagIDs),
	}
	if ex.RestrictEmptyTags {
		clauses = append(clauses, mustHaveTags("image_tags", "image_id", "image_instance_id", "i.id", "i.instance_id"))
	}
	return clauses
}

func galleryExclusions(ex *restriction.Exclusions) []filter.Clause {
	if ex == nil || ex.Empty() {
		return nil
	}
	clauses := []filter.Clause{
		notOneOf("g.id", ex.GalleryIDs),
		notLinked("gallery_tags", "gallery_id", "gallery_instance_id", "tag_id", "g.id", "g.instance_id", ex.TagIDs),
		notLinked("gallery_performers", "gallery_id", "gallery_instance_id", "performer_id", "g.id", "g.instance_id", ex.PerformerIDs),
		notLinked("gallery_performer_tags", "gallery_id", "gallery_instance_id", "tag_id", "g.id", "g.instance_id", ex.TagIDs),
		studioNotOneOf("g.studio_id", ex.StudioIDs),
		studioNotTagged("g.studio_id", "g.studio_instance_id", ex.TagIDs),
	}
	if ex.RestrictEmptyTags {
		clauses = append(clauses, mustHaveTags("gallery_tags", "gallery_id", "gallery_instance_id", "g.id", "g.instance_id"))
	}
	return clauses
}

func performerExclusions(ex *restriction.Exclusions) []filter.Clause {
	if ex == nil || ex.Empty() {
		return nil
	}
	clauses := []filter.Clause{
		notOneOf("p.id", ex.PerformerIDs),
		notLinked("performer_tags", "performer_id", "performer_instance_id", "tag_id", "p.id", "p.instance_id", ex.TagIDs),
	}
	if ex.RestrictEmptyTags {
		clauses = append(clauses, mustHaveTags("performer_tags", "performer_id", "performer_instance_id", "p.id", "p.instance_id"))
	}
	return clauses
}

func studioExclusions(ex *restriction.Exclusions) []filter.Clause {
	if ex == nil || ex.Empty() {
		return nil
	}
	clauses := []filter.Clause{
		notOneOf("st.id", ex.StudioIDs),
		notLinked("studio_tags", "studio_id", "studio_instance_id", "tag_id", "st.id", "st.instance_id", ex.TagIDs),
	}
	if ex.RestrictEmptyTags {
		clauses = append(clauses, mustHaveTags("studio_tags", "studio_id", "studio_instance_id", "st.id", "st.instance_id"))
	}
	return clauses
}

func tagExclusions(ex *restriction.Exclusions) []filter.Clause {
	if ex == nil || ex.Empty() {
		return nil
	}
	return []filter.Clause{notOneOf("t.id", ex.TagIDs)}
}

func groupExclusions(ex *restriction.Exclusions) []filter.Clause {
	if ex == nil || ex.Empty() {
		return nil
	}
	clauses := []filter.Clause{
		notOneOf("g.id", ex.GroupIDs),
		notLinked("group_tags", "group_id", "group_instance_id", "tag_id", "g.id", "g.instance_id", ex.TagIDs),
		studioNotOneOf("g.studio_id", ex.StudioIDs),
		studioNotTagged("g.studio_id", "g.studio_instance_id", ex.TagIDs),
	}
	if ex.RestrictEmptyTags {
		clauses = append(clauses, mustHaveTags("group_tags", "group_id", "group_instance_id", "g.id", "g.instance_id"))
	}
	return clauses
}
