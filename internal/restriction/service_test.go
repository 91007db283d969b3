package restriction

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// fakeRules serves a fixed rule list, optionally failing.
type fakeRules struct {
	rules []*domain.ContentRestriction
	err   error
}

func (f *fakeRules) ListRestrictionsForUser(_ context.Context, _ string) ([]*domain.ContentRestriction, error) {
	return f.rules, f.err
}

func newTestService(rules ...*domain.ContentRestriction) *Service {
	return NewService(&fakeRules{rules: rules}, slog.New(slog.DiscardHandler))
}

func excludeRule(t domain.EntityType, ids ...string) *domain.ContentRestriction {
	return &domain.ContentRestriction{EntityType: t, Mode: domain.RestrictionExclude, EntityIDs: ids}
}

func includeRule(t domain.EntityType, ids ...string) *domain.ContentRestriction {
	return &domain.ContentRestriction{EntityType: t, Mode: domain.RestrictionInclude, EntityIDs: ids}
}

func tag(id, name string) *domain.Tag {
	return &domain.Tag{ID: id, Name: name}
}

func sceneIDs(scenes []*domain.Scene) []string {
	ids := make([]string, 0, len(scenes))
	for _, s := range scenes {
		ids = append(ids, s.ID)
	}
	return ids
}

func assertSceneIDs(t *testing.T, scenes []*domain.Scene, want ...string) {
	t.Helper()
	got := sceneIDs(scenes)
	if len(got) != len(want) {
		t.Fatalf("visible scenes: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visible scenes: got %v, want %v", got, want)
		}
	}
}

// groupExclusionLibrary is the cascade fixture: scenes S1-S3 belong to group
// G with a studio, the performer John and the tag Animals appearing only
// there; scenes S4-S5 are independent. Tag Extreme spans both halves.
type groupExclusionLibrary struct {
	scenes     []*domain.Scene
	performers []*domain.Performer
	studios    []*domain.Studio
	tags       []*domain.Tag
	groups     []*domain.Group
}

func newGroupExclusionLibrary() *groupExclusionLibrary {
	animals := tag("t-animals", "Animals")
	extreme := tag("t-extreme", "Extreme")
	safe := tag("t-safe", "Safe")

	groupStudio := &domain.Studio{ID: "st-group-only", Name: "Group Films"}
	indieStudio := &domain.Studio{ID: "st-indie", Name: "Indie"}
	john := &domain.Performer{ID: "p-john", Name: "John"}
	jane := &domain.Performer{ID: "p-jane", Name: "Jane"}
	g := &domain.Group{ID: "g-1", Name: "G", Studio: groupStudio}

	lib := &groupExclusionLibrary{
		performers: []*domain.Performer{john, jane},
		studios:    []*domain.Studio{groupStudio, indieStudio},
		tags:       []*domain.Tag{animals, extreme, safe},
		groups:     []*domain.Group{g},
	}
	for _, id := range []string{"S1", "S2", "S3"} {
		lib.scenes = append(lib.scenes, &domain.Scene{
			ID:         id,
			Studio:     groupStudio,
			Performers: []*domain.Performer{john},
			Tags:       []*domain.Tag{animals, extreme},
			Groups:     []*domain.Group{g},
		})
	}
	for _, id := range []string{"S4", "S5"} {
		lib.scenes = append(lib.scenes, &domain.Scene{
			ID:         id,
			Studio:     indieStudio,
			Performers: []*domain.Performer{jane},
			Tags:       []*domain.Tag{extreme, safe},
		})
	}
	return lib
}

func TestFilterScenesForUser_LogsLoadedRules(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := NewService(&fakeRules{rules: []*domain.ContentRestriction{
		excludeRule(domain.EntityTag, "t-animals"),
	}}, logger)

	_, err := svc.FilterScenesForUser(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(buf.String(), "loaded content restrictions") {
		t.Errorf("expected a debug line for rule evaluation, got %q", buf.String())
	}
}

func TestFilterScenesForUser_GroupExclusionCascade(t *testing.T) {
	lib := newGroupExclusionLibrary()
	svc := newTestService(excludeRule(domain.EntityGroup, "g-1"))
	ctx := context.Background()

	scenes, err := svc.FilterScenesForUser(ctx, "u1", lib.scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	assertSceneIDs(t, scenes, "S4", "S5")
}

func TestGroupExclusion_PrunesDependentEntities(t *testing.T) {
	// Excluding the group does not directly exclude the studio, performer
	// or tags; they disappear through empty-entity pruning against the
	// restricted scene set.
	lib := newGroupExclusionLibrary()
	svc := newTestService(excludeRule(domain.EntityGroup, "g-1"))
	ctx := context.Background()

	scenes, err := svc.FilterScenesForUser(ctx, "u1", lib.scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	groups, err := svc.FilterGroupsForUser(ctx, "u1", lib.groups)
	if err != nil {
		t.Fatalf("FilterGroupsForUser: %v", err)
	}

	pruned := NewEmptyFilter(slog.New(slog.DiscardHandler)).FilterAllEntities(domain.Collections{
		Scenes:     scenes,
		Groups:     groups,
		Studios:    lib.studios,
		Performers: lib.performers,
		Tags:       lib.tags,
	})

	for _, st := range pruned.Collections.Studios {
		if st.ID == "st-group-only" {
			t.Error("studio appearing only in the excluded group must be pruned")
		}
	}
	for _, p := range pruned.Collections.Performers {
		if p.ID == "p-john" {
			t.Error("performer appearing only in the excluded group must be pruned")
		}
	}
	tagNames := map[string]bool{}
	for _, tg := range pruned.Collections.Tags {
		tagNames[tg.Name] = true
	}
	if tagNames["Animals"] {
		t.Error("tag used only by excluded scenes must be pruned")
	}
	if !tagNames["Extreme"] || !tagNames["Safe"] {
		t.Errorf("tags on visible scenes must survive, got %v", tagNames)
	}
}

func TestFilterScenesForUser_PerformerTagCascade(t *testing.T) {
	banned := tag("t-banned", "Banned")
	cleanPerformer := &domain.Performer{ID: "p-clean"}
	taggedPerformer := &domain.Performer{ID: "p-tagged", Tags: []*domain.Tag{banned}}

	scenes := []*domain.Scene{
		{ID: "S1", Performers: []*domain.Performer{taggedPerformer}},
		{ID: "S2", Performers: []*domain.Performer{cleanPerformer}},
	}

	svc := newTestService(excludeRule(domain.EntityTag, "t-banned"))
	got, err := svc.FilterScenesForUser(context.Background(), "u1", scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	assertSceneIDs(t, got, "S2")
}

func TestFilterScenesForUser_StudioTagCascade(t *testing.T) {
	banned := tag("t-banned", "Banned")
	taggedStudio := &domain.Studio{ID: "st-1", Tags: []*domain.Tag{banned}}

	scenes := []*domain.Scene{
		{ID: "S1", Studio: taggedStudio},
		{ID: "S2"},
	}

	svc := newTestService(excludeRule(domain.EntityTag, "t-banned"))
	got, err := svc.FilterScenesForUser(context.Background(), "u1", scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	assertSceneIDs(t, got, "S2")
}

func TestFilterScenesForUser_IncludeThenExclude(t *testing.T) {
	// INCLUDE studios {A,B}, then EXCLUDE tag T. A's scene has T, B's does
	// not, C was never included. Only B's scene survives.
	tagT := tag("t-T", "T")
	studioA := &domain.Studio{ID: "st-A"}
	studioB := &domain.Studio{ID: "st-B"}
	studioC := &domain.Studio{ID: "st-C"}

	scenes := []*domain.Scene{
		{ID: "SA", Studio: studioA, Tags: []*domain.Tag{tagT}},
		{ID: "SB", Studio: studioB},
		{ID: "SC", Studio: studioC},
	}

	// Stored exclusion first: evaluation order must still be
	// INCLUDE-then-EXCLUDE.
	svc := newTestService(
		excludeRule(domain.EntityTag, "t-T"),
		includeRule(domain.EntityStudio, "st-A", "st-B"),
	)
	got, err := svc.FilterScenesForUser(context.Background(), "u1", scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	assertSceneIDs(t, got, "SB")
}

func TestFilterScenesForUser_IncludeIntersectsAcrossTypes(t *testing.T) {
	// A scene must satisfy every active INCLUDE dimension, not just one.
	tagA := tag("t-A", "A")
	studioX := &domain.Studio{ID: "st-X"}

	scenes := []*domain.Scene{
		{ID: "S1", Studio: studioX, Tags: []*domain.Tag{tagA}},
		{ID: "S2", Studio: studioX},
		{ID: "S3", Tags: []*domain.Tag{tagA}},
	}

	svc := newTestService(
		includeRule(domain.EntityTag, "t-A"),
		includeRule(domain.EntityStudio, "st-X"),
	)
	got, err := svc.FilterScenesForUser(context.Background(), "u1", scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	assertSceneIDs(t, got, "S1")
}

func TestFilterTagsForUser_IncludeAndExcludeSameType(t *testing.T) {
	// INCLUDE tags {A,B} plus EXCLUDE tags {B}: INCLUDE narrows first, then
	// EXCLUDE removes from what remains, so B ends up hidden.
	tags := []*domain.Tag{tag("A", "A"), tag("B", "B"), tag("C", "C")}

	svc := newTestService(
		includeRule(domain.EntityTag, "A", "B"),
		excludeRule(domain.EntityTag, "B"),
	)
	got, err := svc.FilterTagsForUser(context.Background(), "u1", tags)
	if err != nil {
		t.Fatalf("FilterTagsForUser: %v", err)
	}
	if len(got) != 1 || got[0].ID != "A" {
		ids := make([]string, 0, len(got))
		for _, tg := range got {
			ids = append(ids, tg.ID)
		}
		t.Errorf("got %v, want [A]", ids)
	}
}

func TestFilterScenesForUser_RestrictEmpty(t *testing.T) {
	rule := excludeRule(domain.EntityTag, "t-banned")
	rule.RestrictEmpty = true

	scenes := []*domain.Scene{
		{ID: "S1", Tags: []*domain.Tag{tag("t-banned", "Banned")}},
		{ID: "S2", Tags: []*domain.Tag{tag("t-ok", "OK")}},
		{ID: "S3"}, // no tags at all
	}

	svc := newTestService(rule)
	got, err := svc.FilterScenesForUser(context.Background(), "u1", scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	assertSceneIDs(t, got, "S2")
}

func TestFilterScenesForUser_WithoutRestrictEmptyKeepsUntagged(t *testing.T) {
	scenes := []*domain.Scene{
		{ID: "S1", Tags: []*domain.Tag{tag("t-banned", "Banned")}},
		{ID: "S2"},
	}

	svc := newTestService(excludeRule(domain.EntityTag, "t-banned"))
	got, err := svc.FilterScenesForUser(context.Background(), "u1", scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	assertSceneIDs(t, got, "S2")
}

func TestFilterScenesForUser_Idempotent(t *testing.T) {
	lib := newGroupExclusionLibrary()
	svc := newTestService(excludeRule(domain.EntityGroup, "g-1"))
	ctx := context.Background()

	once, err := svc.FilterScenesForUser(ctx, "u1", lib.scenes)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	twice, err := svc.FilterScenesForUser(ctx, "u1", once)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(twice) != len(once) {
		t.Errorf("re-filtering removed entities: %d -> %d", len(once), len(twice))
	}
}

func TestFilterScenesForUser_NoRulesPassThrough(t *testing.T) {
	lib := newGroupExclusionLibrary()
	svc := newTestService()

	got, err := svc.FilterScenesForUser(context.Background(), "u1", lib.scenes)
	if err != nil {
		t.Fatalf("FilterScenesForUser: %v", err)
	}
	if len(got) != len(lib.scenes) {
		t.Errorf("no rules must keep all scenes: got %d, want %d", len(got), len(lib.scenes))
	}
}

func TestFilterScenesForUser_RuleFetchFailurePropagates(t *testing.T) {
	svc := NewService(&fakeRules{err: errors.New("store down")}, slog.New(slog.DiscardHandler))

	_, err := svc.FilterScenesForUser(context.Background(), "u1", []*domain.Scene{{ID: "S1"}})
	if err == nil {
		t.Fatal("rule fetch failure must propagate so callers fail closed")
	}
}

func TestExclusionsFromRules(t *testing.T) {
	rule := excludeRule(domain.EntityTag, "b", "a")
	rule.RestrictEmpty = true
	ex := ExclusionsFromRules([]*domain.ContentRestriction{
		rule,
		includeRule(domain.EntityStudio, "st-1"),
		excludeRule(domain.EntityGroup, "g-1"),
	})

	if len(ex.TagIDs) != 2 || ex.TagIDs[0] != "a" || ex.TagIDs[1] != "b" {
		t.Errorf("TagIDs: got %v", ex.TagIDs)
	}
	if len(ex.StudioIDs) != 0 {
		t.Error("INCLUDE rules must not contribute to exclusions")
	}
	if len(ex.GroupIDs) != 1 || ex.GroupIDs[0] != "g-1" {
		t.Errorf("GroupIDs: got %v", ex.GroupIDs)
	}
	if !ex.RestrictEmptyTags {
		t.Error("RestrictEmptyTags must carry through")
	}
	if ex.Empty() {
		t.Error("Empty() must be false")
	}
	if !(&Exclusions{}).Empty() {
		t.Error("zero Exclusions must report Empty")
	}
}
