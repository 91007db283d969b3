package filter

import (
	"reflect"
	"strings"
	"testing"
)

var sceneTags = JunctionSpec{
	Table:              "scene_tags",
	ParentIDColumn:     "scene_id",
	ParentInstanceCol:  "scene_instance_id",
	EntityIDColumn:     "tag_id",
	EntityInstanceCol:  "tag_instance_id",
	ParentIDExpr:       "scenes.id",
	ParentInstanceExpr: "scenes.instance_id",
}

var sceneStudio = DirectSpec{
	IDColumn:       "scenes.studio_id",
	InstanceColumn: "scenes.studio_instance_id",
}

func TestJunction_BareIDsUseINList(t *testing.T) {
	got := Junction(&MultiCriterion{Values: []string{"1", "2"}, Modifier: ModifierIncludes}, sceneTags)

	want := "EXISTS (SELECT 1 FROM scene_tags WHERE " +
		"scene_tags.scene_id = scenes.id AND scene_tags.scene_instance_id = scenes.instance_id AND " +
		"scene_tags.tag_id IN (?, ?))"
	if got.SQL != want {
		t.Errorf("SQL:\n got %q\nwant %q", got.SQL, want)
	}
	if !reflect.DeepEqual(got.Args, []any{"1", "2"}) {
		t.Errorf("args: got %v", got.Args)
	}
	if strings.Contains(got.SQL, "tag_instance_id") {
		t.Error("bare-ID filter must not reference the entity instance column")
	}
}

func TestJunction_CompositeIDsUsePairConditions(t *testing.T) {
	got := Junction(&MultiCriterion{Values: []string{"1:alpha", "2"}, Modifier: ModifierIncludes}, sceneTags)

	if !strings.Contains(got.SQL, "(scene_tags.tag_id = ? AND scene_tags.tag_instance_id = ?)") {
		t.Errorf("expected pair condition for qualified value, got %q", got.SQL)
	}
	// The bare "2" in a qualified set matches the ID in any instance.
	if !strings.Contains(got.SQL, "OR scene_tags.tag_id = ?") {
		t.Errorf("expected bare-ID wildcard arm, got %q", got.SQL)
	}
	if !reflect.DeepEqual(got.Args, []any{"1", "alpha", "2"}) {
		t.Errorf("args: got %v", got.Args)
	}
	// The parent row is always scoped to its own instance.
	if !strings.Contains(got.SQL, "scene_tags.scene_instance_id = scenes.instance_id") {
		t.Errorf("expected parent instance scoping, got %q", got.SQL)
	}
}

func TestJunction_Excludes(t *testing.T) {
	got := Junction(&MultiCriterion{Values: []string{"1"}, Modifier: ModifierExcludes}, sceneTags)

	if !strings.HasPrefix(got.SQL, "NOT EXISTS (") {
		t.Errorf("expected NOT EXISTS, got %q", got.SQL)
	}
}

func TestJunction_IncludesAll(t *testing.T) {
	got := Junction(&MultiCriterion{Values: []string{"1", "2", "2"}, Modifier: ModifierIncludesAll}, sceneTags)

	if !strings.Contains(got.SQL, "COUNT(DISTINCT scene_tags.tag_id)") {
		t.Errorf("expected distinct count subquery, got %q", got.SQL)
	}
	// Duplicate requested values collapse: the expected count is 2, not 3.
	if got.Args[len(got.Args)-1] != 2 {
		t.Errorf("expected distinct count 2 as final arg, got %v", got.Args)
	}
}

func TestJunction_IncludesAllInstanceAware(t *testing.T) {
	got := Junction(&MultiCriterion{Values: []string{"1:a", "1:b"}, Modifier: ModifierIncludesAll}, sceneTags)

	// One EXISTS per requested key, all required.
	if n := strings.Count(got.SQL, "EXISTS (SELECT 1 FROM"); n != 2 {
		t.Errorf("expected 2 EXISTS arms, got %d in %q", n, got.SQL)
	}
	if !strings.Contains(got.SQL, ") AND EXISTS") {
		t.Errorf("expected AND-joined arms, got %q", got.SQL)
	}
	if !strings.Contains(got.SQL, "(scene_tags.tag_id = ? AND scene_tags.tag_instance_id = ?)") {
		t.Errorf("expected pair condition per qualified key, got %q", got.SQL)
	}
	if !reflect.DeepEqual(got.Args, []any{"1", "a", "1", "b"}) {
		t.Errorf("args: got %v", got.Args)
	}
}

func TestJunction_IncludesAllMixedBareAndQualified(t *testing.T) {
	got := Junction(&MultiCriterion{Values: []string{"2:local", "1"}, Modifier: ModifierIncludesAll}, sceneTags)

	// The bare "1" gets a wildcard-instance arm of its own: a parent
	// linked to it in two instances still satisfies exactly one key.
	if n := strings.Count(got.SQL, "EXISTS (SELECT 1 FROM"); n != 2 {
		t.Errorf("expected 2 EXISTS arms, got %d in %q", n, got.SQL)
	}
	if !strings.Contains(got.SQL, "scene_tags.tag_id IN (?)") {
		t.Errorf("expected bare-ID arm without instance predicate, got %q", got.SQL)
	}
	if !reflect.DeepEqual(got.Args, []any{"2", "local", "1"}) {
		t.Errorf("args: got %v", got.Args)
	}
}

func TestJunction_EmptyAndUnknown(t *testing.T) {
	if got := Junction(nil, sceneTags); !got.Empty() {
		t.Error("nil criterion must yield no constraint")
	}
	if got := Junction(&MultiCriterion{}, sceneTags); !got.Empty() {
		t.Error("empty value list must yield no constraint")
	}
	if got := Junction(&MultiCriterion{Values: []string{"1"}, Modifier: "NEARBY"}, sceneTags); !got.Empty() {
		t.Error("unknown modifier must yield no constraint")
	}
}

func TestDirect_Includes(t *testing.T) {
	got := Direct(&MultiCriterion{Values: []string{"10", "11"}, Modifier: ModifierIncludes}, sceneStudio)

	if got.SQL != "scenes.studio_id IN (?, ?)" {
		t.Errorf("SQL: got %q", got.SQL)
	}
	if !reflect.DeepEqual(got.Args, []any{"10", "11"}) {
		t.Errorf("args: got %v", got.Args)
	}
}

func TestDirect_IncludesComposite(t *testing.T) {
	got := Direct(&MultiCriterion{Values: []string{"10:east"}, Modifier: ModifierIncludes}, sceneStudio)

	want := "((scenes.studio_id = ? AND scenes.studio_instance_id = ?))"
	if got.SQL != want {
		t.Errorf("SQL: got %q, want %q", got.SQL, want)
	}
}

func TestDirect_ExcludesPassesNull(t *testing.T) {
	got := Direct(&MultiCriterion{Values: []string{"10"}, Modifier: ModifierExcludes}, sceneStudio)

	if !strings.Contains(got.SQL, "scenes.studio_id IS NULL OR") {
		t.Errorf("EXCLUDES must pass NULL references, got %q", got.SQL)
	}
}

func TestDirect_EmptyAndUnknown(t *testing.T) {
	if got := Direct(nil, sceneStudio); !got.Empty() {
		t.Error("nil criterion must yield no constraint")
	}
	if got := Direct(&MultiCriterion{Values: []string{"1"}, Modifier: ModifierIncludesAll}, sceneStudio); !got.Empty() {
		t.Error("INCLUDES_ALL has no meaning on a single-valued reference")
	}
}
