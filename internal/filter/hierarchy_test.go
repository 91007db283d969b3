package filter

import (
	"context"
	"sort"
	"testing"
)

// fakeLineageLister serves a fixed lineage for both entity kinds.
type fakeLineageLister struct {
	tags    []Lineage
	studios []Lineage
}

func (f *fakeLineageLister) ListTagLineage(_ context.Context) ([]Lineage, error) {
	return f.tags, nil
}

func (f *fakeLineageLister) ListStudioLineage(_ context.Context) ([]Lineage, error) {
	return f.studios, nil
}

// chain is root→a→b→c.
func chainLineage() []Lineage {
	return []Lineage{
		{ID: "root"},
		{ID: "a", ParentIDs: []string{"root"}},
		{ID: "b", ParentIDs: []string{"a"}},
		{ID: "c", ParentIDs: []string{"b"}},
	}
}

func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func assertIDs(t *testing.T, got, want []string) {
	t.Helper()
	g, w := sortedCopy(got), sortedCopy(want)
	if len(g) != len(w) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range w {
		if g[i] != w[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDescendantTagIDs_Unbounded(t *testing.T) {
	e := NewExpander(&fakeLineageLister{tags: chainLineage()})

	ids, err := e.DescendantTagIDs(context.Background(), "root", DepthUnlimited)
	if err != nil {
		t.Fatalf("DescendantTagIDs: %v", err)
	}
	assertIDs(t, ids, []string{"root", "a", "b", "c"})
}

func TestDescendantTagIDs_DepthOne(t *testing.T) {
	e := NewExpander(&fakeLineageLister{tags: chainLineage()})

	ids, err := e.DescendantTagIDs(context.Background(), "root", 1)
	if err != nil {
		t.Fatalf("DescendantTagIDs: %v", err)
	}
	assertIDs(t, ids, []string{"root", "a"})
}

func TestDescendantTagIDs_DepthZero(t *testing.T) {
	e := NewExpander(&fakeLineageLister{tags: chainLineage()})

	ids, err := e.DescendantTagIDs(context.Background(), "root", 0)
	if err != nil {
		t.Fatalf("DescendantTagIDs: %v", err)
	}
	assertIDs(t, ids, []string{"root"})
}

func TestDescendantTagIDs_Cycle(t *testing.T) {
	// a→b→c→a plus root→a. Malformed remote data must still terminate.
	lineage := []Lineage{
		{ID: "root"},
		{ID: "a", ParentIDs: []string{"root", "c"}},
		{ID: "b", ParentIDs: []string{"a"}},
		{ID: "c", ParentIDs: []string{"b"}},
	}
	e := NewExpander(&fakeLineageLister{tags: lineage})

	ids, err := e.DescendantTagIDs(context.Background(), "root", DepthUnlimited)
	if err != nil {
		t.Fatalf("DescendantTagIDs: %v", err)
	}
	assertIDs(t, ids, []string{"root", "a", "b", "c"})
}

func TestDescendantTagIDs_Diamond(t *testing.T) {
	// d is reachable via b and via c; it must appear exactly once.
	lineage := []Lineage{
		{ID: "root"},
		{ID: "b", ParentIDs: []string{"root"}},
		{ID: "c", ParentIDs: []string{"root"}},
		{ID: "d", ParentIDs: []string{"b", "c"}},
	}
	e := NewExpander(&fakeLineageLister{tags: lineage})

	ids, err := e.DescendantTagIDs(context.Background(), "root", DepthUnlimited)
	if err != nil {
		t.Fatalf("DescendantTagIDs: %v", err)
	}
	assertIDs(t, ids, []string{"root", "b", "c", "d"})
}

func TestDescendantStudioIDs(t *testing.T) {
	e := NewExpander(&fakeLineageLister{studios: chainLineage()})

	ids, err := e.DescendantStudioIDs(context.Background(), "root", 2)
	if err != nil {
		t.Fatalf("DescendantStudioIDs: %v", err)
	}
	assertIDs(t, ids, []string{"root", "a", "b"})
}

func TestExpandTagIDs(t *testing.T) {
	e := NewExpander(&fakeLineageLister{tags: chainLineage()})

	// depth 0 returns the input unchanged.
	in := []string{"a", "b"}
	out, err := e.ExpandTagIDs(context.Background(), in, 0)
	if err != nil {
		t.Fatalf("ExpandTagIDs: %v", err)
	}
	assertIDs(t, out, in)

	// empty input returns empty regardless of depth.
	out, err = e.ExpandTagIDs(context.Background(), nil, DepthUnlimited)
	if err != nil {
		t.Fatalf("ExpandTagIDs: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("empty input: got %v", out)
	}

	// overlapping closures union without duplicates.
	out, err = e.ExpandTagIDs(context.Background(), []string{"a", "b"}, DepthUnlimited)
	if err != nil {
		t.Fatalf("ExpandTagIDs: %v", err)
	}
	assertIDs(t, out, []string{"a", "b", "c"})
}

func TestExpandStudioIDs(t *testing.T) {
	e := NewExpander(&fakeLineageLister{studios: chainLineage()})

	out, err := e.ExpandStudioIDs(context.Background(), []string{"root"}, 1)
	if err != nil {
		t.Fatalf("ExpandStudioIDs: %v", err)
	}
	assertIDs(t, out, []string{"root", "a"})
}
