package filter

import (
	"context"
)

// DepthUnlimited expands a hierarchy without a level limit.
const DepthUnlimited = -1

// Lineage is one entity's position in its hierarchy: its bare ID and the
// bare IDs of its parents. Hierarchy expansion works on bare IDs; a filter
// that expands descendants applies across all source instances.
type Lineage struct {
	ID        string
	ParentIDs []string
}

// LineageLister supplies the full parent structure for hierarchical entity
// types. Implemented by the sqlite store.
type LineageLister interface {
	ListTagLineage(ctx context.Context) ([]Lineage, error)
	ListStudioLineage(ctx context.Context) ([]Lineage, error)
}

// Expander computes descendant closures over tag and studio hierarchies.
type Expander struct {
	lister LineageLister
}

// NewExpander creates an expander backed by the given lineage source.
func NewExpander(lister LineageLister) *Expander {
	return &Expander{lister: lister}
}

// DescendantTagIDs returns the root tag plus its descendants to the given
// depth (0 = root only, -1 = unbounded, N = N levels).
func (e *Expander) DescendantTagIDs(ctx context.Context, rootID string, depth int) ([]string, error) {
	lineage, err := e.lister.ListTagLineage(ctx)
	if err != nil {
		return nil, err
	}
	return descendants(lineage, rootID, depth), nil
}

// DescendantStudioIDs returns the root studio plus its descendants to the
// given depth.
func (e *Expander) DescendantStudioIDs(ctx context.Context, rootID string, depth int) ([]string, error) {
	lineage, err := e.lister.ListStudioLineage(ctx)
	if err != nil {
		return nil, err
	}
	return descendants(lineage, rootID, depth), nil
}

// ExpandTagIDs expands each ID in ids to its descendant closure and unions
// the results. The input is returned unmodified when depth is 0 or the list
// is empty.
func (e *Expander) ExpandTagIDs(ctx context.Context, ids []string, depth int) ([]string, error) {
	if depth == 0 || len(ids) == 0 {
		return ids, nil
	}
	lineage, err := e.lister.ListTagLineage(ctx)
	if err != nil {
		return nil, err
	}
	return expandAll(lineage, ids, depth), nil
}

// ExpandStudioIDs expands each ID in ids to its descendant closure and
// unions the results, mirroring ExpandTagIDs.
func (e *Expander) ExpandStudioIDs(ctx context.Context, ids []string, depth int) ([]string, error) {
	if depth == 0 || len(ids) == 0 {
		return ids, nil
	}
	lineage, err := e.lister.ListStudioLineage(ctx)
	if err != nil {
		return nil, err
	}
	return expandAll(lineage, ids, depth), nil
}

func expandAll(lineage []Lineage, ids []string, depth int) []string {
	union := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		for _, descendant := range descendants(lineage, id, depth) {
			if _, ok := seen[descendant]; ok {
				continue
			}
			seen[descendant] = struct{}{}
			union = append(union, descendant)
		}
	}
	return union
}

// descendants runs a breadth-first walk from rootID over the inverted
// parent→children adjacency. Every node joins the result set before being
// enqueued, so cyclic or diamond-shaped data terminates with each node
// visited once.
func descendants(lineage []Lineage, rootID string, depth int) []string {
	children := make(map[string][]string, len(lineage))
	for _, l := range lineage {
		for _, parentID := range l.ParentIDs {
			children[parentID] = append(children[parentID], l.ID)
		}
	}

	type frame struct {
		id    string
		level int
	}

	result := []string{rootID}
	visited := map[string]struct{}{rootID: {}}
	queue := []frame{{id: rootID, level: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if depth != DepthUnlimited && current.level >= depth {
			continue
		}
		for _, childID := range children[current.id] {
			if _, ok := visited[childID]; ok {
				continue
			}
			visited[childID] = struct{}{}
			result = append(result, childID)
			queue = append(queue, frame{id: childID, level: current.level + 1})
		}
	}
	return result
}
