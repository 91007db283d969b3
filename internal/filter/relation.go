package filter

import (
	"strings"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// JunctionSpec describes a many-to-many link table between a parent entity
// table and a related entity. Column names are the link table's own columns;
// ParentIDExpr/ParentInstanceExpr are expressions referring to the outer
// parent row (typically "alias.id" / "alias.instance_id").
type JunctionSpec struct {
	Table              string
	ParentIDColumn     string
	ParentInstanceCol  string
	EntityIDColumn     string
	EntityInstanceCol  string
	ParentIDExpr       string
	ParentInstanceExpr string
}

// DirectSpec describes a direct foreign-key reference on the parent table
// itself, e.g. a scene's studio columns.
type DirectSpec struct {
	IDColumn       string
	InstanceColumn string
}

// Junction builds a clause over a many-to-many relation. INCLUDES requires a
// link to at least one requested entity, INCLUDES_ALL to every distinct
// requested entity, EXCLUDES to none. When no value carries an instance
// qualifier, matching is by bare entity ID across all sources; as soon as one
// value is qualified, matching switches to (id, instance) pairs, with bare
// values in the set still matching any instance. The link row is always
// scoped to the parent row's own instance.
func Junction(c *MultiCriterion, j JunctionSpec) Clause {
	if c == nil || len(c.Values) == 0 {
		return Clause{}
	}
	keys, hasInstanceIDs := ParseCompositeValues(c.Values)
	match := entityMatch(j.Table+"."+j.EntityIDColumn, j.Table+"."+j.EntityInstanceCol, keys, hasInstanceIDs)

	scope := j.Table + " WHERE " +
		j.Table + "." + j.ParentIDColumn + " = " + j.ParentIDExpr + " AND " +
		j.Table + "." + j.ParentInstanceCol + " = " + j.ParentInstanceExpr

	switch modifierOrDefault(c.Modifier, ModifierIncludes) {
	case ModifierIncludes:
		return Clause{
			SQL:  "EXISTS (SELECT 1 FROM " + scope + " AND " + match.SQL + ")",
			Args: match.Args,
		}
	case ModifierIncludesAll:
		if !hasInstanceIDs {
			args := append(match.Args, distinctKeyCount(keys))
			return Clause{
				SQL: "(SELECT COUNT(DISTINCT " + j.Table + "." + j.EntityIDColumn + ") FROM " + scope +
					" AND " + match.SQL + ") = ?",
				Args: args,
			}
		}
		// With qualified values each requested key gets its own EXISTS.
		// A bare ID linked in several instances is one requested entity,
		// which a combined distinct count would tally once per instance.
		parts := make([]string, 0, len(keys))
		var args []any
		for _, k := range dedupeKeys(keys) {
			km := entityMatch(j.Table+"."+j.EntityIDColumn, j.Table+"."+j.EntityInstanceCol, []domain.EntityKey{k}, !k.Wildcard())
			parts = append(parts, "EXISTS (SELECT 1 FROM "+scope+" AND "+km.SQL+")")
			args = append(args, km.Args...)
		}
		return Clause{SQL: "(" + strings.Join(parts, " AND ") + ")", Args: args}
	case ModifierExcludes:
		return Clause{
			SQL:  "NOT EXISTS (SELECT 1 FROM " + scope + " AND " + match.SQL + ")",
			Args: match.Args,
		}
	default:
		return Clause{}
	}
}

// Direct builds a clause over a direct foreign-key reference. Semantics match
// Junction for INCLUDES and EXCLUDES; EXCLUDES lets NULL references pass.
func Direct(c *MultiCriterion, d DirectSpec) Clause {
	if c == nil || len(c.Values) == 0 {
		return Clause{}
	}
	keys, hasInstanceIDs := ParseCompositeValues(c.Values)
	match := entityMatch(d.IDColumn, d.InstanceColumn, keys, hasInstanceIDs)

	switch modifierOrDefault(c.Modifier, ModifierIncludes) {
	case ModifierIncludes:
		return match
	case ModifierExcludes:
		return Clause{
			SQL:  "(" + d.IDColumn + " IS NULL OR NOT " + match.SQL + ")",
			Args: match.Args,
		}
	default:
		return Clause{}
	}
}

// entityMatch builds the entity-identity predicate shared by Junction and
// Direct. Bare-only sets compare IDs alone for cross-instance compatibility;
// mixed sets get OR'd pair conditions.
func entityMatch(idCol, instanceCol string, keys []domain.EntityKey, hasInstanceIDs bool) Clause {
	if !hasInstanceIDs {
		args := make([]any, len(keys))
		for i, k := range keys {
			args[i] = k.ID
		}
		return Clause{
			SQL:  idCol + " IN (" + placeholders(len(keys)) + ")",
			Args: args,
		}
	}

	parts := make([]string, 0, len(keys))
	var args []any
	for _, k := range keys {
		if k.Wildcard() {
			parts = append(parts, idCol+" = ?")
			args = append(args, k.ID)
			continue
		}
		parts = append(parts, "("+idCol+" = ? AND "+instanceCol+" = ?)")
		args = append(args, k.ID, k.InstanceID)
	}
	return Clause{SQL: "(" + strings.Join(parts, " OR ") + ")", Args: args}
}

// distinctKeyCount counts the distinct requested IDs, collapsing duplicates
// the same way the SQL side does.
func distinctKeyCount(keys []domain.EntityKey) int {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k.ID] = struct{}{}
	}
	return len(seen)
}

// dedupeKeys drops repeated requested keys, preserving order.
func dedupeKeys(keys []domain.EntityKey) []domain.EntityKey {
	seen := make(map[domain.EntityKey]struct{}, len(keys))
	out := make([]domain.EntityKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
