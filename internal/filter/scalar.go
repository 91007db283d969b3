package filter

import "strings"

// Numeric builds a clause comparing a numeric column against an IntCriterion.
func Numeric(c *IntCriterion, column string) Clause {
	if c == nil {
		return Clause{}
	}
	switch modifierOrDefault(c.Modifier, ModifierGreaterThan) {
	case ModifierEquals:
		return Clause{SQL: column + " = ?", Args: []any{c.Value}}
	case ModifierNotEquals:
		return Clause{SQL: column + " != ?", Args: []any{c.Value}}
	case ModifierGreaterThan:
		return Clause{SQL: column + " > ?", Args: []any{c.Value}}
	case ModifierLessThan:
		return Clause{SQL: column + " < ?", Args: []any{c.Value}}
	case ModifierBetween:
		if c.Value2 == nil {
			return Clause{SQL: column + " >= ?", Args: []any{c.Value}}
		}
		return Clause{SQL: column + " BETWEEN ? AND ?", Args: []any{c.Value, *c.Value2}}
	case ModifierNotBetween:
		if c.Value2 == nil {
			return Clause{SQL: column + " < ?", Args: []any{c.Value}}
		}
		return Clause{SQL: "(" + column + " < ? OR " + column + " > ?)", Args: []any{c.Value, *c.Value2}}
	default:
		return Clause{}
	}
}

// Date builds a clause comparing a date column against a DateCriterion.
// EQUALS and NOT_EQUALS compare calendar dates, ignoring time-of-day.
// NOT_EQUALS and NOT_BETWEEN treat NULL as passing: a row with no date is
// "not equal" and "not in range".
func Date(c *DateCriterion, column string) Clause {
	if c == nil {
		return Clause{}
	}
	mod := modifierOrDefault(c.Modifier, ModifierGreaterThan)

	// Only the null checks work without a value.
	switch mod {
	case ModifierIsNull:
		return Clause{SQL: "(" + column + " IS NULL OR " + column + " = '')"}
	case ModifierNotNull:
		return Clause{SQL: "(" + column + " IS NOT NULL AND " + column + " != '')"}
	}
	if c.Value == "" {
		return Clause{}
	}

	switch mod {
	case ModifierEquals:
		return Clause{SQL: "date(" + column + ") = date(?)", Args: []any{c.Value}}
	case ModifierNotEquals:
		return Clause{SQL: "(" + column + " IS NULL OR date(" + column + ") != date(?))", Args: []any{c.Value}}
	case ModifierGreaterThan:
		return Clause{SQL: column + " > ?", Args: []any{c.Value}}
	case ModifierLessThan:
		return Clause{SQL: column + " < ?", Args: []any{c.Value}}
	case ModifierBetween:
		if c.Value2 == "" {
			return Clause{SQL: column + " >= ?", Args: []any{c.Value}}
		}
		return Clause{SQL: column + " BETWEEN ? AND ?", Args: []any{c.Value, c.Value2}}
	case ModifierNotBetween:
		if c.Value2 == "" {
			return Clause{SQL: "(" + column + " IS NULL OR " + column + " < ?)", Args: []any{c.Value}}
		}
		return Clause{
			SQL:  "(" + column + " IS NULL OR " + column + " < ? OR " + column + " > ?)",
			Args: []any{c.Value, c.Value2},
		}
	default:
		return Clause{}
	}
}

// Text builds a clause comparing text columns against a StringCriterion.
// Matching is case-insensitive throughout. INCLUDES ORs the substring match
// across the primary column and any extra columns; EXCLUDES requires the
// substring to appear in none of them, with NULL columns passing. The exact
// and null modifiers apply to the primary column only.
func Text(c *StringCriterion, column string, extra ...string) Clause {
	if c == nil {
		return Clause{}
	}
	mod := modifierOrDefault(c.Modifier, ModifierIncludes)

	switch mod {
	case ModifierIsNull:
		return Clause{SQL: "(" + column + " IS NULL OR " + column + " = '')"}
	case ModifierNotNull:
		return Clause{SQL: "(" + column + " IS NOT NULL AND " + column + " != '')"}
	}
	if c.Value == "" {
		return Clause{}
	}

	switch mod {
	case ModifierIncludes:
		pattern := "%" + escapeLike(strings.ToLower(c.Value)) + "%"
		parts := make([]string, 0, 1+len(extra))
		args := make([]any, 0, 1+len(extra))
		for _, col := range append([]string{column}, extra...) {
			parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		if len(parts) == 1 {
			return Clause{SQL: parts[0], Args: args}
		}
		return Clause{SQL: "(" + strings.Join(parts, " OR ") + ")", Args: args}
	case ModifierExcludes:
		pattern := "%" + escapeLike(strings.ToLower(c.Value)) + "%"
		parts := make([]string, 0, 1+len(extra))
		args := make([]any, 0, 1+len(extra))
		for _, col := range append([]string{column}, extra...) {
			parts = append(parts, "("+col+" IS NULL OR LOWER("+col+") NOT LIKE ? ESCAPE '\\')")
			args = append(args, pattern)
		}
		if len(parts) == 1 {
			return Clause{SQL: parts[0], Args: args}
		}
		return Clause{SQL: "(" + strings.Join(parts, " AND ") + ")", Args: args}
	case ModifierEquals:
		return Clause{SQL: "LOWER(" + column + ") = ?", Args: []any{strings.ToLower(c.Value)}}
	case ModifierNotEquals:
		return Clause{
			SQL:  "(" + column + " IS NULL OR LOWER(" + column + ") != ?)",
			Args: []any{strings.ToLower(c.Value)},
		}
	default:
		return Clause{}
	}
}

// Favorite builds a clause for a boolean favorite column. A false filter also
// matches rows where the column is NULL (no overlay row yet).
func Favorite(v *bool, column string) Clause {
	if v == nil {
		return Clause{}
	}
	if *v {
		return Clause{SQL: column + " = 1"}
	}
	return Clause{SQL: "(" + column + " = 0 OR " + column + " IS NULL)"}
}

func modifierOrDefault(m, def Modifier) Modifier {
	if m == "" {
		return def
	}
	return m
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
