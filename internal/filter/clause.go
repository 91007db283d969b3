package filter

import "strings"

// Clause is one parameterized SQL predicate. The zero Clause means "no
// constraint" and is skipped by callers when assembling a WHERE clause.
type Clause struct {
	SQL  string
	Args []any
}

// Empty reports whether the clause carries no constraint.
func (c Clause) Empty() bool {
	return c.SQL == ""
}

// And combines the non-empty clauses with AND. It returns the zero Clause
// when every input is empty.
func And(clauses ...Clause) Clause {
	var (
		parts []string
		args  []any
	)
	for _, c := range clauses {
		if c.Empty() {
			continue
		}
		parts = append(parts, c.SQL)
		args = append(args, c.Args...)
	}
	switch len(parts) {
	case 0:
		return Clause{}
	case 1:
		return Clause{SQL: parts[0], Args: args}
	default:
		return Clause{SQL: "(" + strings.Join(parts, " AND ") + ")", Args: args}
	}
}

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
