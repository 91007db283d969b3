package filter

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestNumeric(t *testing.T) {
	tests := []struct {
		name     string
		crit     *IntCriterion
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "nil criterion",
			crit: nil,
		},
		{
			name:     "equals",
			crit:     &IntCriterion{Value: 50, Modifier: ModifierEquals},
			wantSQL:  "rating = ?",
			wantArgs: []any{50},
		},
		{
			name:     "not equals",
			crit:     &IntCriterion{Value: 50, Modifier: ModifierNotEquals},
			wantSQL:  "rating != ?",
			wantArgs: []any{50},
		},
		{
			name:     "default modifier is greater than",
			crit:     &IntCriterion{Value: 75},
			wantSQL:  "rating > ?",
			wantArgs: []any{75},
		},
		{
			name:     "less than",
			crit:     &IntCriterion{Value: 10, Modifier: ModifierLessThan},
			wantSQL:  "rating < ?",
			wantArgs: []any{10},
		},
		{
			name:     "between",
			crit:     &IntCriterion{Value: 10, Value2: intPtr(20), Modifier: ModifierBetween},
			wantSQL:  "rating BETWEEN ? AND ?",
			wantArgs: []any{10, 20},
		},
		{
			name:     "between without second value degrades to gte",
			crit:     &IntCriterion{Value: 10, Modifier: ModifierBetween},
			wantSQL:  "rating >= ?",
			wantArgs: []any{10},
		},
		{
			name:     "not between",
			crit:     &IntCriterion{Value: 10, Value2: intPtr(20), Modifier: ModifierNotBetween},
			wantSQL:  "(rating < ? OR rating > ?)",
			wantArgs: []any{10, 20},
		},
		{
			name:     "not between without second value degrades to lt",
			crit:     &IntCriterion{Value: 10, Modifier: ModifierNotBetween},
			wantSQL:  "rating < ?",
			wantArgs: []any{10},
		},
		{
			name: "unknown modifier yields no constraint",
			crit: &IntCriterion{Value: 10, Modifier: "SOMETHING_NEW"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Numeric(tt.crit, "rating")
			assertClause(t, got, tt.wantSQL, tt.wantArgs)
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name     string
		crit     *DateCriterion
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "nil criterion",
			crit: nil,
		},
		{
			name:     "equals truncates to calendar date",
			crit:     &DateCriterion{Value: "2024-03-01", Modifier: ModifierEquals},
			wantSQL:  "date(d) = date(?)",
			wantArgs: []any{"2024-03-01"},
		},
		{
			name:     "not equals passes null",
			crit:     &DateCriterion{Value: "2024-03-01", Modifier: ModifierNotEquals},
			wantSQL:  "(d IS NULL OR date(d) != date(?))",
			wantArgs: []any{"2024-03-01"},
		},
		{
			name:     "default modifier is greater than",
			crit:     &DateCriterion{Value: "2024-03-01"},
			wantSQL:  "d > ?",
			wantArgs: []any{"2024-03-01"},
		},
		{
			name:     "between",
			crit:     &DateCriterion{Value: "2024-01-01", Value2: "2024-12-31", Modifier: ModifierBetween},
			wantSQL:  "d BETWEEN ? AND ?",
			wantArgs: []any{"2024-01-01", "2024-12-31"},
		},
		{
			name:     "between without second value degrades to gte",
			crit:     &DateCriterion{Value: "2024-01-01", Modifier: ModifierBetween},
			wantSQL:  "d >= ?",
			wantArgs: []any{"2024-01-01"},
		},
		{
			name:     "not between passes null",
			crit:     &DateCriterion{Value: "2024-01-01", Value2: "2024-12-31", Modifier: ModifierNotBetween},
			wantSQL:  "(d IS NULL OR d < ? OR d > ?)",
			wantArgs: []any{"2024-01-01", "2024-12-31"},
		},
		{
			name:     "not between without second value degrades",
			crit:     &DateCriterion{Value: "2024-01-01", Modifier: ModifierNotBetween},
			wantSQL:  "(d IS NULL OR d < ?)",
			wantArgs: []any{"2024-01-01"},
		},
		{
			name:    "is null needs no value",
			crit:    &DateCriterion{Modifier: ModifierIsNull},
			wantSQL: "(d IS NULL OR d = '')",
		},
		{
			name:    "not null needs no value",
			crit:    &DateCriterion{Modifier: ModifierNotNull},
			wantSQL: "(d IS NOT NULL AND d != '')",
		},
		{
			name: "missing value yields no constraint",
			crit: &DateCriterion{Modifier: ModifierEquals},
		},
		{
			name: "unknown modifier yields no constraint",
			crit: &DateCriterion{Value: "2024-01-01", Modifier: "AROUND"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Date(tt.crit, "d")
			assertClause(t, got, tt.wantSQL, tt.wantArgs)
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		crit     *StringCriterion
		extra    []string
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "nil criterion",
			crit: nil,
		},
		{
			name:     "includes is the default and case-insensitive",
			crit:     &StringCriterion{Value: "Beach"},
			wantSQL:  "LOWER(title) LIKE ? ESCAPE '\\'",
			wantArgs: []any{"%beach%"},
		},
		{
			name:     "includes ors across additional columns",
			crit:     &StringCriterion{Value: "beach", Modifier: ModifierIncludes},
			extra:    []string{"details"},
			wantSQL:  "(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(details) LIKE ? ESCAPE '\\')",
			wantArgs: []any{"%beach%", "%beach%"},
		},
		{
			name:     "excludes passes null",
			crit:     &StringCriterion{Value: "beach", Modifier: ModifierExcludes},
			wantSQL:  "(title IS NULL OR LOWER(title) NOT LIKE ? ESCAPE '\\')",
			wantArgs: []any{"%beach%"},
		},
		{
			name:  "excludes ands across additional columns",
			crit:  &StringCriterion{Value: "beach", Modifier: ModifierExcludes},
			extra: []string{"details"},
			wantSQL: "((title IS NULL OR LOWER(title) NOT LIKE ? ESCAPE '\\') AND " +
				"(details IS NULL OR LOWER(details) NOT LIKE ? ESCAPE '\\'))",
			wantArgs: []any{"%beach%", "%beach%"},
		},
		{
			name:     "equals is case-insensitive exact",
			crit:     &StringCriterion{Value: "Beach Day", Modifier: ModifierEquals},
			wantSQL:  "LOWER(title) = ?",
			wantArgs: []any{"beach day"},
		},
		{
			name:     "not equals passes null",
			crit:     &StringCriterion{Value: "Beach Day", Modifier: ModifierNotEquals},
			wantSQL:  "(title IS NULL OR LOWER(title) != ?)",
			wantArgs: []any{"beach day"},
		},
		{
			name:    "is null treats empty string as null",
			crit:    &StringCriterion{Modifier: ModifierIsNull},
			wantSQL: "(title IS NULL OR title = '')",
		},
		{
			name:    "not null treats empty string as null",
			crit:    &StringCriterion{Modifier: ModifierNotNull},
			wantSQL: "(title IS NOT NULL AND title != '')",
		},
		{
			name:     "like metacharacters are escaped",
			crit:     &StringCriterion{Value: "100%_fun"},
			wantSQL:  "LOWER(title) LIKE ? ESCAPE '\\'",
			wantArgs: []any{`%100\%\_fun%`},
		},
		{
			name: "missing value yields no constraint",
			crit: &StringCriterion{Modifier: ModifierIncludes},
		},
		{
			name: "unknown modifier yields no constraint",
			crit: &StringCriterion{Value: "beach", Modifier: "MATCHES_REGEX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.crit, "title", tt.extra...)
			assertClause(t, got, tt.wantSQL, tt.wantArgs)
		})
	}
}

func TestFavorite(t *testing.T) {
	if got := Favorite(nil, "fav"); !got.Empty() {
		t.Errorf("nil filter: expected no constraint, got %q", got.SQL)
	}

	tr := true
	got := Favorite(&tr, "fav")
	if got.SQL != "fav = 1" {
		t.Errorf("true filter: got %q", got.SQL)
	}

	fa := false
	got = Favorite(&fa, "fav")
	if got.SQL != "(fav = 0 OR fav IS NULL)" {
		t.Errorf("false filter: got %q", got.SQL)
	}
}

func TestAnd(t *testing.T) {
	empty := Clause{}
	a := Clause{SQL: "x = ?", Args: []any{1}}
	b := Clause{SQL: "y = ?", Args: []any{2}}

	if got := And(empty, empty); !got.Empty() {
		t.Errorf("all empty: got %q", got.SQL)
	}
	if got := And(empty, a); got.SQL != "x = ?" {
		t.Errorf("single clause should not be wrapped: got %q", got.SQL)
	}
	got := And(a, empty, b)
	if got.SQL != "(x = ? AND y = ?)" {
		t.Errorf("combined: got %q", got.SQL)
	}
	if !reflect.DeepEqual(got.Args, []any{1, 2}) {
		t.Errorf("combined args: got %v", got.Args)
	}
}

func assertClause(t *testing.T, got Clause, wantSQL string, wantArgs []any) {
	t.Helper()
	if wantSQL == "" {
		if !got.Empty() {
			t.Fatalf("expected no constraint, got %q with %v", got.SQL, got.Args)
		}
		if len(got.Args) != 0 {
			t.Fatalf("empty clause must carry no args, got %v", got.Args)
		}
		return
	}
	if got.SQL != wantSQL {
		t.Errorf("SQL: got %q, want %q", got.SQL, wantSQL)
	}
	if len(wantArgs) == 0 && len(got.Args) == 0 {
		return
	}
	if !reflect.DeepEqual(got.Args, wantArgs) {
		t.Errorf("args: got %v, want %v", got.Args, wantArgs)
	}
}
