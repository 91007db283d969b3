// Package filter builds parameterized SQL fragments from user-facing filter
// criteria. Builders are pure and permissive: an absent or malformed
// criterion yields the zero Clause ("no constraint"), never an error. A
// filter panel sending an incomplete criterion must not break browsing.
package filter

// Modifier selects how a criterion's value is compared. The set of supported
// modifiers is closed per criterion kind; anything unrecognized falls through
// to "no constraint".
type Modifier string

// Comparison modifiers understood by the clause builders.
const (
	ModifierEquals      Modifier = "EQUALS"
	ModifierNotEquals   Modifier = "NOT_EQUALS"
	ModifierGreaterThan Modifier = "GREATER_THAN"
	ModifierLessThan    Modifier = "LESS_THAN"
	ModifierBetween     Modifier = "BETWEEN"
	ModifierNotBetween  Modifier = "NOT_BETWEEN"
	ModifierIsNull      Modifier = "IS_NULL"
	ModifierNotNull     Modifier = "NOT_NULL"
	ModifierIncludes    Modifier = "INCLUDES"
	ModifierIncludesAll Modifier = "INCLUDES_ALL"
	ModifierExcludes    Modifier = "EXCLUDES"
)

// IntCriterion filters a numeric column. Value2 is only meaningful for
// BETWEEN and NOT_BETWEEN; when it is absent those degrade to >= and <
// respectively. An empty Modifier means GREATER_THAN.
type IntCriterion struct {
	Value    int      `json:"value"`
	Value2   *int     `json:"value2,omitempty"`
	Modifier Modifier `json:"modifier,omitempty"`
}

// DateCriterion filters a date column. Values are ISO dates ("2006-01-02");
// a trailing time-of-day is tolerated and ignored by EQUALS/NOT_EQUALS, which
// compare on the calendar date. An empty Modifier means GREATER_THAN.
type DateCriterion struct {
	Value    string   `json:"value"`
	Value2   string   `json:"value2,omitempty"`
	Modifier Modifier `json:"modifier,omitempty"`
}

// StringCriterion filters a text column. An empty Modifier means INCLUDES.
type StringCriterion struct {
	Value    string   `json:"value"`
	Modifier Modifier `json:"modifier,omitempty"`
}

// MultiCriterion filters by related entities. Values are entity references in
// "id" or "id:instanceId" form; Depth controls hierarchy expansion for tag
// and studio criteria (0 = exact, -1 = unbounded, N = N levels down).
type MultiCriterion struct {
	Values   []string `json:"value"`
	Modifier Modifier `json:"modifier,omitempty"`
	Depth    int      `json:"depth,omitempty"`
}
