package store

// SortDirection orders query results ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ListParams contains paging and ordering for entity list queries. Page is
// 1-indexed. Sort names an entity field ("title", "date", "rating", ...) or
// "random"; random order is stable for a given RandomSeed, and flipping the
// direction reverses it exactly.
type ListParams struct {
	Page      int
	PerPage   int
	Sort      string
	Direction SortDirection

	// RandomSeed drives the stable random sort. Zero means the caller did
	// not choose one; services derive a day-stable default before querying.
	RandomSeed uint64

	// ApplyExclusions applies the user's restriction exclusions inside the
	// query. Admin tooling turns it off to see the full mirror.
	ApplyExclusions bool
}

// DefaultListParams returns sensible defaults.
func DefaultListParams() ListParams {
	return ListParams{
		Page:            1,
		PerPage:         25,
		Direction:       SortAsc,
		ApplyExclusions: true,
	}
}

// Normalize checks and corrects list parameters.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = 25
	}
	if p.PerPage > 250 {
		p.PerPage = 250
	}
	if p.Direction != SortDesc {
		p.Direction = SortAsc
	}
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ListResult contains one page of entities and the total match count.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
