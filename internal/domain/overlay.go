package domain

import "time"

// Overlay holds one user's private data for one mirrored entity. Overlays are
// merged into query results at read time and survive re-syncs because the
// mirror rows are soft-deleted rather than dropped.
type Overlay struct {
	UserID     string
	EntityType EntityType
	EntityKey  EntityKey

	Rating    *int // 0-100
	Favorite  bool
	ViewCount int

	UpdatedAt time.Time
}

// User is a local account. Authentication is handled by an outer layer; the
// core only ever needs the ID.
type User struct {
	ID        string
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
