// Package domain defines the core entity types mirrored from the remote
// catalog, plus user-owned types (restrictions, overlays) layered on top.
package domain

import "time"

// EntityType identifies a catalog entity kind.
type EntityType string

// Entity types known to the catalog mirror.
const (
	EntityScene     EntityType = "scene"
	EntityPerformer EntityType = "performer"
	EntityStudio    EntityType = "studio"
	EntityTag       EntityType = "tag"
	EntityGroup     EntityType = "group"
	EntityGallery   EntityType = "gallery"
	EntityImage     EntityType = "image"
)

// EntityKey is the compound identity of a mirrored entity. The same bare ID
// may exist in more than one remote source, so identity is always
// (ID, InstanceID). An empty InstanceID is the explicit wildcard-instance
// case: it matches the entity in any source.
type EntityKey struct {
	ID         string
	InstanceID string
}

// Wildcard reports whether the key matches any source instance.
func (k EntityKey) Wildcard() bool {
	return k.InstanceID == ""
}

// Matches reports whether k refers to the same entity as other, treating a
// wildcard instance on either side as matching any instance.
func (k EntityKey) Matches(other EntityKey) bool {
	if k.ID != other.ID {
		return false
	}
	return k.Wildcard() || other.Wildcard() || k.InstanceID == other.InstanceID
}

// KeySet is a set of entity keys with wildcard-aware membership.
type KeySet map[EntityKey]struct{}

// NewKeySet builds a KeySet from keys.
func NewKeySet(keys ...EntityKey) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts a key into the set.
func (s KeySet) Add(k EntityKey) {
	s[k] = struct{}{}
}

// Contains reports whether the set holds a key matching k. Exact membership
// is checked first; wildcard entries on either side are then considered.
func (s KeySet) Contains(k EntityKey) bool {
	if _, ok := s[k]; ok {
		return true
	}
	if _, ok := s[EntityKey{ID: k.ID}]; ok {
		return true
	}
	if !k.Wildcard() {
		return false
	}
	for member := range s {
		if member.ID == k.ID {
			return true
		}
	}
	return false
}

// Mirrored carries the bookkeeping fields shared by every mirrored entity.
// Entities are soft-deleted: DeletedAt is set when the remote record
// disappears, preserving user overlay rows across re-syncs.
type Mirrored struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
