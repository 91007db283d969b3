package domain

import "time"

// Scene is a mirrored copy of a remote catalog scene. Relationship slices
// hold references that may be stubs (key-only) until Collections.Link
// replaces them with the canonical objects for the request.
type Scene struct {
	ID         string
	InstanceID string
	Mirrored

	Title     string
	Details   string // markdown, converted from remote HTML on ingest
	Date      *time.Time
	Rating    *int // 0-100, remote catalog rating
	Organized bool
	Duration  float64
	URL       string

	Studio     *Studio
	Tags       []*Tag
	Performers []*Performer
	Groups     []*Group
	Galleries  []*Gallery

	// Per-user overlay, populated at read time and never persisted on the
	// shared mirror row.
	Overlay *Overlay
}

// Key returns the compound identity of the scene.
func (s *Scene) Key() EntityKey {
	return EntityKey{ID: s.ID, InstanceID: s.InstanceID}
}

// TagKeys returns the keys of all tags attached to the scene.
func (s *Scene) TagKeys() []EntityKey {
	return refKeys(s.Tags)
}

// PerformerKeys returns the keys of all performers attached to the scene.
func (s *Scene) PerformerKeys() []EntityKey {
	return refKeys(s.Performers)
}

// GroupKeys returns the keys of all groups containing the scene.
func (s *Scene) GroupKeys() []EntityKey {
	return refKeys(s.Groups)
}

// GalleryKeys returns the keys of all galleries linked to the scene.
func (s *Scene) GalleryKeys() []EntityKey {
	return refKeys(s.Galleries)
}

// keyed is implemented by every mirrored entity.
type keyed interface {
	Key() EntityKey
}

func refKeys[T keyed](refs []T) []EntityKey {
	if len(refs) == 0 {
		return nil
	}
	keys := make([]EntityKey, 0, len(refs))
	for _, r := range refs {
		keys = append(keys, r.Key())
	}
	return keys
}
