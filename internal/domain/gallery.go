package domain

import "time"

// Gallery is a mirrored copy of a remote catalog gallery (a set of images,
// optionally linked to scenes).
type Gallery struct {
	ID         string
	InstanceID string
	Mirrored

	Title     string
	Details   string
	Date      *time.Time
	Rating    *int
	Organized bool

	// Remote-reported count; see Performer for the caveat.
	ImageCount int

	Studio     *Studio
	Tags       []*Tag
	Performers []*Performer
	Scenes     []*Scene

	Overlay *Overlay
}

// Key returns the compound identity of the gallery.
func (g *Gallery) Key() EntityKey {
	return EntityKey{ID: g.ID, InstanceID: g.InstanceID}
}

// TagKeys returns the keys of all tags attached to the gallery.
func (g *Gallery) TagKeys() []EntityKey {
	return refKeys(g.Tags)
}

// PerformerKeys returns the keys of all performers attached to the gallery.
func (g *Gallery) PerformerKeys() []EntityKey {
	return refKeys(g.Performers)
}

// SceneKeys returns the keys of all scenes linked to the gallery.
func (g *Gallery) SceneKeys() []EntityKey {
	return refKeys(g.Scenes)
}
