package domain

import "time"

// Performer is a mirrored copy of a remote catalog performer.
type Performer struct {
	ID         string
	InstanceID string
	Mirrored

	Name           string
	Disambiguation string
	Details        string
	Birthdate      *time.Time
	Rating         *int
	Favorite       bool

	// Remote-reported counts. These reflect the full remote catalog, not
	// what the current user may see; visibility decisions must use the
	// restricted collections instead.
	SceneCount   int
	ImageCount   int
	GalleryCount int

	Tags []*Tag

	Overlay *Overlay
}

// Key returns the compound identity of the performer.
func (p *Performer) Key() EntityKey {
	return EntityKey{ID: p.ID, InstanceID: p.InstanceID}
}

// TagKeys returns the keys of all tags attached to the performer.
func (p *Performer) TagKeys() []EntityKey {
	return refKeys(p.Tags)
}
