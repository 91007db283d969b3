package domain

import "time"

// Image is a mirrored copy of a remote catalog image.
type Image struct {
	ID         string
	InstanceID string
	Mirrored

	Title     string
	Date      *time.Time
	Rating    *int
	Organized bool

	Studio     *Studio
	Tags       []*Tag
	Performers []*Performer
	Galleries  []*Gallery

	Overlay *Overlay
}

// Key returns the compound identity of the image.
func (i *Image) Key() EntityKey {
	return EntityKey{ID: i.ID, InstanceID: i.InstanceID}
}

// TagKeys returns the keys of all tags attached to the image.
func (i *Image) TagKeys() []EntityKey {
	return refKeys(i.Tags)
}

// PerformerKeys returns the keys of all performers attached to the image.
func (i *Image) PerformerKeys() []EntityKey {
	return refKeys(i.Performers)
}

// GalleryKeys returns the keys of all galleries containing the image.
func (i *Image) GalleryKeys() []EntityKey {
	return refKeys(i.Galleries)
}
