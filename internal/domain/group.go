package domain

import "time"

// Group is a mirrored copy of a remote catalog group (an ordered collection
// of scenes). Groups nest: Containing lists the groups this group belongs to.
type Group struct {
	ID         string
	InstanceID string
	Mirrored

	Name     string
	Synopsis string
	Date     *time.Time
	Rating   *int

	// Remote-reported count; see Performer for the caveat.
	SceneCount int

	Studio     *Studio
	Tags       []*Tag
	Containing []*Group

	Overlay *Overlay
}

// Key returns the compound identity of the group.
func (g *Group) Key() EntityKey {
	return EntityKey{ID: g.ID, InstanceID: g.InstanceID}
}

// TagKeys returns the keys of all tags attached to the group.
func (g *Group) TagKeys() []EntityKey {
	return refKeys(g.Tags)
}

// ContainingKeys returns the keys of the groups containing this group.
func (g *Group) ContainingKeys() []EntityKey {
	return refKeys(g.Containing)
}
