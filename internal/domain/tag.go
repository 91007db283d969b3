package domain

// Tag is a mirrored copy of a remote catalog tag. Tags form a DAG: a tag may
// have multiple parents, and the same descendant may be reachable through
// more than one path. Remote data has been observed with outright cycles.
type Tag struct {
	ID         string
	InstanceID string
	Mirrored

	Name        string
	Description string
	Favorite    bool

	// Remote-reported counts; see Performer for the caveat.
	SceneCount int
	ImageCount int

	Parents []*Tag

	Overlay *Overlay
}

// Key returns the compound identity of the tag.
func (t *Tag) Key() EntityKey {
	return EntityKey{ID: t.ID, InstanceID: t.InstanceID}
}

// ParentKeys returns the keys of all parent tags.
func (t *Tag) ParentKeys() []EntityKey {
	return refKeys(t.Parents)
}
