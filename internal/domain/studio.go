package domain

// Studio is a mirrored copy of a remote catalog studio. Studios form a tree
// through Parent; malformed remote data may introduce cycles, which all
// traversal code must tolerate.
type Studio struct {
	ID         string
	InstanceID string
	Mirrored

	Name     string
	Details  string
	Rating   *int
	Favorite bool
	URL      string

	// Remote-reported counts; see Performer for the caveat.
	SceneCount int
	ImageCount int

	Parent *Studio
	Tags   []*Tag

	Overlay *Overlay
}

// Key returns the compound identity of the studio.
func (s *Studio) Key() EntityKey {
	return EntityKey{ID: s.ID, InstanceID: s.InstanceID}
}

// ParentKeys returns the parent key, if any. The slice form keeps studio
// lineage interchangeable with the multi-parent tag lineage.
func (s *Studio) ParentKeys() []EntityKey {
	if s.Parent == nil {
		return nil
	}
	return []EntityKey{s.Parent.Key()}
}

// TagKeys returns the keys of all tags attached to the studio.
func (s *Studio) TagKeys() []EntityKey {
	return refKeys(s.Tags)
}
