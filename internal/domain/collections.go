package domain

// Collections is a materialized snapshot of the mirrored library, used by the
// restriction and pruning services, which operate on whole collections rather
// than paginated queries.
type Collections struct {
	Scenes     []*Scene
	Performers []*Performer
	Studios    []*Studio
	Tags       []*Tag
	Groups     []*Group
	Galleries  []*Gallery
	Images     []*Image
}

// Link replaces stub references (key-only objects produced when loading link
// tables) with the canonical objects from the snapshot, so that transitive
// walks like scene → performer → tags see fully-populated entities.
// References to entities absent from the snapshot keep their stubs.
func (c *Collections) Link() {
	performers := indexByKey(c.Performers)
	studios := indexByKey(c.Studios)
	tags := indexByKey(c.Tags)
	groups := indexByKey(c.Groups)
	galleries := indexByKey(c.Galleries)
	scenes := indexByKey(c.Scenes)

	for _, t := range c.Tags {
		linkRefs(t.Parents, tags)
	}
	for _, s := range c.Studios {
		if s.Parent != nil {
			if canon, ok := studios[s.Parent.Key()]; ok {
				s.Parent = canon
			}
		}
		linkRefs(s.Tags, tags)
	}
	for _, p := range c.Performers {
		linkRefs(p.Tags, tags)
	}
	for _, g := range c.Groups {
		if g.Studio != nil {
			if canon, ok := studios[g.Studio.Key()]; ok {
				g.Studio = canon
			}
		}
		linkRefs(g.Tags, tags)
		linkRefs(g.Containing, groups)
	}
	for _, g := range c.Galleries {
		if g.Studio != nil {
			if canon, ok := studios[g.Studio.Key()]; ok {
				g.Studio = canon
			}
		}
		linkRefs(g.Tags, tags)
		linkRefs(g.Performers, performers)
		linkRefs(g.Scenes, scenes)
	}
	for _, s := range c.Scenes {
		if s.Studio != nil {
			if canon, ok := studios[s.Studio.Key()]; ok {
				s.Studio = canon
			}
		}
		linkRefs(s.Tags, tags)
		linkRefs(s.Performers, performers)
		linkRefs(s.Groups, groups)
		linkRefs(s.Galleries, galleries)
	}
	for _, i := range c.Images {
		if i.Studio != nil {
			if canon, ok := studios[i.Studio.Key()]; ok {
				i.Studio = canon
			}
		}
		linkRefs(i.Tags, tags)
		linkRefs(i.Performers, performers)
		linkRefs(i.Galleries, galleries)
	}
}

func indexByKey[T keyed](items []T) map[EntityKey]T {
	idx := make(map[EntityKey]T, len(items))
	for _, item := range items {
		idx[item.Key()] = item
	}
	return idx
}

func linkRefs[T keyed](refs []T, canonical map[EntityKey]T) {
	for i, r := range refs {
		if canon, ok := canonical[r.Key()]; ok {
			refs[i] = canon
		}
	}
}
