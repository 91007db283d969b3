package restriction

import (
	"log/slog"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// EmptyFilter prunes higher-tier entities (studios, performers, tags,
// groups, galleries) whose visible content has been fully excluded.
// Emptiness is always judged against the restriction-filtered scene and
// image sets, never against the remote-reported counts: a studio reporting a
// hundred scenes is still empty when every one of them is hidden.
type EmptyFilter struct {
	logger *slog.Logger
}

// NewEmptyFilter creates an empty-entity filter.
func NewEmptyFilter(logger *slog.Logger) *EmptyFilter {
	return &EmptyFilter{logger: logger}
}

// Visibility records which entities survived filtering, keyed by compound
// identity. It is computed per request and never persisted.
type Visibility struct {
	Scenes     domain.KeySet
	Images     domain.KeySet
	Galleries  domain.KeySet
	Groups     domain.KeySet
	Studios    domain.KeySet
	Performers domain.KeySet
}

// PruneResult is the pruned library plus the visibility sets used to compute
// it, returned for downstream reuse.
type PruneResult struct {
	Collections domain.Collections
	Visibility  Visibility
}

// FilterAllEntities prunes every entity type in dependency order: galleries
// and groups first (studios, performers and tags reference them), then
// studios and performers, then tags (which can reference all of the above).
// The scene and image collections are the ground truth and pass through
// unchanged.
func (f *EmptyFilter) FilterAllEntities(c domain.Collections) PruneResult {
	vis := Visibility{
		Scenes: keySetOf(c.Scenes),
		Images: keySetOf(c.Images),
	}

	galleries := f.FilterEmptyGalleries(c.Galleries, c.Images, vis.Scenes)
	vis.Galleries = keySetOf(galleries)

	groups := f.FilterEmptyGroups(c.Groups, c.Scenes)
	vis.Groups = keySetOf(groups)

	studios := f.FilterEmptyStudios(c.Studios, c.Scenes, c.Images, groups, galleries)
	vis.Studios = keySetOf(studios)

	performers := f.FilterEmptyPerformers(c.Performers, c.Scenes, c.Images, galleries)
	vis.Performers = keySetOf(performers)

	tags := f.FilterEmptyTags(c.Tags, c.Scenes, c.Images, galleries, groups, performers, studios)

	f.logger.Debug("pruned empty entities",
		"galleries", len(c.Galleries)-len(galleries),
		"groups", len(c.Groups)-len(groups),
		"studios", len(c.Studios)-len(studios),
		"performers", len(c.Performers)-len(performers),
		"tags", len(c.Tags)-len(tags))

	return PruneResult{
		Collections: domain.Collections{
			Scenes:     c.Scenes,
			Images:     c.Images,
			Galleries:  galleries,
			Groups:     groups,
			Studios:    studios,
			Performers: performers,
			Tags:       tags,
		},
		Visibility: vis,
	}
}

// FilterEmptyGalleries keeps galleries that still contain a visible image or
// link to a visible scene.
func (f *EmptyFilter) FilterEmptyGalleries(galleries []*domain.Gallery, visibleImages []*domain.Image, visibleScenes domain.KeySet) []*domain.Gallery {
	imagesPerGallery := make(map[domain.EntityKey]int)
	for _, img := range visibleImages {
		for _, gk := range img.GalleryKeys() {
			imagesPerGallery[gk]++
		}
	}

	kept := make([]*domain.Gallery, 0, len(galleries))
	for _, g := range galleries {
		if imagesPerGallery[g.Key()] > 0 || anyVisible(g.SceneKeys(), visibleScenes) {
			kept = append(kept, g)
		}
	}
	return kept
}

// FilterEmptyGroups keeps groups with at least one visible scene, directly
// or through a kept sub-group.
func (f *EmptyFilter) FilterEmptyGroups(groups []*domain.Group, visibleScenes []*domain.Scene) []*domain.Group {
	scenesPerGroup := make(map[domain.EntityKey]int)
	for _, sc := range visibleScenes {
		for _, gk := range sc.GroupKeys() {
			scenesPerGroup[gk]++
		}
	}

	keptSet := propagateKept(groups, func(g *domain.Group) bool {
		return scenesPerGroup[g.Key()] > 0
	}, (*domain.Group).ContainingKeys)

	kept := make([]*domain.Group, 0, len(groups))
	for _, g := range groups {
		if _, ok := keptSet[g.Key()]; ok {
			kept = append(kept, g)
		}
	}
	return kept
}

// FilterEmptyStudios keeps studios with visible scenes or images, a visible
// group or gallery reference, or a kept child studio.
func (f *EmptyFilter) FilterEmptyStudios(studios []*domain.Studio, visibleScenes []*domain.Scene, visibleImages []*domain.Image, visibleGroups []*domain.Group, visibleGalleries []*domain.Gallery) []*domain.Studio {
	referenced := make(map[domain.EntityKey]bool)
	for _, sc := range visibleScenes {
		if sc.Studio != nil {
			referenced[sc.Studio.Key()] = true
		}
	}
	for _, img := range visibleImages {
		if img.Studio != nil {
			referenced[img.Studio.Key()] = true
		}
	}
	for _, g := range visibleGroups {
		if g.Studio != nil {
			referenced[g.Studio.Key()] = true
		}
	}
	for _, g := range visibleGalleries {
		if g.Studio != nil {
			referenced[g.Studio.Key()] = true
		}
	}

	keptSet := propagateKept(studios, func(st *domain.Studio) bool {
		return referenced[st.Key()]
	}, (*domain.Studio).ParentKeys)

	kept := make([]*domain.Studio, 0, len(studios))
	for _, st := range studios {
		if _, ok := keptSet[st.Key()]; ok {
			kept = append(kept, st)
		}
	}
	return kept
}

// FilterEmptyPerformers keeps performers appearing in a visible scene, image
// or gallery.
func (f *EmptyFilter) FilterEmptyPerformers(performers []*domain.Performer, visibleScenes []*domain.Scene, visibleImages []*domain.Image, visibleGalleries []*domain.Gallery) []*domain.Performer {
	referenced := make(map[domain.EntityKey]bool)
	for _, sc := range visibleScenes {
		for _, pk := range sc.PerformerKeys() {
			referenced[pk] = true
		}
	}
	for _, img := range visibleImages {
		for _, pk := range img.PerformerKeys() {
			referenced[pk] = true
		}
	}
	for _, g := range visibleGalleries {
		for _, pk := range g.PerformerKeys() {
			referenced[pk] = true
		}
	}

	kept := make([]*domain.Performer, 0, len(performers))
	for _, p := range performers {
		if referenced[p.Key()] {
			kept = append(kept, p)
		}
	}
	return kept
}

// FilterEmptyTags keeps tags attached to any visible scene, image, gallery,
// group, kept performer or kept studio, or with a kept child tag. The tag
// graph is a DAG that may contain cycles in malformed data; the walk visits
// each node once.
func (f *EmptyFilter) FilterEmptyTags(tags []*domain.Tag, visibleScenes []*domain.Scene, visibleImages []*domain.Image, visibleGalleries []*domain.Gallery, visibleGroups []*domain.Group, visiblePerformers []*domain.Performer, visibleStudios []*domain.Studio) []*domain.Tag {
	referenced := make(map[domain.EntityKey]bool)
	mark := func(keys []domain.EntityKey) {
		for _, k := range keys {
			referenced[k] = true
		}
	}
	for _, sc := range visibleScenes {
		mark(sc.TagKeys())
	}
	for _, img := range visibleImages {
		mark(img.TagKeys())
	}
	for _, g := range visibleGalleries {
		mark(g.TagKeys())
	}
	for _, g := range visibleGroups {
		mark(g.TagKeys())
	}
	for _, p := range visiblePerformers {
		mark(p.TagKeys())
	}
	for _, st := range visibleStudios {
		mark(st.TagKeys())
	}

	keptSet := propagateKept(tags, func(t *domain.Tag) bool {
		return referenced[t.Key()]
	}, (*domain.Tag).ParentKeys)

	kept := make([]*domain.Tag, 0, len(tags))
	for _, t := range tags {
		if _, ok := keptSet[t.Key()]; ok {
			kept = append(kept, t)
		}
	}
	return kept
}

// propagateKept computes "node or any descendant is non-empty" over a
// possibly-cyclic hierarchy by propagating kept status upward along parent
// links from every base-kept node. Each node enters the worklist at most
// once, so diamonds are counted once and cycles terminate.
func propagateKept[T interface{ Key() domain.EntityKey }](items []T, base func(T) bool, parents func(T) []domain.EntityKey) domain.KeySet {
	index := make(map[domain.EntityKey]T, len(items))
	for _, item := range items {
		index[item.Key()] = item
	}

	kept := make(domain.KeySet)
	var queue []T
	for _, item := range items {
		if base(item) {
			kept.Add(item.Key())
			queue = append(queue, item)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parentKey := range parents(current) {
			parent, ok := index[parentKey]
			if !ok {
				continue
			}
			if _, already := kept[parentKey]; already {
				continue
			}
			kept.Add(parentKey)
			queue = append(queue, parent)
		}
	}
	return kept
}

func keySetOf[T interface{ Key() domain.EntityKey }](items []T) domain.KeySet {
	set := make(domain.KeySet, len(items))
	for _, item := range items {
		set.Add(item.Key())
	}
	return set
}

func anyVisible(keys []domain.EntityKey, visible domain.KeySet) bool {
	for _, k := range keys {
		if visible.Contains(k) {
			return true
		}
	}
	return false
}
