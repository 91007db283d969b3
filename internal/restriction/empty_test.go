package restriction

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

func newTestEmptyFilter() *EmptyFilter {
	return NewEmptyFilter(slog.New(slog.DiscardHandler))
}

func keptIDs[T interface{ Key() domain.EntityKey }](items []T) map[string]bool {
	ids := make(map[string]bool, len(items))
	for _, item := range items {
		ids[item.Key().ID] = true
	}
	return ids
}

func TestFilterEmptyStudios_RestrictedCountsNotRemoteCounts(t *testing.T) {
	// The studio reports a hundred scenes remotely, but none survived
	// restriction filtering, so it is empty.
	studio := &domain.Studio{ID: "st-1", SceneCount: 100}

	got := newTestEmptyFilter().FilterEmptyStudios([]*domain.Studio{studio}, nil, nil, nil, nil)
	if len(got) != 0 {
		t.Errorf("studio with no visible content must be pruned regardless of remote counts, kept %d", len(got))
	}
}

func TestFilterEmptyStudios_ParentKeptThroughChild(t *testing.T) {
	parent := &domain.Studio{ID: "st-parent"}
	child := &domain.Studio{ID: "st-child", Parent: parent}
	orphan := &domain.Studio{ID: "st-orphan"}

	scenes := []*domain.Scene{{ID: "S1", Studio: child}}

	got := newTestEmptyFilter().FilterEmptyStudios([]*domain.Studio{parent, child, orphan}, scenes, nil, nil, nil)
	ids := keptIDs(got)
	if !ids["st-child"] {
		t.Error("studio with a visible scene must be kept")
	}
	if !ids["st-parent"] {
		t.Error("parent of a kept studio must be kept")
	}
	if ids["st-orphan"] {
		t.Error("studio with no content and no kept children must be pruned")
	}
}

func TestFilterEmptyStudios_KeptViaGroupAndGallery(t *testing.T) {
	groupStudio := &domain.Studio{ID: "st-group"}
	galleryStudio := &domain.Studio{ID: "st-gallery"}

	groups := []*domain.Group{{ID: "g-1", Studio: groupStudio}}
	galleries := []*domain.Gallery{{ID: "ga-1", Studio: galleryStudio}}

	got := newTestEmptyFilter().FilterEmptyStudios([]*domain.Studio{groupStudio, galleryStudio}, nil, nil, groups, galleries)
	ids := keptIDs(got)
	if !ids["st-group"] || !ids["st-gallery"] {
		t.Errorf("studios referenced by visible groups or galleries must be kept, got %v", ids)
	}
}

func TestFilterEmptyGroups_ChainAndIsolation(t *testing.T) {
	grandparent := &domain.Group{ID: "g-grand"}
	parent := &domain.Group{ID: "g-parent", Containing: []*domain.Group{grandparent}}
	leaf := &domain.Group{ID: "g-leaf", Containing: []*domain.Group{parent}}
	isolated := &domain.Group{ID: "g-isolated"}

	scenes := []*domain.Scene{{ID: "S1", Groups: []*domain.Group{leaf}}}

	got := newTestEmptyFilter().FilterEmptyGroups([]*domain.Group{grandparent, parent, leaf, isolated}, scenes)
	ids := keptIDs(got)
	for _, want := range []string{"g-grand", "g-parent", "g-leaf"} {
		if !ids[want] {
			t.Errorf("%s must be kept through the containment chain", want)
		}
	}
	if ids["g-isolated"] {
		t.Error("group with no visible scenes anywhere must be pruned")
	}
}

func TestFilterEmptyGroups_CycleTerminates(t *testing.T) {
	a := &domain.Group{ID: "g-a"}
	b := &domain.Group{ID: "g-b"}
	a.Containing = []*domain.Group{b}
	b.Containing = []*domain.Group{a}
	detached := &domain.Group{ID: "g-detached"}
	detached.Containing = []*domain.Group{detached}

	scenes := []*domain.Scene{{ID: "S1", Groups: []*domain.Group{a}}}

	got := newTestEmptyFilter().FilterEmptyGroups([]*domain.Group{a, b, detached}, scenes)
	ids := keptIDs(got)
	if !ids["g-a"] || !ids["g-b"] {
		t.Errorf("both members of the kept cycle must survive, got %v", ids)
	}
	if ids["g-detached"] {
		t.Error("self-referencing group with no content must be pruned")
	}
}

func TestFilterEmptyTags_Diamond(t *testing.T) {
	top := &domain.Tag{ID: "t-top"}
	left := &domain.Tag{ID: "t-left", Parents: []*domain.Tag{top}}
	right := &domain.Tag{ID: "t-right", Parents: []*domain.Tag{top}}
	bottom := &domain.Tag{ID: "t-bottom", Parents: []*domain.Tag{left, right}}

	scenes := []*domain.Scene{{ID: "S1", Tags: []*domain.Tag{bottom}}}

	got := newTestEmptyFilter().FilterEmptyTags([]*domain.Tag{top, left, right, bottom}, scenes, nil, nil, nil, nil, nil)
	ids := keptIDs(got)
	for _, want := range []string{"t-top", "t-left", "t-right", "t-bottom"} {
		if !ids[want] {
			t.Errorf("%s must be kept through the diamond", want)
		}
	}
}

func TestFilterEmptyTags_KeptThroughPerformersAndStudios(t *testing.T) {
	performerTag := &domain.Tag{ID: "t-performer"}
	studioTag := &domain.Tag{ID: "t-studio"}
	unused := &domain.Tag{ID: "t-unused"}

	performers := []*domain.Performer{{ID: "p-1", Tags: []*domain.Tag{performerTag}}}
	studios := []*domain.Studio{{ID: "st-1", Tags: []*domain.Tag{studioTag}}}

	got := newTestEmptyFilter().FilterEmptyTags([]*domain.Tag{performerTag, studioTag, unused}, nil, nil, nil, nil, performers, studios)
	ids := keptIDs(got)
	if !ids["t-performer"] {
		t.Error("tag on a kept performer must be kept")
	}
	if !ids["t-studio"] {
		t.Error("tag on a kept studio must be kept")
	}
	if ids["t-unused"] {
		t.Error("unreferenced tag must be pruned")
	}
}

func TestFilterEmptyGalleries(t *testing.T) {
	withImages := &domain.Gallery{ID: "ga-images"}
	withScene := &domain.Gallery{ID: "ga-scene", Scenes: []*domain.Scene{{ID: "S1"}}}
	empty := &domain.Gallery{ID: "ga-empty", Scenes: []*domain.Scene{{ID: "S-hidden"}}}

	images := []*domain.Image{{ID: "i-1", Galleries: []*domain.Gallery{withImages}}}
	visibleScenes := domain.KeySet{}
	visibleScenes.Add(domain.EntityKey{ID: "S1"})

	got := newTestEmptyFilter().FilterEmptyGalleries([]*domain.Gallery{withImages, withScene, empty}, images, visibleScenes)
	ids := keptIDs(got)
	if !ids["ga-images"] {
		t.Error("gallery with a visible image must be kept")
	}
	if !ids["ga-scene"] {
		t.Error("gallery linked to a visible scene must be kept")
	}
	if ids["ga-empty"] {
		t.Error("gallery whose only scene is hidden must be pruned")
	}
}

func TestFilterEmptyPerformers(t *testing.T) {
	inScene := &domain.Performer{ID: "p-scene"}
	inImage := &domain.Performer{ID: "p-image"}
	inGallery := &domain.Performer{ID: "p-gallery"}
	nowhere := &domain.Performer{ID: "p-nowhere", SceneCount: 42}

	scenes := []*domain.Scene{{ID: "S1", Performers: []*domain.Performer{inScene}}}
	images := []*domain.Image{{ID: "i-1", Performers: []*domain.Performer{inImage}}}
	galleries := []*domain.Gallery{{ID: "ga-1", Performers: []*domain.Performer{inGallery}}}

	got := newTestEmptyFilter().FilterEmptyPerformers([]*domain.Performer{inScene, inImage, inGallery, nowhere}, scenes, images, galleries)
	ids := keptIDs(got)
	for _, want := range []string{"p-scene", "p-image", "p-gallery"} {
		if !ids[want] {
			t.Errorf("%s must be kept", want)
		}
	}
	if ids["p-nowhere"] {
		t.Error("performer with no visible appearances must be pruned despite remote counts")
	}
}

func TestFilterAllEntities_DependencyOrder(t *testing.T) {
	// The tag is attached only to a studio; the studio's only content is a
	// gallery; the gallery's only content is an image. Pruning must run
	// galleries before studios and studios before tags for the tag to
	// survive.
	chainTag := &domain.Tag{ID: "t-chain"}
	studio := &domain.Studio{ID: "st-1", Tags: []*domain.Tag{chainTag}}
	gallery := &domain.Gallery{ID: "ga-1", Studio: studio}
	image := &domain.Image{ID: "i-1", Galleries: []*domain.Gallery{gallery}}

	result := newTestEmptyFilter().FilterAllEntities(domain.Collections{
		Images:    []*domain.Image{image},
		Galleries: []*domain.Gallery{gallery},
		Studios:   []*domain.Studio{studio},
		Tags:      []*domain.Tag{chainTag},
	})

	if len(result.Collections.Galleries) != 1 {
		t.Fatal("gallery with a visible image must be kept")
	}
	if len(result.Collections.Studios) != 1 {
		t.Fatal("studio referenced by the kept gallery must be kept")
	}
	if len(result.Collections.Tags) != 1 {
		t.Fatal("tag on the kept studio must be kept")
	}
	if !result.Visibility.Studios.Contains(studio.Key()) {
		t.Error("visibility set must record the kept studio")
	}
}

func TestFilterAllEntities_LogsPruneCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewEmptyFilter(logger).FilterAllEntities(domain.Collections{
		Studios: []*domain.Studio{{ID: "st-1", SceneCount: 100}},
	})

	out := buf.String()
	if !strings.Contains(out, "pruned empty entities") || !strings.Contains(out, "studios=1") {
		t.Errorf("expected a debug line with prune counts, got %q", out)
	}
}

func TestFilterAllEntities_ScenesAndImagesPassThrough(t *testing.T) {
	scenes := []*domain.Scene{{ID: "S1"}, {ID: "S2"}}
	images := []*domain.Image{{ID: "i-1"}}

	result := newTestEmptyFilter().FilterAllEntities(domain.Collections{
		Scenes: scenes,
		Images: images,
	})

	if len(result.Collections.Scenes) != 2 || len(result.Collections.Images) != 1 {
		t.Error("scenes and images are ground truth and must never be pruned")
	}
}
