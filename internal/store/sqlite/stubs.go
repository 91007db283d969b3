package sqlite

import "github.com/mirrorboxapp/mirrorbox-server/internal/domain"

// Stub constructors turn link-table keys into key-only entity references.
// Collections.Link swaps them for the canonical objects when a full library
// is materialized; list endpoints return them as-is for the client to
// resolve.

func tagStubs(keys []domain.EntityKey) []*domain.Tag {
	if len(keys) == 0 {
		return nil
	}
	tags := make([]*domain.Tag, len(keys))
	for i, k := range keys {
		tags[i] = &domain.Tag{ID: k.ID, InstanceID: k.InstanceID}
	}
	return tags
}

func performerStubs(keys []domain.EntityKey) []*domain.Performer {
	if len(keys) == 0 {
		return nil
	}
	performers := make([]*domain.Performer, len(keys))
	for i, k := range keys {
		performers[i] = &domain.Performer{ID: k.ID, InstanceID: k.InstanceID}
	}
	return performers
}

func groupStubs(keys []domain.EntityKey) []*domain.Group {
	if len(keys) == 0 {
		return nil
	}
	groups := make([]*domain.Group, len(keys))
	for i, k := range keys {
		groups[i] = &domain.Group{ID: k.ID, InstanceID: k.InstanceID}
	}
	return groups
}

func galleryStubs(keys []domain.EntityKey) []*domain.Gallery {
	if len(keys) == 0 {
		return nil
	}
	galleries := make([]*domain.Gallery, len(keys))
	for i, k := range keys {
		galleries[i] = &domain.Gallery{ID: k.ID, InstanceID: k.InstanceID}
	}
	return galleries
}

func sceneStubs(keys []domain.EntityKey) []*domain.Scene {
	if len(keys) == 0 {
		return nil
	}
	scenes := make([]*domain.Scene, len(keys))
	for i, k := range keys {
		scenes[i] = &domain.Scene{ID: k.ID, InstanceID: k.InstanceID}
	}
	return scenes
}

func studioStub(id, instanceID string) *domain.Studio {
	if id == "" {
		return nil
	}
	return &domain.Studio{ID: id, InstanceID: instanceID}
}
