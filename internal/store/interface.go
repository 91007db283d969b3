// Package store declares the persistence interfaces the services consume,
// plus the shared pagination and filter types. The SQLite implementation
// lives in store/sqlite.
package store

import (
	"context"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
)

// EntityReader serves the per-entity browse queries. List methods return one
// page plus the total match count; GetByIDs methods return full entities in
// the order of the requested keys, silently skipping unknown keys.
type EntityReader interface {
	ListScenes(ctx context.Context, userID string, f SceneFilter, params ListParams) (*ListResult[*domain.Scene], error)
	ListImages(ctx context.Context, userID string, f ImageFilter, params ListParams) (*ListResult[*domain.Image], error)
	ListGalleries(ctx context.Context, userID string, f GalleryFilter, params ListParams) (*ListResult[*domain.Gallery], error)
	ListPerformers(ctx context.Context, userID string, f PerformerFilter, params ListParams) (*ListResult[*domain.Performer], error)
	ListStudios(ctx context.Context, userID string, f StudioFilter, params ListParams) (*ListResult[*domain.Studio], error)
	ListTags(ctx context.Context, userID string, f TagFilter, params ListParams) (*ListResult[*domain.Tag], error)
	ListGroups(ctx context.Context, userID string, f GroupFilter, params ListParams) (*ListResult[*domain.Group], error)

	GetScenesByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Scene, error)
	GetImagesByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Image, error)
	GetGalleriesByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Gallery, error)
	GetPerformersByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Performer, error)
	GetStudiosByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Studio, error)
	GetTagsByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Tag, error)
	GetGroupsByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Group, error)
}

// LibraryReader loads full entity collections for the restriction pipeline.
type LibraryReader interface {
	ListAllScenes(ctx context.Context) ([]*domain.Scene, error)
	ListAllImages(ctx context.Context) ([]*domain.Image, error)
	ListAllGalleries(ctx context.Context) ([]*domain.Gallery, error)
	ListAllPerformers(ctx context.Context) ([]*domain.Performer, error)
	ListAllStudios(ctx context.Context) ([]*domain.Studio, error)
	ListAllTags(ctx context.Context) ([]*domain.Tag, error)
	ListAllGroups(ctx context.Context) ([]*domain.Group, error)
}

// RestrictionStore persists per-user content restrictions.
type RestrictionStore interface {
	CreateRestriction(ctx context.Context, r *domain.ContentRestriction) error
	UpdateRestriction(ctx context.Context, r *domain.ContentRestriction) error
	DeleteRestriction(ctx context.Context, userID, id string) error
	GetRestriction(ctx context.Context, userID, id string) (*domain.ContentRestriction, error)
	ListRestrictionsForUser(ctx context.Context, userID string) ([]*domain.ContentRestriction, error)
}

// OverlayStore persists per-user entity overlays.
type OverlayStore interface {
	UpsertOverlay(ctx context.Context, o *domain.Overlay) error
	GetOverlay(ctx context.Context, userID string, entityType domain.EntityType, key domain.EntityKey) (*domain.Overlay, error)
	IncrementViewCount(ctx context.Context, userID string, entityType domain.EntityType, key domain.EntityKey) (int, error)
}

// UserStore persists local accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// LineageReader serves the hierarchy expander; it satisfies
// filter.LineageLister.
type LineageReader interface {
	ListTagLineage(ctx context.Context) ([]filter.Lineage, error)
	ListStudioLineage(ctx context.Context) ([]filter.Lineage, error)
}

// CatalogWriter is the sync ingest boundary: batch upserts of mirrored
// entities with their link rows, and soft-deletion of records missing from
// the latest sync.
type CatalogWriter interface {
	UpsertScenes(ctx context.Context, scenes []*domain.Scene) error
	UpsertImages(ctx context.Context, images []*domain.Image) error
	UpsertGalleries(ctx context.Context, galleries []*domain.Gallery) error
	UpsertPerformers(ctx context.Context, performers []*domain.Performer) error
	UpsertStudios(ctx context.Context, studios []*domain.Studio) error
	UpsertTags(ctx context.Context, tags []*domain.Tag) error
	UpsertGroups(ctx context.Context, groups []*domain.Group) error
	SoftDeleteMissing(ctx context.Context, entityType domain.EntityType, instanceID string, seen []domain.EntityKey) (int, error)
}
