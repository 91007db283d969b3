package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

const galleryColumns = `g.id, g.instance_id, g.created_at, g.updated_at, g.deleted_at,
	g.title, g.details, g.date, g.rating, g.organized, g.image_count,
	g.studio_id, g.studio_instance_id`

func scanGallery(scanner interface{ Scan(dest ...any) error }, userID string) (*domain.Gallery, error) {
	var g domain.Gallery

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		date      sql.NullString
		rating    sql.NullInt64
		organized int

		studioID       sql.NullString
		studioInstance sql.NullString

		oRating    sql.NullInt64
		oFavorite  sql.NullInt64
		oViewCount sql.NullInt64
		oUpdatedAt sql.NullString
	)

	err := scanner.Scan(
		&g.ID,
		&g.InstanceID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&g.Title,
		&g.Details,
		&date,
		&rating,
		&organized,
		&g.ImageCount,
		&studioID,
		&studioInstance,
		&oRating,
		&oFavorite,
		&oViewCount,
		&oUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	g.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	g.Date, err = parseNullableDate(date)
	if err != nil {
		return nil, err
	}

	g.Rating = intPtr(rating)
	g.Organized = organized != 0
	g.Studio = studioStub(studioID.String, studioInstance.String)

	g.Overlay, err = scanOverlay(userID, domain.EntityGallery, g.Key(), oRating, oFavorite, oViewCount, oUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

var (
	galleryTagsJunction = filter.JunctionSpec{
		Table: "gallery_tags", ParentIDColumn: "gallery_id", ParentInstanceCol: "gallery_instance_id",
		EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
		ParentIDExpr: "g.id", ParentInstanceExpr: "g.instance_id",
	}
	galleryPerformersJunction = filter.JunctionSpec{
		Table: "gallery_performers", ParentIDColumn: "gallery_id", ParentInstanceCol: "gallery_instance_id",
		EntityIDColumn: "performer_id", EntityInstanceCol: "performer_instance_id",
		ParentIDExpr: "g.id", ParentInstanceExpr: "g.instance_id",
	}
	galleryPerformerTagsJunction = filter.JunctionSpec{
		Table: "gallery_performer_tags", ParentIDColumn: "gallery_id", ParentInstanceCol: "gallery_instance_id",
		EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
		ParentIDExpr: "g.id", ParentInstanceExpr: "g.instance_id",
	}
	galleryScenesJunction = filter.JunctionSpec{
		Table: "scene_galleries", ParentIDColumn: "gallery_id", ParentInstanceCol: "gallery_instance_id",
		EntityIDColumn: "scene_id", EntityInstanceCol: "scene_instance_id",
		ParentIDExpr: "g.id", ParentInstanceExpr: "g.instance_id",
	}
	galleryStudioDirect = filter.DirectSpec{IDColumn: "g.studio_id", InstanceColumn: "g.studio_instance_id"}
)

var gallerySortColumns = map[string]string{
	"":            "g.title",
	"title":       "g.title",
	"date":        "g.date",
	"rating":      "g.rating",
	"image_count": "g.image_count",
	"created_at":  "g.created_at",
	"updated_at":  "g.updated_at",
	"my_rating":   "o.rating",
}

// ListGalleries returns one page of galleries matching the filter.
func (s *Store) ListGalleries(ctx context.Context, userID string, f store.GalleryFilter, params store.ListParams) (*store.ListResult[*domain.Gallery], error) {
	params.Normalize()

	conds := []filter.Clause{
		{SQL: "g.deleted_at IS NULL"},
		filter.Text(f.Title, "g.title"),
		filter.Text(f.Details, "g.details"),
		filter.Date(f.Date, "g.date"),
		filter.Numeric(f.Rating, "g.rating"),
		filter.Numeric(f.MyRating, "o.rating"),
		filter.Favorite(f.MyFavorite, "o.favorite"),
		boolClause(f.Organized, "g.organized"),
		filter.Junction(f.Tags, galleryTagsJunction),
		filter.Junction(f.Performers, galleryPerformersJunction),
		filter.Junction(f.PerformerTags, galleryPerformerTagsJunction),
		filter.Junction(f.Scenes, galleryScenesJunction),
		filter.Direct(f.Studios, galleryStudioDirect),
	}
	if params.ApplyExclusions {
		ex, err := s.userExclusions(ctx, userID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, galleryExclusions(ex)...)
	}

	baseFrom := "galleries g" + overlayJoin("g", domain.EntityGallery)
	order := orderClause("g", params, gallerySortColumns)

	result, err := queryList(ctx, s.db, galleryColumns+", "+overlayColumns, baseFrom, []any{userID},
		filter.And(conds...), order, params,
		func(rows *sql.Rows) (*domain.Gallery, error) { return scanGallery(rows, userID) })
	if err != nil {
		return nil, fmt.Errorf("list galleries: %w", err)
	}
	if err := s.loadGalleryRefs(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

// GetGalleriesByIDs returns the galleries for the given keys in request order.
func (s *Store) GetGalleriesByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Gallery, error) {
	galleries := make([]*domain.Gallery, 0, len(keys))
	for _, key := range keys {
		query := "SELECT " + galleryColumns + ", " + overlayColumns +
			" FROM galleries g" + overlayJoin("g", domain.EntityGallery) +
			" WHERE g.deleted_at IS NULL AND g.id = ?"
		args := []any{userID, key.ID}
		if !key.Wildcard() {
			query += " AND g.instance_id = ?"
			args = append(args, key.InstanceID)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("get galleries: %w", err)
		}
		for rows.Next() {
			g, err := scanGallery(rows, userID)
			if err != nil {
				rows.Close()
				return nil, err
			}
			galleries = append(galleries, g)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	if err := s.loadGalleryRefs(ctx, galleries); err != nil {
		return nil, err
	}
	return galleries, nil
}

// ListAllGalleries loads every live gallery with its relationship stubs.
func (s *Store) ListAllGalleries(ctx context.Context) ([]*domain.Gallery, error) {
	query := "SELECT " + galleryColumns + ", " + overlayColumns +
		" FROM galleries g" + overlayJoin("g", domain.EntityGallery) +
		" WHERE g.deleted_at IS NULL"
	rows, err := s.db.QueryContext(ctx, query, "")
	if err != nil {
		return nil, fmt.Errorf("list all galleries: %w", err)
	}
	defer rows.Close()

	var galleries []*domain.Gallery
	for rows.Next() {
		g, err := scanGallery(rows, "")
		if err != nil {
			return nil, err
		}
		galleries = append(galleries, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.allLinks(ctx, galleryTagLinks)
	if err != nil {
		return nil, err
	}
	performers, err := s.allLinks(ctx, galleryPerformerLinks)
	if err != nil {
		return nil, err
	}
	scenes, err := s.allLinks(ctx, gallerySceneLinks)
	if err != nil {
		return nil, err
	}
	for _, g := range galleries {
		key := g.Key()
		g.Tags = tagStubs(tags[key])
		g.Performers = performerStubs(performers[key])
		g.Scenes = sceneStubs(scenes[key])
	}
	return galleries, nil
}

func (s *Store) loadGalleryRefs(ctx context.Context, galleries []*domain.Gallery) error {
	for _, g := range galleries {
		key := g.Key()

		tags, err := s.linkedKeys(ctx, s.db, galleryTagLinks, key)
		if err != nil {
			return err
		}
		performers, err := s.linkedKeys(ctx, s.db, galleryPerformerLinks, key)
		if err != nil {
			return err
		}
		scenes, err := s.linkedKeys(ctx, s.db, gallerySceneLinks, key)
		if err != nil {
			return err
		}

		g.Tags = tagStubs(tags)
		g.Performers = performerStubs(performers)
		g.Scenes = sceneStubs(scenes)
	}
	return nil
}

// UpsertGalleries writes a sync batch of galleries and their link rows.
func (s *Store) UpsertGalleries(ctx context.Context, galleries []*domain.Gallery) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, g := range galleries {
		createdAt, updatedAt := g.CreatedAt, g.UpdatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if updatedAt.IsZero() {
			updatedAt = now
		}

		var studioID, studioInstance sql.NullString
		if g.Studio != nil {
			studioID = nullString(g.Studio.ID)
			studioInstance = sql.NullString{String: g.Studio.InstanceID, Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO galleries (id, instance_id, created_at, updated_at, deleted_at,
				title, details, date, rating, organized, image_count,
				studio_id, studio_instance_id)
			VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, instance_id) DO UPDATE SET
				updated_at = excluded.updated_at,
				deleted_at = NULL,
				title = excluded.title,
				details = excluded.details,
				date = excluded.date,
				rating = excluded.rating,
				organized = excluded.organized,
				image_count = excluded.image_count,
				studio_id = excluded.studio_id,
				studio_instance_id = excluded.studio_instance_id`,
			g.ID, g.InstanceID, formatTime(createdAt), formatTime(updatedAt),
			g.Title, g.Details, nullDateString(g.Date), nullInt(g.Rating),
			boolToInt(g.Organized), g.ImageCount, studioID, studioInstance,
		)
		if err != nil {
			return fmt.Errorf("upsert gallery %s: %w", g.ID, err)
		}

		key := g.Key()
		if err := replaceLinks(ctx, tx, galleryTagLinks, key, g.TagKeys()); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, galleryPerformerLinks, key, g.PerformerKeys()); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, gallerySceneLinks, key, g.SceneKeys()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
