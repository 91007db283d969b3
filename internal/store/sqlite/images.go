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

const imageColumns = `i.id, i.instance_id, i.created_at, i.updated_at, i.deleted_at,
	i.title, i.date, i.rating, i.organized, i.studio_id, i.studio_instance_id`

func scanImage(scanner interface{ Scan(dest ...any) error }, userID string) (*domain.Image, error) {
	var img domain.Image

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
		&img.ID,
		&img.InstanceID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&img.Title,
		&date,
		&rating,
		&organized,
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

	img.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	img.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	img.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	img.Date, err = parseNullableDate(date)
	if err != nil {
		return nil, err
	}

	img.Rating = intPtr(rating)
	img.Organized = organized != 0
	img.Studio = studioStub(studioID.String, studioInstance.String)

	img.Overlay, err = scanOverlay(userID, domain.EntityImage, img.Key(), oRating, oFavorite, oViewCount, oUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

var (
	imageTagsJunction = filter.JunctionSpec{
		Table: "image_tags", ParentIDColumn: "image_id", ParentInstanceCol: "image_instance_id",
		EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
		ParentIDExpr: "i.id", ParentInstanceExpr: "i.instance_id",
	}
	imagePerformersJunction = filter.JunctionSpec{
		Table: "image_performers", ParentIDColumn: "image_id", ParentInstanceCol: "image_instance_id",
		EntityIDColumn: "performer_id", EntityInstanceCol: "performer_instance_id",
		ParentIDExpr: "i.id", ParentInstanceExpr: "i.instance_id",
	}
	imagePerformerTagsJunction = filter.JunctionSpec{
		Table: "image_performer_tags", ParentIDColumn: "image_id", ParentInstanceCol: "image_instance_id",
		EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
		ParentIDExpr: "i.id", ParentInstanceExpr: "i.instance_id",
	}
	imageGalleriesJunction = filter.JunctionSpec{
		Table: "image_galleries", ParentIDColumn: "image_id", ParentInstanceCol: "image_instance_id",
		EntityIDColumn: "gallery_id", EntityInstanceCol: "gallery_instance_id",
		ParentIDExpr: "i.id", ParentInstanceExpr: "i.instance_id",
	}
	imageStudioDirect = filter.DirectSpec{IDColumn: "i.studio_id", InstanceColumn: "i.studio_instance_id"}
)

var imageSortColumns = map[string]string{
	"":           "i.title",
	"title":      "i.title",
	"date":       "i.date",
	"rating":     "i.rating",
	"created_at": "i.created_at",
	"updated_at": "i.updated_at",
	"my_rating":  "o.rating",
	"view_count": "COALESCE(o.view_count, 0)",
}

// ListImages returns one page of images matching the filter.
func (s *Store) ListImages(ctx context.Context, userID string, f store.ImageFilter, params store.ListParams) (*store.ListResult[*domain.Image], error) {
	params.Normalize()

	conds := []filter.Clause{
		{SQL: "i.deleted_at IS NULL"},
		filter.Text(f.Title, "i.title"),
		filter.Date(f.Date, "i.date"),
		filter.Numeric(f.Rating, "i.rating"),
		filter.Numeric(f.MyRating, "o.rating"),
		filter.Numeric(f.ViewCount, "COALESCE(o.view_count, 0)"),
		filter.Favorite(f.MyFavorite, "o.favorite"),
		boolClause(f.Organized, "i.organized"),
		filter.Junction(f.Tags, imageTagsJunction),
		filter.Junction(f.Performers, imagePerformersJunction),
		filter.Junction(f.PerformerTags, imagePerformerTagsJunction),
		filter.Junction(f.Galleries, imageGalleriesJunction),
		filter.Direct(f.Studios, imageStudioDirect),
	}
	if params.ApplyExclusions {
		ex, err := s.userExclusions(ctx, userID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, imageExclusions(ex)...)
	}

	baseFrom := "images i" + overlayJoin("i", domain.EntityImage)
	order := orderClause("i", params, imageSortColumns)

	result, err := queryList(ctx, s.db, imageColumns+", "+overlayColumns, baseFrom, []any{userID},
		filter.And(conds...), order, params,
		func(rows *sql.Rows) (*domain.Image, error) { return scanImage(rows, userID) })
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	if err := s.loadImageRefs(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

// GetImagesByIDs returns the images for the given keys in request order.
func (s *Store) GetImagesByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Image, error) {
	images := make([]*domain.Image, 0, len(keys))
	for _, key := range keys {
		query := "SELECT " + imageColumns + ", " + overlayColumns +
			" FROM images i" + overlayJoin("i", domain.EntityImage) +
			" WHERE i.deleted_at IS NULL AND i.id = ?"
		args := []any{userID, key.ID}
		if !key.Wildcard() {
			query += " AND i.instance_id = ?"
			args = append(args, key.InstanceID)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("get images: %w", err)
		}
		for rows.Next() {
			img, err := scanImage(rows, userID)
			if err != nil {
				rows.Close()
				return nil, err
			}
			images = append(images, img)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	if err := s.loadImageRefs(ctx, images); err != nil {
		return nil, err
	}
	return images, nil
}

// ListAllImages loads every live image with its relationship stubs.
func (s *Store) ListAllImages(ctx context.Context) ([]*domain.Image, error) {
	query := "SELECT " + imageColumns + ", " + overlayColumns +
		" FROM images i" + overlayJoin("i", domain.EntityImage) +
		" WHERE i.deleted_at IS NULL"
	rows, err := s.db.QueryContext(ctx, query, "")
	if err != nil {
		return nil, fmt.Errorf("list all images: %w", err)
	}
	defer rows.Close()

	var images []*domain.Image
	for rows.Next() {
		img, err := scanImage(rows, "")
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.allLinks(ctx, imageTagLinks)
	if err != nil {
		return nil, err
	}
	performers, err := s.allLinks(ctx, imagePerformerLinks)
	if err != nil {
		return nil, err
	}
	galleries, err := s.allLinks(ctx, imageGalleryLinks)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		key := img.Key()
		img.Tags = tagStubs(tags[key])
		img.Performers = performerStubs(performers[key])
		img.Galleries = galleryStubs(galleries[key])
	}
	return images, nil
}

func (s *Store) loadImageRefs(ctx context.Context, images []*domain.Image) error {
	for _, img := range images {
		key := img.Key()

		tags, err := s.linkedKeys(ctx, s.db, imageTagLinks, key)
		if err != nil {
			return err
		}
		performers, err := s.linkedKeys(ctx, s.db, imagePerformerLinks, key)
		if err != nil {
			return err
		}
		galleries, err := s.linkedKeys(ctx, s.db, imageGalleryLinks, key)
		if err != nil {
			return err
		}

		img.Tags = tagStubs(tags)
		img.Performers = performerStubs(performers)
		img.Galleries = galleryStubs(galleries)
	}
	return nil
}

// UpsertImages writes a sync batch of images and their link rows.
func (s *Store) UpsertImages(ctx context.Context, images []*domain.Image) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, img := range images {
		createdAt, updatedAt := img.CreatedAt, img.UpdatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if updatedAt.IsZero() {
			updatedAt = now
		}

		var studioID, studioInstance sql.NullString
		if img.Studio != nil {
			studioID = nullString(img.Studio.ID)
			studioInstance = sql.NullString{String: img.Studio.InstanceID, Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO images (id, instance_id, created_at, updated_at, deleted_at,
				title, date, rating, organized, studio_id, studio_instance_id)
			VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, instance_id) DO UPDATE SET
				updated_at = excluded.updated_at,
				deleted_at = NULL,
				title = excluded.title,
				date = excluded.date,
				rating = excluded.rating,
				organized = excluded.organized,
				studio_id = excluded.studio_id,
				studio_instance_id = excluded.studio_instance_id`,
			img.ID, img.InstanceID, formatTime(createdAt), formatTime(updatedAt),
			img.Title, nullDateString(img.Date), nullInt(img.Rating),
			boolToInt(img.Organized), studioID, studioInstance,
		)
		if err != nil {
			return fmt.Errorf("upsert image %s: %w", img.ID, err)
		}

		key := img.Key()
		if err := replaceLinks(ctx, tx, imageTagLinks, key, img.TagKeys()); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, imagePerformerLinks, key, img.PerformerKeys()); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, imageGalleryLinks, key, img.GalleryKeys()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
