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

const performerColumns = `p.id, p.instance_id, p.created_at, p.updated_at, p.deleted_at,
	p.name, p.disambiguation, p.details, p.birthdate, p.rating, p.favorite,
	p.scene_count, p.image_count, p.gallery_count`

func scanPerformer(scanner interface{ Scan(dest ...any) error }, userID string) (*domain.Performer, error) {
	var p domain.Performer

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		birthdate sql.NullString
		rating    sql.NullInt64
		favorite  int

		oRating    sql.NullInt64
		oFavorite  sql.NullInt64
		oViewCount sql.NullInt64
		oUpdatedAt sql.NullString
	)

	err := scanner.Scan(
		&p.ID,
		&p.InstanceID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&p.Name,
		&p.Disambiguation,
		&p.Details,
		&birthdate,
		&rating,
		&favorite,
		&p.SceneCount,
		&p.ImageCount,
		&p.GalleryCount,
		&oRating,
		&oFavorite,
		&oViewCount,
		&oUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	p.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	p.Birthdate, err = parseNullableDate(birthdate)
	if err != nil {
		return nil, err
	}

	p.Rating = intPtr(rating)
	p.Favorite = favorite != 0

	p.Overlay, err = scanOverlay(userID, domain.EntityPerformer, p.Key(), oRating, oFavorite, oViewCount, oUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var performerTagsJunction = filter.JunctionSpec{
	Table: "performer_tags", ParentIDColumn: "performer_id", ParentInstanceCol: "performer_instance_id",
	EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
	ParentIDExpr: "p.id", ParentInstanceExpr: "p.instance_id",
}

var performerSortColumns = map[string]string{
	"":            "p.name",
	"name":        "p.name",
	"birthdate":   "p.birthdate",
	"rating":      "p.rating",
	"scene_count": "p.scene_count",
	"created_at":  "p.created_at",
	"updated_at":  "p.updated_at",
	"my_rating":   "o.rating",
}

// ListPerformers returns one page of performers matching the filter.
func (s *Store) ListPerformers(ctx context.Context, userID string, f store.PerformerFilter, params store.ListParams) (*store.ListResult[*domain.Performer], error) {
	params.Normalize()

	conds := []filter.Clause{
		{SQL: "p.deleted_at IS NULL"},
		filter.Text(f.Name, "p.name", "p.disambiguation"),
		filter.Text(f.Details, "p.details"),
		filter.Date(f.Birthdate, "p.birthdate"),
		filter.Numeric(f.Rating, "p.rating"),
		filter.Numeric(f.MyRating, "o.rating"),
		filter.Favorite(f.MyFavorite, "o.favorite"),
		filter.Junction(f.Tags, performerTagsJunction),
	}
	if params.ApplyExclusions {
		ex, err := s.userExclusions(ctx, userID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, performerExclusions(ex)...)
	}

	baseFrom := "performers p" + overlayJoin("p", domain.EntityPerformer)
	order := orderClause("p", params, performerSortColumns)

	result, err := queryList(ctx, s.db, performerColumns+", "+overlayColumns, baseFrom, []any{userID},
		filter.And(conds...), order, params,
		func(rows *sql.Rows) (*domain.Performer, error) { return scanPerformer(rows, userID) })
	if err != nil {
		return nil, fmt.Errorf("list performers: %w", err)
	}
	if err := s.loadPerformerRefs(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

// GetPerformersByIDs returns the performers for the given keys in request order.
func (s *Store) GetPerformersByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Performer, error) {
	performers := make([]*domain.Performer, 0, len(keys))
	for _, key := range keys {
		query := "SELECT " + performerColumns + ", " + overlayColumns +
			" FROM performers p" + overlayJoin("p", domain.EntityPerformer) +
			" WHERE p.deleted_at IS NULL AND p.id = ?"
		args := []any{userID, key.ID}
		if !key.Wildcard() {
			query += " AND p.instance_id = ?"
			args = append(args, key.InstanceID)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("get performers: %w", err)
		}
		for rows.Next() {
			p, err := scanPerformer(rows, userID)
			if err != nil {
				rows.Close()
				return nil, err
			}
			performers = append(performers, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	if err := s.loadPerformerRefs(ctx, performers); err != nil {
		return nil, err
	}
	return performers, nil
}

// ListAllPerformers loads every live performer with tag stubs.
func (s *Store) ListAllPerformers(ctx context.Context) ([]*domain.Performer, error) {
	query := "SELECT " + performerColumns + ", " + overlayColumns +
		" FROM performers p" + overlayJoin("p", domain.EntityPerformer) +
		" WHERE p.deleted_at IS NULL"
	rows, err := s.db.QueryContext(ctx, query, "")
	if err != nil {
		return nil, fmt.Errorf("list all performers: %w", err)
	}
	defer rows.Close()

	var performers []*domain.Performer
	for rows.Next() {
		p, err := scanPerformer(rows, "")
		if err != nil {
			return nil, err
		}
		performers = append(performers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.allLinks(ctx, performerTagLinks)
	if err != nil {
		return nil, err
	}
	for _, p := range performers {
		p.Tags = tagStubs(tags[p.Key()])
	}
	return performers, nil
}

func (s *Store) loadPerformerRefs(ctx context.Context, performers []*domain.Performer) error {
	for _, p := range performers {
		tags, err := s.linkedKeys(ctx, s.db, performerTagLinks, p.Key())
		if err != nil {
			return err
		}
		p.Tags = tagStubs(tags)
	}
	return nil
}

// UpsertPerformers writes a sync batch of performers and their tag links.
func (s *Store) UpsertPerformers(ctx context.Context, performers []*domain.Performer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, p := range performers {
		createdAt, updatedAt := p.CreatedAt, p.UpdatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if updatedAt.IsZero() {
			updatedAt = now
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO performers (id, instance_id, created_at, updated_at, deleted_at,
				name, disambiguation, details, birthdate, rating, favorite,
				scene_count, image_count, gallery_count)
			VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, instance_id) DO UPDATE SET
				updated_at = excluded.updated_at,
				deleted_at = NULL,
				name = excluded.name,
				disambiguation = excluded.disambiguation,
				details = excluded.details,
				birthdate = excluded.birthdate,
				rating = excluded.rating,
				favorite = excluded.favorite,
				scene_count = excluded.scene_count,
				image_count = excluded.image_count,
				gallery_count = excluded.gallery_count`,
			p.ID, p.InstanceID, formatTime(createdAt), formatTime(updatedAt),
			p.Name, p.Disambiguation, p.Details, nullDateString(p.Birthdate),
			nullInt(p.Rating), boolToInt(p.Favorite),
			p.SceneCount, p.ImageCount, p.GalleryCount,
		)
		if err != nil {
			return fmt.Errorf("upsert performer %s: %w", p.ID, err)
		}

		if err := replaceLinks(ctx, tx, performerTagLinks, p.Key(), p.TagKeys()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
