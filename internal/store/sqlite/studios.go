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

const studioColumns = `st.id, st.instance_id, st.created_at, st.updated_at, st.deleted_at,
	st.name, st.details, st.rating, st.favorite, st.url,
	st.scene_count, st.image_count, st.parent_id, st.parent_instance_id`

func scanStudio(scanner interface{ Scan(dest ...any) error }, userID string) (*domain.Studio, error) {
	var st domain.Studio

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		rating    sql.NullInt64
		favorite  int

		parentID       sql.NullString
		parentInstance sql.NullString

		oRating    sql.NullInt64
		oFavorite  sql.NullInt64
		oViewCount sql.NullInt64
		oUpdatedAt sql.NullString
	)

	err := scanner.Scan(
		&st.ID,
		&st.InstanceID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&st.Name,
		&st.Details,
		&rating,
		&favorite,
		&st.URL,
		&st.SceneCount,
		&st.ImageCount,
		&parentID,
		&parentInstance,
		&oRating,
		&oFavorite,
		&oViewCount,
		&oUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	st.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	st.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	st.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	st.Rating = intPtr(rating)
	st.Favorite = favorite != 0
	st.Parent = studioStub(parentID.String, parentInstance.String)

	st.Overlay, err = scanOverlay(userID, domain.EntityStudio, st.Key(), oRating, oFavorite, oViewCount, oUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

var (
	studioTagsJunction = filter.JunctionSpec{
		Table: "studio_tags", ParentIDColumn: "studio_id", ParentInstanceCol: "studio_instance_id",
		EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
		ParentIDExpr: "st.id", ParentInstanceExpr: "st.instance_id",
	}
	studioParentDirect = filter.DirectSpec{IDColumn: "st.parent_id", InstanceColumn: "st.parent_instance_id"}
)

var studioSortColumns = map[string]string{
	"":            "st.name",
	"name":        "st.name",
	"rating":      "st.rating",
	"scene_count": "st.scene_count",
	"created_at":  "st.created_at",
	"updated_at":  "st.updated_at",
	"my_rating":   "o.rating",
}

// ListStudios returns one page of studios matching the filter.
func (s *Store) ListStudios(ctx context.Context, userID string, f store.StudioFilter, params store.ListParams) (*store.ListResult[*domain.Studio], error) {
	params.Normalize()

	conds := []filter.Clause{
		{SQL: "st.deleted_at IS NULL"},
		filter.Text(f.Name, "st.name"),
		filter.Text(f.Details, "st.details"),
		filter.Text(f.URL, "st.url"),
		filter.Numeric(f.Rating, "st.rating"),
		filter.Numeric(f.MyRating, "o.rating"),
		filter.Favorite(f.MyFavorite, "o.favorite"),
		filter.Junction(f.Tags, studioTagsJunction),
		filter.Direct(f.Parents, studioParentDirect),
	}
	if params.ApplyExclusions {
		ex, err := s.userExclusions(ctx, userID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, studioExclusions(ex)...)
	}

	baseFrom := "studios st" + overlayJoin("st", domain.EntityStudio)
	order := orderClause("st", params, studioSortColumns)

	result, err := queryList(ctx, s.db, studioColumns+", "+overlayColumns, baseFrom, []any{userID},
		filter.And(conds...), order, params,
		func(rows *sql.Rows) (*domain.Studio, error) { return scanStudio(rows, userID) })
	if err != nil {
		return nil, fmt.Errorf("list studios: %w", err)
	}
	if err := s.loadStudioRefs(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

// GetStudiosByIDs returns the studios for the given keys in request order.
func (s *Store) GetStudiosByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Studio, error) {
	studios := make([]*domain.Studio, 0, len(keys))
	for _, key := range keys {
		query := "SELECT " + studioColumns + ", " + overlayColumns +
			" FROM studios st" + overlayJoin("st", domain.EntityStudio) +
			" WHERE st.deleted_at IS NULL AND st.id = ?"
		args := []any{userID, key.ID}
		if !key.Wildcard() {
			query += " AND st.instance_id = ?"
			args = append(args, key.InstanceID)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("get studios: %w", err)
		}
		for rows.Next() {
			st, err := scanStudio(rows, userID)
			if err != nil {
				rows.Close()
				return nil, err
			}
			studios = append(studios, st)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	if err := s.loadStudioRefs(ctx, studios); err != nil {
		return nil, err
	}
	return studios, nil
}

// ListAllStudios loads every live studio with tag stubs and parent reference.
func (s *Store) ListAllStudios(ctx context.Context) ([]*domain.Studio, error) {
	query := "SELECT " + studioColumns + ", " + overlayColumns +
		" FROM studios st" + overlayJoin("st", domain.EntityStudio) +
		" WHERE st.deleted_at IS NULL"
	rows, err := s.db.QueryContext(ctx, query, "")
	if err != nil {
		return nil, fmt.Errorf("list all studios: %w", err)
	}
	defer rows.Close()

	var studios []*domain.Studio
	for rows.Next() {
		st, err := scanStudio(rows, "")
		if err != nil {
			return nil, err
		}
		studios = append(studios, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.allLinks(ctx, studioTagLinks)
	if err != nil {
		return nil, err
	}
	for _, st := range studios {
		st.Tags = tagStubs(tags[st.Key()])
	}
	return studios, nil
}

func (s *Store) loadStudioRefs(ctx context.Context, studios []*domain.Studio) error {
	for _, st := range studios {
		tags, err := s.linkedKeys(ctx, s.db, studioTagLinks, st.Key())
		if err != nil {
			return err
		}
		st.Tags = tagStubs(tags)
	}
	return nil
}

// UpsertStudios writes a sync batch of studios and their tag links.
func (s *Store) UpsertStudios(ctx context.Context, studios []*domain.Studio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, st := range studios {
		createdAt, updatedAt := st.CreatedAt, st.UpdatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if updatedAt.IsZero() {
			updatedAt = now
		}

		var parentID, parentInstance sql.NullString
		if st.Parent != nil {
			parentID = nullString(st.Parent.ID)
			parentInstance = sql.NullString{String: st.Parent.InstanceID, Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO studios (id, instance_id, created_at, updated_at, deleted_at,
				name, details, rating, favorite, url, scene_count, image_count,
				parent_id, parent_instance_id)
			VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, instance_id) DO UPDATE SET
				updated_at = excluded.updated_at,
				deleted_at = NULL,
				name = excluded.name,
				details = excluded.details,
				rating = excluded.rating,
				favorite = excluded.favorite,
				url = excluded.url,
				scene_count = excluded.scene_count,
				image_count = excluded.image_count,
				parent_id = excluded.parent_id,
				parent_instance_id = excluded.parent_instance_id`,
			st.ID, st.InstanceID, formatTime(createdAt), formatTime(updatedAt),
			st.Name, st.Details, nullInt(st.Rating), boolToInt(st.Favorite), st.URL,
			st.SceneCount, st.ImageCount, parentID, parentInstance,
		)
		if err != nil {
			return fmt.Errorf("upsert studio %s: %w", st.ID, err)
		}

		if err := replaceLinks(ctx, tx, studioTagLinks, st.Key(), st.TagKeys()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
