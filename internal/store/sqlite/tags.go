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

const tagColumns = `t.id, t.instance_id, t.created_at, t.updated_at, t.deleted_at,
	t.name, t.description, t.favorite, t.scene_count, t.image_count`

func scanTag(scanner interface{ Scan(dest ...any) error }, userID string) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		favorite  int

		oRating    sql.NullInt64
		oFavorite  sql.NullInt64
		oViewCount sql.NullInt64
		oUpdatedAt sql.NullString
	)

	err := scanner.Scan(
		&t.ID,
		&t.InstanceID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&t.Name,
		&t.Description,
		&favorite,
		&t.SceneCount,
		&t.ImageCount,
		&oRating,
		&oFavorite,
		&oViewCount,
		&oUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	t.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	t.Favorite = favorite != 0

	t.Overlay, err = scanOverlay(userID, domain.EntityTag, t.Key(), oRating, oFavorite, oViewCount, oUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var tagParentsJunction = filter.JunctionSpec{
	Table: "tag_parents", ParentIDColumn: "tag_id", ParentInstanceCol: "tag_instance_id",
	EntityIDColumn: "parent_id", EntityInstanceCol: "parent_instance_id",
	ParentIDExpr: "t.id", ParentInstanceExpr: "t.instance_id",
}

var tagSortColumns = map[string]string{
	"":            "t.name",
	"name":        "t.name",
	"scene_count": "t.scene_count",
	"created_at":  "t.created_at",
	"updated_at":  "t.updated_at",
}

// ListTags returns one page of tags matching the filter.
func (s *Store) ListTags(ctx context.Context, userID string, f store.TagFilter, params store.ListParams) (*store.ListResult[*domain.Tag], error) {
	params.Normalize()

	conds := []filter.Clause{
		{SQL: "t.deleted_at IS NULL"},
		filter.Text(f.Name, "t.name"),
		filter.Text(f.Description, "t.description"),
		filter.Favorite(f.MyFavorite, "o.favorite"),
		filter.Junction(f.Parents, tagParentsJunction),
	}
	if params.ApplyExclusions {
		ex, err := s.userExclusions(ctx, userID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, tagExclusions(ex)...)
	}

	baseFrom := "tags t" + overlayJoin("t", domain.EntityTag)
	order := orderClause("t", params, tagSortColumns)

	result, err := queryList(ctx, s.db, tagColumns+", "+overlayColumns, baseFrom, []any{userID},
		filter.And(conds...), order, params,
		func(rows *sql.Rows) (*domain.Tag, error) { return scanTag(rows, userID) })
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if err := s.loadTagRefs(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTagsByIDs returns the tags for the given keys in request order.
func (s *Store) GetTagsByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0, len(keys))
	for _, key := range keys {
		query := "SELECT " + tagColumns + ", " + overlayColumns +
			" FROM tags t" + overlayJoin("t", domain.EntityTag) +
			" WHERE t.deleted_at IS NULL AND t.id = ?"
		args := []any{userID, key.ID}
		if !key.Wildcard() {
			query += " AND t.instance_id = ?"
			args = append(args, key.InstanceID)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("get tags: %w", err)
		}
		for rows.Next() {
			t, err := scanTag(rows, userID)
			if err != nil {
				rows.Close()
				return nil, err
			}
			tags = append(tags, t)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	if err := s.loadTagRefs(ctx, tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// ListAllTags loads every live tag with parent stubs.
func (s *Store) ListAllTags(ctx context.Context) ([]*domain.Tag, error) {
	query := "SELECT " + tagColumns + ", " + overlayColumns +
		" FROM tags t" + overlayJoin("t", domain.EntityTag) +
		" WHERE t.deleted_at IS NULL"
	rows, err := s.db.QueryContext(ctx, query, "")
	if err != nil {
		return nil, fmt.Errorf("list all tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows, "")
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	parents, err := s.allLinks(ctx, tagParentLinks)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		t.Parents = tagStubs(parents[t.Key()])
	}
	return tags, nil
}

func (s *Store) loadTagRefs(ctx context.Context, tags []*domain.Tag) error {
	for _, t := range tags {
		parents, err := s.linkedKeys(ctx, s.db, tagParentLinks, t.Key())
		if err != nil {
			return err
		}
		t.Parents = tagStubs(parents)
	}
	return nil
}

// UpsertTags writes a sync batch of tags and their parent links.
func (s *Store) UpsertTags(ctx context.Context, tags []*domain.Tag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, t := range tags {
		createdAt, updatedAt := t.CreatedAt, t.UpdatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if updatedAt.IsZero() {
			updatedAt = now
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO tags (id, instance_id, created_at, updated_at, deleted_at,
				name, description, favorite, scene_count, image_count)
			VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?)
			ON CONFLICT(id, instance_id) DO UPDATE SET
				updated_at = excluded.updated_at,
				deleted_at = NULL,
				name = excluded.name,
				description = excluded.description,
				favorite = excluded.favorite,
				scene_count = excluded.scene_count,
				image_count = excluded.image_count`,
			t.ID, t.InstanceID, formatTime(createdAt), formatTime(updatedAt),
			t.Name, t.Description, boolToInt(t.Favorite), t.SceneCount, t.ImageCount,
		)
		if err != nil {
			return fmt.Errorf("upsert tag %s: %w", t.ID, err)
		}

		if err := replaceLinks(ctx, tx, tagParentLinks, t.Key(), t.ParentKeys()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
