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

const groupColumns = `g.id, g.instance_id, g.created_at, g.updated_at, g.deleted_at,
	g.name, g.synopsis, g.date, g.rating, g.scene_count,
	g.studio_id, g.studio_instance_id`

func scanGroup(scanner interface{ Scan(dest ...any) error }, userID string) (*domain.Group, error) {
	var g domain.Group

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		date      sql.NullString
		rating    sql.NullInt64

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
		&g.Name,
		&g.Synopsis,
		&date,
		&rating,
		&g.SceneCount,
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
	g.Studio = studioStub(studioID.String, studioInstance.String)

	g.Overlay, err = scanOverlay(userID, domain.EntityGroup, g.Key(), oRating, oFavorite, oViewCount, oUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

var (
	groupTagsJunction = filter.JunctionSpec{
		Table: "group_tags", ParentIDColumn: "group_id", ParentInstanceCol: "group_instance_id",
		EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
		ParentIDExpr: "g.id", ParentInstanceExpr: "g.instance_id",
	}
	groupScenesJunction = filter.JunctionSpec{
		Table: "group_scenes", ParentIDColumn: "group_id", ParentInstanceCol: "group_instance_id",
		EntityIDColumn: "scene_id", EntityInstanceCol: "scene_instance_id",
		ParentIDExpr: "g.id", ParentInstanceExpr: "g.instance_id",
	}
	groupContainingJunction = filter.JunctionSpec{
		Table: "group_containing", ParentIDColumn: "group_id", ParentInstanceCol: "group_instance_id",
		EntityIDColumn: "containing_id", EntityInstanceCol: "containing_instance_id",
		ParentIDExpr: "g.id", ParentInstanceExpr: "g.instance_id",
	}
	groupStudioDirect = filter.DirectSpec{IDColumn: "g.studio_id", InstanceColumn: "g.studio_instance_id"}
)

var groupSortColumns = map[string]string{
	"":            "g.name",
	"name":        "g.name",
	"date":        "g.date",
	"rating":      "g.rating",
	"scene_count": "g.scene_count",
	"created_at":  "g.created_at",
	"updated_at":  "g.updated_at",
	"my_rating":   "o.rating",
}

// ListGroups returns one page of groups matching the filter.
func (s *Store) ListGroups(ctx context.Context, userID string, f store.GroupFilter, params store.ListParams) (*store.ListResult[*domain.Group], error) {
	params.Normalize()

	conds := []filter.Clause{
		{SQL: "g.deleted_at IS NULL"},
		filter.Text(f.Name, "g.name"),
		filter.Text(f.Synopsis, "g.synopsis"),
		filter.Date(f.Date, "g.date"),
		filter.Numeric(f.Rating, "g.rating"),
		filter.Numeric(f.MyRating, "o.rating"),
		filter.Favorite(f.MyFavorite, "o.favorite"),
		filter.Junction(f.Tags, groupTagsJunction),
		filter.Junction(f.Scenes, groupScenesJunction),
		filter.Junction(f.Containing, groupContainingJunction),
		filter.Direct(f.Studios, groupStudioDirect),
	}
	if params.ApplyExclusions {
		ex, err := s.userExclusions(ctx, userID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, groupExclusions(ex)...)
	}

	baseFrom := "groups g" + overlayJoin("g", domain.EntityGroup)
	order := orderClause("g", params, groupSortColumns)

	result, err := queryList(ctx, s.db, groupColumns+", "+overlayColumns, baseFrom, []any{userID},
		filter.And(conds...), order, params,
		func(rows *sql.Rows) (*domain.Group, error) { return scanGroup(rows, userID) })
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if err := s.loadGroupRefs(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

// GetGroupsByIDs returns the groups for the given keys in request order.
func (s *Store) GetGroupsByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Group, error) {
	groups := make([]*domain.Group, 0, len(keys))
	for _, key := range keys {
		query := "SELECT " + groupColumns + ", " + overlayColumns +
			" FROM groups g" + overlayJoin("g", domain.EntityGroup) +
			" WHERE g.deleted_at IS NULL AND g.id = ?"
		args := []any{userID, key.ID}
		if !key.Wildcard() {
			query += " AND g.instance_id = ?"
			args = append(args, key.InstanceID)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("get groups: %w", err)
		}
		for rows.Next() {
			g, err := scanGroup(rows, userID)
			if err != nil {
				rows.Close()
				return nil, err
			}
			groups = append(groups, g)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	if err := s.loadGroupRefs(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListAllGroups loads every live group with tag and containment stubs.
func (s *Store) ListAllGroups(ctx context.Context) ([]*domain.Group, error) {
	query := "SELECT " + groupColumns + ", " + overlayColumns +
		" FROM groups g" + overlayJoin("g", domain.EntityGroup) +
		" WHERE g.deleted_at IS NULL"
	rows, err := s.db.QueryContext(ctx, query, "")
	if err != nil {
		return nil, fmt.Errorf("list all groups: %w", err)
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		g, err := scanGroup(rows, "")
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.allLinks(ctx, groupTagLinks)
	if err != nil {
		return nil, err
	}
	containing, err := s.allLinks(ctx, groupContainingLinks)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		key := g.Key()
		g.Tags = tagStubs(tags[key])
		g.Containing = groupStubs(containing[key])
	}
	return groups, nil
}

func (s *Store) loadGroupRefs(ctx context.Context, groups []*domain.Group) error {
	for _, g := range groups {
		key := g.Key()

		tags, err := s.linkedKeys(ctx, s.db, groupTagLinks, key)
		if err != nil {
			return err
		}
		containing, err := s.linkedKeys(ctx, s.db, groupContainingLinks, key)
		if err != nil {
			return err
		}

		g.Tags = tagStubs(tags)
		g.Containing = groupStubs(containing)
	}
	return nil
}

// UpsertGroups writes a sync batch of groups and their link rows.
func (s *Store) UpsertGroups(ctx context.Context, groups []*domain.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, g := range groups {
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
			INSERT INTO groups (id, instance_id, created_at, updated_at, deleted_at,
				name, synopsis, date, rating, scene_count, studio_id, studio_instance_id)
			VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, instance_id) DO UPDATE SET
				updated_at = excluded.updated_at,
				deleted_at = NULL,
				name = excluded.name,
				synopsis = excluded.synopsis,
				date = excluded.date,
				rating = excluded.rating,
				scene_count = excluded.scene_count,
				studio_id = excluded.studio_id,
				studio_instance_id = excluded.studio_instance_id`,
			g.ID, g.InstanceID, formatTime(createdAt), formatTime(updatedAt),
			g.Name, g.Synopsis, nullDateString(g.Date), nullInt(g.Rating),
			g.SceneCount, studioID, studioInstance,
		)
		if err != nil {
			return fmt.Errorf("upsert group %s: %w", g.ID, err)
		}

		key := g.Key()
		if err := replaceLinks(ctx, tx, groupTagLinks, key, g.TagKeys()); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, groupContainingLinks, key, g.ContainingKeys()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
