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

// sceneColumns is the ordered list of columns selected in scene queries.
// Must match the scan order in scanScene.
const sceneColumns = `s.id, s.instance_id, s.created_at, s.updated_at, s.deleted_at,
	s.title, s.details, s.date, s.rating, s.organized, s.duration, s.url,
	s.studio_id, s.studio_instance_id`

// scanScene scans a scene row plus the joined overlay columns.
func scanScene(scanner interface{ Scan(dest ...any) error }, userID string) (*domain.Scene, error) {
	var sc domain.Scene

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
		&sc.ID,
		&sc.InstanceID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&sc.Title,
		&sc.Details,
		&date,
		&rating,
		&organized,
		&sc.Duration,
		&sc.URL,
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

	sc.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sc.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	sc.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	sc.Date, err = parseNullableDate(date)
	if err != nil {
		return nil, err
	}

	sc.Rating = intPtr(rating)
	sc.Organized = organized != 0
	sc.Studio = studioStub(studioID.String, studioInstance.String)

	sc.Overlay, err = scanOverlay(userID, domain.EntityScene, sc.Key(), oRating, oFavorite, oViewCount, oUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

var (
	sceneTagsJunction = filter.JunctionSpec{
		Table: "scene_tags", ParentIDColumn: "scene_id", ParentInstanceCol: "scene_instance_id",
		EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
		ParentIDExpr: "s.id", ParentInstanceExpr: "s.instance_id",
	}
	scenePerformersJunction = filter.JunctionSpec{
		Table: "scene_performers", ParentIDColumn: "scene_id", ParentInstanceCol: "scene_instance_id",
		EntityIDColumn: "performer_id", EntityInstanceCol: "performer_instance_id",
		ParentIDExpr: "s.id", ParentInstanceExpr: "s.instance_id",
	}
	scenePerformerTagsJunction = filter.JunctionSpec{
		Table: "scene_performer_tags", ParentIDColumn: "scene_id", ParentInstanceCol: "scene_instance_id",
		EntityIDColumn: "tag_id", EntityInstanceCol: "tag_instance_id",
		ParentIDExpr: "s.id", ParentInstanceExpr: "s.instance_id",
	}
	sceneGroupsJunction = filter.JunctionSpec{
		Table: "group_scenes", ParentIDColumn: "scene_id", ParentInstanceCol: "scene_instance_id",
		EntityIDColumn: "group_id", EntityInstanceCol: "group_instance_id",
		ParentIDExpr: "s.id", ParentInstanceExpr: "s.instance_id",
	}
	sceneGalleriesJunction = filter.JunctionSpec{
		Table: "scene_galleries", ParentIDColumn: "scene_id", ParentInstanceCol: "scene_instance_id",
		EntityIDColumn: "gallery_id", EntityInstanceCol: "gallery_instance_id",
		ParentIDExpr: "s.id", ParentInstanceExpr: "s.instance_id",
	}
	sceneStudioDirect = filter.DirectSpec{IDColumn: "s.studio_id", InstanceColumn: "s.studio_instance_id"}
)

var sceneSortColumns = map[string]string{
	"":           "s.title",
	"title":      "s.title",
	"date":       "s.date",
	"rating":     "s.rating",
	"duration":   "s.duration",
	"created_at": "s.created_at",
	"updated_at": "s.updated_at",
	"my_rating":  "o.rating",
	"view_count": "COALESCE(o.view_count, 0)",
}

// ListScenes returns one page of scenes matching the filter, with the
// requesting user's overlay merged in.
func (s *Store) ListScenes(ctx context.Context, userID string, f store.SceneFilter, params store.ListParams) (*store.ListResult[*domain.Scene], error) {
	params.Normalize()

	conds := []filter.Clause{
		{SQL: "s.deleted_at IS NULL"},
		filter.Text(f.Title, "s.title"),
		filter.Text(f.Details, "s.details"),
		filter.Text(f.URL, "s.url"),
		filter.Date(f.Date, "s.date"),
		filter.Numeric(f.Rating, "s.rating"),
		filter.Numeric(f.Duration, "s.duration"),
		filter.Numeric(f.MyRating, "o.rating"),
		filter.Numeric(f.ViewCount, "COALESCE(o.view_count, 0)"),
		filter.Favorite(f.MyFavorite, "o.favorite"),
		boolClause(f.Organized, "s.organized"),
		filter.Junction(f.Tags, sceneTagsJunction),
		filter.Junction(f.Performers, scenePerformersJunction),
		filter.Junction(f.PerformerTags, scenePerformerTagsJunction),
		filter.Junction(f.Groups, sceneGroupsJunction),
		filter.Junction(f.Galleries, sceneGalleriesJunction),
		filter.Direct(f.Studios, sceneStudioDirect),
	}
	if params.ApplyExclusions {
		ex, err := s.userExclusions(ctx, userID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, sceneExclusions(ex)...)
	}

	baseFrom := "scenes s" + overlayJoin("s", domain.EntityScene)
	order := orderClause("s", params, sceneSortColumns)

	result, err := queryList(ctx, s.db, sceneColumns+", "+overlayColumns, baseFrom, []any{userID},
		filter.And(conds...), order, params,
		func(rows *sql.Rows) (*domain.Scene, error) { return scanScene(rows, userID) })
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	if err := s.loadSceneRefs(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

// GetScenesByIDs returns the scenes for the given keys in request order,
// skipping unknown keys. Wildcard-instance keys match every source instance.
func (s *Store) GetScenesByIDs(ctx context.Context, userID string, keys []domain.EntityKey) ([]*domain.Scene, error) {
	scenes := make([]*domain.Scene, 0, len(keys))
	for _, key := range keys {
		query := "SELECT " + sceneColumns + ", " + overlayColumns +
			" FROM scenes s" + overlayJoin("s", domain.EntityScene) +
			" WHERE s.deleted_at IS NULL AND s.id = ?"
		args := []any{userID, key.ID}
		if !key.Wildcard() {
			query += " AND s.instance_id = ?"
			args = append(args, key.InstanceID)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("get scenes: %w", err)
		}
		for rows.Next() {
			sc, err := scanScene(rows, userID)
			if err != nil {
				rows.Close()
				return nil, err
			}
			scenes = append(scenes, sc)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	if err := s.loadSceneRefs(ctx, scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// ListAllScenes loads every live scene with its relationship stubs, for
// library materialization.
func (s *Store) ListAllScenes(ctx context.Context) ([]*domain.Scene, error) {
	query := "SELECT " + sceneColumns + ", " + overlayColumns +
		" FROM scenes s" + overlayJoin("s", domain.EntityScene) +
		" WHERE s.deleted_at IS NULL"
	rows, err := s.db.QueryContext(ctx, query, "")
	if err != nil {
		return nil, fmt.Errorf("list all scenes: %w", err)
	}
	defer rows.Close()

	var scenes []*domain.Scene
	for rows.Next() {
		sc, err := scanScene(rows, "")
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.allLinks(ctx, sceneTagLinks)
	if err != nil {
		return nil, err
	}
	performers, err := s.allLinks(ctx, scenePerformerLinks)
	if err != nil {
		return nil, err
	}
	groups, err := s.allLinks(ctx, sceneGroupLinks)
	if err != nil {
		return nil, err
	}
	galleries, err := s.allLinks(ctx, sceneGalleryLinks)
	if err != nil {
		return nil, err
	}
	for _, sc := range scenes {
		key := sc.Key()
		sc.Tags = tagStubs(tags[key])
		sc.Performers = performerStubs(performers[key])
		sc.Groups = groupStubs(groups[key])
		sc.Galleries = galleryStubs(galleries[key])
	}
	return scenes, nil
}

// loadSceneRefs attaches relationship stubs to a page of scenes.
func (s *Store) loadSceneRefs(ctx context.Context, scenes []*domain.Scene) error {
	for _, sc := range scenes {
		key := sc.Key()

		tags, err := s.linkedKeys(ctx, s.db, sceneTagLinks, key)
		if err != nil {
			return err
		}
		performers, err := s.linkedKeys(ctx, s.db, scenePerformerLinks, key)
		if err != nil {
			return err
		}
		groups, err := s.linkedKeys(ctx, s.db, sceneGroupLinks, key)
		if err != nil {
			return err
		}
		galleries, err := s.linkedKeys(ctx, s.db, sceneGalleryLinks, key)
		if err != nil {
			return err
		}

		sc.Tags = tagStubs(tags)
		sc.Performers = performerStubs(performers)
		sc.Groups = groupStubs(groups)
		sc.Galleries = galleryStubs(galleries)
	}
	return nil
}

// UpsertScenes writes a sync batch of scenes and their link rows. Re-synced
// rows are revived (deleted_at cleared); created_at survives updates.
func (s *Store) UpsertScenes(ctx context.Context, scenes []*domain.Scene) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, sc := range scenes {
		createdAt, updatedAt := sc.CreatedAt, sc.UpdatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if updatedAt.IsZero() {
			updatedAt = now
		}

		var studioID, studioInstance sql.NullString
		if sc.Studio != nil {
			studioID = nullString(sc.Studio.ID)
			studioInstance = sql.NullString{String: sc.Studio.InstanceID, Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO scenes (id, instance_id, created_at, updated_at, deleted_at,
				title, details, date, rating, organized, duration, url,
				studio_id, studio_instance_id)
			VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, instance_id) DO UPDATE SET
				updated_at = excluded.updated_at,
				deleted_at = NULL,
				title = excluded.title,
				details = excluded.details,
				date = excluded.date,
				rating = excluded.rating,
				organized = excluded.organized,
				duration = excluded.duration,
				url = excluded.url,
				studio_id = excluded.studio_id,
				studio_instance_id = excluded.studio_instance_id`,
			sc.ID, sc.InstanceID, formatTime(createdAt), formatTime(updatedAt),
			sc.Title, sc.Details, nullDateString(sc.Date), nullInt(sc.Rating),
			boolToInt(sc.Organized), sc.Duration, sc.URL,
			studioID, studioInstance,
		)
		if err != nil {
			return fmt.Errorf("upsert scene %s: %w", sc.ID, err)
		}

		key := sc.Key()
		if err := replaceLinks(ctx, tx, sceneTagLinks, key, sc.TagKeys()); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, scenePerformerLinks, key, sc.PerformerKeys()); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, sceneGroupWriteLinks, key, sc.GroupKeys()); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, sceneGalleryLinks, key, sc.GalleryKeys()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// sceneGroupWriteLinks omits the ordinal: scene order within a group is only
// known on the group side of the sync feed.
var sceneGroupWriteLinks = linkSpec{
	table: "group_scenes", parentIDCol: "scene_id", parentInstanceCol: "scene_instance_id",
	entityIDCol: "group_id", entityInstanceCol: "group_instance_id",
}
