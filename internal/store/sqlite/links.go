package sqlite

import (
	"context"
	"fmt"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// linkSpec names the columns of one side-to-side link table.
type linkSpec struct {
	table             string
	parentIDCol       string
	parentInstanceCol string
	entityIDCol       string
	entityInstanceCol string
	orderBy           string // optional ordinal column
}

// linkedKeys loads the related entity keys for one parent row.
func (s *Store) linkedKeys(ctx context.Context, q querier, spec linkSpec, parent domain.EntityKey) ([]domain.EntityKey, error) {
	query := "SELECT " + spec.entityIDCol + ", " + spec.entityInstanceCol +
		" FROM " + spec.table +
		" WHERE " + spec.parentIDCol + " = ? AND " + spec.parentInstanceCol + " = ?"
	if spec.orderBy != "" {
		query += " ORDER BY " + spec.orderBy + " ASC"
	}

	rows, err := q.QueryContext(ctx, query, parent.ID, parent.InstanceID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.table, err)
	}
	defer rows.Close()

	var keys []domain.EntityKey
	for rows.Next() {
		var k domain.EntityKey
		if err := rows.Scan(&k.ID, &k.InstanceID); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// allLinks loads an entire link table grouped by parent key, for library
// snapshot loads where per-row queries would not scale.
func (s *Store) allLinks(ctx context.Context, spec linkSpec) (map[domain.EntityKey][]domain.EntityKey, error) {
	query := "SELECT " + spec.parentIDCol + ", " + spec.parentInstanceCol + ", " +
		spec.entityIDCol + ", " + spec.entityInstanceCol + " FROM " + spec.table
	if spec.orderBy != "" {
		query += " ORDER BY " + spec.orderBy + " ASC"
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.table, err)
	}
	defer rows.Close()

	links := make(map[domain.EntityKey][]domain.EntityKey)
	for rows.Next() {
		var parent, entity domain.EntityKey
		if err := rows.Scan(&parent.ID, &parent.InstanceID, &entity.ID, &entity.InstanceID); err != nil {
			return nil, err
		}
		links[parent] = append(links[parent], entity)
	}
	return links, rows.Err()
}

// replaceLinks rewrites a parent row's link rows inside a transaction.
func replaceLinks(ctx context.Context, q querier, spec linkSpec, parent domain.EntityKey, entities []domain.EntityKey) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM "+spec.table+" WHERE "+spec.parentIDCol+" = ? AND "+spec.parentInstanceCol+" = ?",
		parent.ID, parent.InstanceID)
	if err != nil {
		return fmt.Errorf("clear %s: %w", spec.table, err)
	}

	for i, entity := range entities {
		var insert string
		args := []any{parent.ID, parent.InstanceID, entity.ID, entity.InstanceID}
		if spec.orderBy != "" {
			insert = "INSERT OR IGNORE INTO " + spec.table +
				" (" + spec.parentIDCol + ", " + spec.parentInstanceCol + ", " +
				spec.entityIDCol + ", " + spec.entityInstanceCol + ", " + spec.orderBy + ")" +
				" VALUES (?, ?, ?, ?, ?)"
			args = append(args, i)
		} else {
			insert = "INSERT OR IGNORE INTO " + spec.table +
				" (" + spec.parentIDCol + ", " + spec.parentInstanceCol + ", " +
				spec.entityIDCol + ", " + spec.entityInstanceCol + ")" +
				" VALUES (?, ?, ?, ?)"
		}
		if _, err := q.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert %s: %w", spec.table, err)
		}
	}
	return nil
}

// Link table specs shared by load and upsert paths.
var (
	sceneTagLinks = linkSpec{
		table: "scene_tags", parentIDCol: "scene_id", parentInstanceCol: "scene_instance_id",
		entityIDCol: "tag_id", entityInstanceCol: "tag_instance_id",
	}
	scenePerformerLinks = linkSpec{
		table: "scene_performers", parentIDCol: "scene_id", parentInstanceCol: "scene_instance_id",
		entityIDCol: "performer_id", entityInstanceCol: "performer_instance_id",
	}
	sceneGalleryLinks = linkSpec{
		table: "scene_galleries", parentIDCol: "scene_id", parentInstanceCol: "scene_instance_id",
		entityIDCol: "gallery_id", entityInstanceCol: "gallery_instance_id",
	}
	sceneGroupLinks = linkSpec{
		table: "group_scenes", parentIDCol: "scene_id", parentInstanceCol: "scene_instance_id",
		entityIDCol: "group_id", entityInstanceCol: "group_instance_id", orderBy: "position",
	}
	groupTagLinks = linkSpec{
		table: "group_tags", parentIDCol: "group_id", parentInstanceCol: "group_instance_id",
		entityIDCol: "tag_id", entityInstanceCol: "tag_instance_id",
	}
	groupContainingLinks = linkSpec{
		table: "group_containing", parentIDCol: "group_id", parentInstanceCol: "group_instance_id",
		entityIDCol: "containing_id", entityInstanceCol: "containing_instance_id",
	}
	galleryTagLinks = linkSpec{
		table: "gallery_tags", parentIDCol: "gallery_id", parentInstanceCol: "gallery_instance_id",
		entityIDCol: "tag_id", entityInstanceCol: "tag_instance_id",
	}
	galleryPerformerLinks = linkSpec{
		table: "gallery_performers", parentIDCol: "gallery_id", parentInstanceCol: "gallery_instance_id",
		entityIDCol: "performer_id", entityInstanceCol: "performer_instance_id",
	}
	gallerySceneLinks = linkSpec{
		table: "scene_galleries", parentIDCol: "gallery_id", parentInstanceCol: "gallery_instance_id",
		entityIDCol: "scene_id", entityInstanceCol: "scene_instance_id",
	}
	imageTagLinks = linkSpec{
		table: "image_tags", parentIDCol: "image_id", parentInstanceCol: "image_instance_id",
		entityIDCol: "tag_id", entityInstanceCol: "tag_instance_id",
	}
	imagePerformerLinks = linkSpec{
		table: "image_performers", parentIDCol: "image_id", parentInstanceCol: "image_instance_id",
		entityIDCol: "performer_id", entityInstanceCol: "performer_instance_id",
	}
	imageGalleryLinks = linkSpec{
		table: "image_galleries", parentIDCol: "image_id", parentInstanceCol: "image_instance_id",
		entityIDCol: "gallery_id", entityInstanceCol: "gallery_instance_id",
	}
	performerTagLinks = linkSpec{
		table: "performer_tags", parentIDCol: "performer_id", parentInstanceCol: "performer_instance_id",
		entityIDCol: "tag_id", entityInstanceCol: "tag_instance_id",
	}
	studioTagLinks = linkSpec{
		table: "studio_tags", parentIDCol: "studio_id", parentInstanceCol: "studio_instance_id",
		entityIDCol: "tag_id", entityInstanceCol: "tag_instance_id",
	}
	tagParentLinks = linkSpec{
		table: "tag_parents", parentIDCol: "tag_id", parentInstanceCol: "tag_instance_id",
		entityIDCol: "parent_id", entityInstanceCol: "parent_instance_id",
	}
)
