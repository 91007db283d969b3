package sqlite

import (
	"context"
	"fmt"

	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
)

// ListTagLineage returns every live tag's bare ID with its parent IDs, for
// hierarchy expansion. Lineage works on bare IDs: a criterion value without
// an instance qualifier expands across all sources.
func (s *Store) ListTagLineage(ctx context.Context) ([]filter.Lineage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, tp.parent_id
		FROM tags t
		LEFT JOIN tag_parents tp ON tp.tag_id = t.id AND tp.tag_instance_id = t.instance_id
		WHERE t.deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("query tag lineage: %w", err)
	}
	defer rows.Close()

	return collectLineage(rows)
}

// ListStudioLineage returns every live studio's bare ID with its parent ID.
func (s *Store) ListStudioLineage(ctx context.Context) ([]filter.Lineage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id
		FROM studios
		WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("query studio lineage: %w", err)
	}
	defer rows.Close()

	return collectLineage(rows)
}

type lineageRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectLineage(rows lineageRows) ([]filter.Lineage, error) {
	byID := make(map[string]*filter.Lineage)
	var order []string
	for rows.Next() {
		var id string
		var parentID *string
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, err
		}
		entry, ok := byID[id]
		if !ok {
			entry = &filter.Lineage{ID: id}
			byID[id] = entry
			order = append(order, id)
		}
		if parentID != nil && *parentID != "" {
			entry.ParentIDs = append(entry.ParentIDs, *parentID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineage := make([]filter.Lineage, 0, len(order))
	for _, id := range order {
		lineage = append(lineage, *byID[id])
	}
	return lineage, nil
}
