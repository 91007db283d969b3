package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

var entityTables = map[domain.EntityType]string{
	domain.EntityScene:     "scenes",
	domain.EntityImage:     "images",
	domain.EntityGallery:   "galleries",
	domain.EntityPerformer: "performers",
	domain.EntityStudio:    "studios",
	domain.EntityTag:       "tags",
	domain.EntityGroup:     "groups",
}

// SoftDeleteMissing marks entities of one source instance as deleted when
// they were absent from the latest sync. Link rows and user overlays are kept
// so a reappearing entity comes back intact. Returns the number of rows
// marked.
func (s *Store) SoftDeleteMissing(ctx context.Context, entityType domain.EntityType, instanceID string, seen []domain.EntityKey) (int, error) {
	table, ok := entityTables[entityType]
	if !ok {
		return 0, store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown entity type %q", entityType))
	}

	args := []any{formatTime(time.Now()), instanceID}
	query := "UPDATE " + table + " SET deleted_at = ? WHERE instance_id = ? AND deleted_at IS NULL"

	var ids []string
	for _, key := range seen {
		if key.InstanceID == instanceID {
			ids = append(ids, key.ID)
		}
	}
	if len(ids) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
		query += " AND id NOT IN (" + marks + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("soft delete %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
