package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

// UpsertOverlay writes a user's rating/favorite overlay for one entity.
// View count is preserved on update; IncrementViewCount owns that column.
func (s *Store) UpsertOverlay(ctx context.Context, o *domain.Overlay) error {
	o.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_overlays (user_id, entity_type, entity_id, entity_instance_id,
			rating, favorite, view_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, entity_type, entity_id, entity_instance_id) DO UPDATE SET
			rating = excluded.rating,
			favorite = excluded.favorite,
			updated_at = excluded.updated_at`,
		o.UserID, string(o.EntityType), o.EntityKey.ID, o.EntityKey.InstanceID,
		nullInt(o.Rating), boolToInt(o.Favorite), o.ViewCount, formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert overlay: %w", err)
	}
	return nil
}

// GetOverlay loads a user's overlay for one entity.
func (s *Store) GetOverlay(ctx context.Context, userID string, entityType domain.EntityType, key domain.EntityKey) (*domain.Overlay, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT rating, favorite, view_count, updated_at
		FROM user_overlays
		WHERE user_id = ? AND entity_type = ? AND entity_id = ? AND entity_instance_id = ?`,
		userID, string(entityType), key.ID, key.InstanceID)

	var (
		rating    sql.NullInt64
		favorite  int
		viewCount int
		updatedAt string
	)
	err := row.Scan(&rating, &favorite, &viewCount, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get overlay: %w", err)
	}

	at, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Overlay{
		UserID:     userID,
		EntityType: entityType,
		EntityKey:  key,
		Rating:     intPtr(rating),
		Favorite:   favorite != 0,
		ViewCount:  viewCount,
		UpdatedAt:  at,
	}, nil
}

// IncrementViewCount bumps the view counter, creating the overlay row on
// first view, and returns the new count.
func (s *Store) IncrementViewCount(ctx context.Context, userID string, entityType domain.EntityType, key domain.EntityKey) (int, error) {
	now := formatTime(time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_overlays (user_id, entity_type, entity_id, entity_instance_id,
			rating, favorite, view_count, updated_at)
		VALUES (?, ?, ?, ?, NULL, 0, 1, ?)
		ON CONFLICT(user_id, entity_type, entity_id, entity_instance_id) DO UPDATE SET
			view_count = view_count + 1,
			updated_at = excluded.updated_at`,
		userID, string(entityType), key.ID, key.InstanceID, now,
	)
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}

	var count int
	err = s.db.QueryRowContext(ctx, `
		SELECT view_count FROM user_overlays
		WHERE user_id = ? AND entity_type = ? AND entity_id = ? AND entity_instance_id = ?`,
		userID, string(entityType), key.ID, key.InstanceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("read view count: %w", err)
	}
	return count, nil
}
