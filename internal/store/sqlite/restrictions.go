package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

const restrictionColumns = `id, user_id, entity_type, mode, entity_ids, restrict_empty,
	created_at, updated_at`

func scanRestriction(scanner interface{ Scan(dest ...any) error }) (*domain.ContentRestriction, error) {
	var r domain.ContentRestriction

	var (
		entityIDs     string
		restrictEmpty int
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&r.ID,
		&r.UserID,
		(*string)(&r.EntityType),
		(*string)(&r.Mode),
		&entityIDs,
		&restrictEmpty,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(entityIDs), &r.EntityIDs); err != nil {
		return nil, fmt.Errorf("unmarshal entity_ids: %w", err)
	}
	r.RestrictEmpty = restrictEmpty != 0

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRestriction stores a new restriction rule.
func (s *Store) CreateRestriction(ctx context.Context, r *domain.ContentRestriction) error {
	entityIDs, err := json.Marshal(r.EntityIDs)
	if err != nil {
		return fmt.Errorf("marshal entity_ids: %w", err)
	}

	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO content_restrictions (id, user_id, entity_type, mode, entity_ids,
			restrict_empty, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, string(r.EntityType), string(r.Mode), string(entityIDs),
		boolToInt(r.RestrictEmpty), formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert restriction: %w", err)
	}
	return nil
}

// UpdateRestriction rewrites an existing rule. The rule must belong to the
// user on the incoming value.
func (s *Store) UpdateRestriction(ctx context.Context, r *domain.ContentRestriction) error {
	entityIDs, err := json.Marshal(r.EntityIDs)
	if err != nil {
		return fmt.Errorf("marshal entity_ids: %w", err)
	}
	r.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE content_restrictions
		SET entity_type = ?, mode = ?, entity_ids = ?, restrict_empty = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(r.EntityType), string(r.Mode), string(entityIDs),
		boolToInt(r.RestrictEmpty), formatTime(r.UpdatedAt),
		r.ID, r.UserID,
	)
	if err != nil {
		return fmt.Errorf("update restriction: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteRestriction removes a rule.
func (s *Store) DeleteRestriction(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM content_restrictions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete restriction: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetRestriction loads one rule.
func (s *Store) GetRestriction(ctx context.Context, userID, id string) (*domain.ContentRestriction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+restrictionColumns+" FROM content_restrictions WHERE id = ? AND user_id = ?",
		id, userID)
	r, err := scanRestriction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restriction: %w", err)
	}
	return r, nil
}

// ListRestrictionsForUser returns the user's rules, INCLUDE rules first so
// evaluation order matches storage order.
func (s *Store) ListRestrictionsForUser(ctx context.Context, userID string) ([]*domain.ContentRestriction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+restrictionColumns+`
		FROM content_restrictions
		WHERE user_id = ?
		ORDER BY CASE mode WHEN 'INCLUDE' THEN 0 ELSE 1 END, created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list restrictions: %w", err)
	}
	defer rows.Close()

	var restrictions []*domain.ContentRestriction
	for rows.Next() {
		r, err := scanRestriction(rows)
		if err != nil {
			return nil, err
		}
		restrictions = append(restrictions, r)
	}
	return restrictions, rows.Err()
}
