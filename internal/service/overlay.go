package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
	"github.com/mirrorboxapp/mirrorbox-server/internal/validation"
)

// OverlayService manages per-user entity overlays: private ratings,
// favorites and view counts layered over the shared mirror.
type OverlayService struct {
	overlays  store.OverlayStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewOverlayService creates a new overlay service.
func NewOverlayService(overlays store.OverlayStore, validator *validation.Validator, logger *slog.Logger) *OverlayService {
	return &OverlayService{
		overlays:  overlays,
		validator: validator,
		logger:    logger,
	}
}

// OverlayInput carries the user-editable overlay fields.
type OverlayInput struct {
	Rating   *int `json:"rating" validate:"omitempty,gte=0,lte=100"`
	Favorite bool `json:"favorite"`
}

// SetOverlay writes the user's rating and favorite flag for one entity.
// The view count is store-managed and survives the write.
func (s *OverlayService) SetOverlay(ctx context.Context, userID string, entityType domain.EntityType, key domain.EntityKey, input OverlayInput) (*domain.Overlay, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	o := &domain.Overlay{
		UserID:     userID,
		EntityType: entityType,
		EntityKey:  key,
		Rating:     input.Rating,
		Favorite:   input.Favorite,
		UpdatedAt:  time.Now(),
	}

	if err := s.overlays.UpsertOverlay(ctx, o); err != nil {
		return nil, fmt.Errorf("upsert overlay: %w", err)
	}

	return s.overlays.GetOverlay(ctx, userID, entityType, key)
}

// GetOverlay returns the user's overlay for one entity.
func (s *OverlayService) GetOverlay(ctx context.Context, userID string, entityType domain.EntityType, key domain.EntityKey) (*domain.Overlay, error) {
	return s.overlays.GetOverlay(ctx, userID, entityType, key)
}

// RecordView bumps the user's view count for one entity and returns the new
// count.
func (s *OverlayService) RecordView(ctx context.Context, userID string, entityType domain.EntityType, key domain.EntityKey) (int, error) {
	count, err := s.overlays.IncrementViewCount(ctx, userID, entityType, key)
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return count, nil
}
