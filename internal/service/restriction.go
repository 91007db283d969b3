package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/errors"
	"github.com/mirrorboxapp/mirrorbox-server/internal/id"
	"github.com/mirrorboxapp/mirrorbox-server/internal/restriction"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
	"github.com/mirrorboxapp/mirrorbox-server/internal/validation"
)

// RestrictionService manages per-user content restriction rules and computes
// the restricted library view.
type RestrictionService struct {
	rules     store.RestrictionStore
	library   store.LibraryReader
	filter    *restriction.Service
	pruner    *restriction.EmptyFilter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRestrictionService creates a new restriction service.
func NewRestrictionService(
	rules store.RestrictionStore,
	library store.LibraryReader,
	filter *restriction.Service,
	pruner *restriction.EmptyFilter,
	validator *validation.Validator,
	logger *slog.Logger,
) *RestrictionService {
	return &RestrictionService{
		rules:     rules,
		library:   library,
		filter:    filter,
		pruner:    pruner,
		validator: validator,
		logger:    logger,
	}
}

// RestrictionInput carries the user-editable fields of a restriction rule.
type RestrictionInput struct {
	EntityType    string   `json:"entity_type" validate:"required,oneof=tag studio performer group gallery"`
	Mode          string   `json:"mode" validate:"required,oneof=INCLUDE EXCLUDE"`
	EntityIDs     []string `json:"entity_ids" validate:"required,min=1,dive,required"`
	RestrictEmpty bool     `json:"restrict_empty"`
}

// CreateRestriction validates and stores a new rule for the user.
func (s *RestrictionService) CreateRestriction(ctx context.Context, userID string, input RestrictionInput) (*domain.ContentRestriction, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	rule := &domain.ContentRestriction{
		ID:            id.MustGenerate("rule"),
		UserID:        userID,
		EntityType:    domain.EntityType(input.EntityType),
		Mode:          domain.RestrictionMode(input.Mode),
		EntityIDs:     input.EntityIDs,
		RestrictEmpty: input.RestrictEmpty,
	}

	if err := s.rules.CreateRestriction(ctx, rule); err != nil {
		return nil, fmt.Errorf("create restriction: %w", err)
	}

	s.logger.Info("restriction created",
		"user_id", userID,
		"rule_id", rule.ID,
		"entity_type", rule.EntityType,
		"mode", rule.Mode,
		"entity_count", len(rule.EntityIDs),
	)

	return rule, nil
}

// UpdateRestriction validates and replaces the fields of an existing rule.
func (s *RestrictionService) UpdateRestriction(ctx context.Context, userID, ruleID string, input RestrictionInput) (*domain.ContentRestriction, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	rule, err := s.rules.GetRestriction(ctx, userID, ruleID)
	if err != nil {
		return nil, fmt.Errorf("get restriction: %w", err)
	}

	rule.EntityType = domain.EntityType(input.EntityType)
	rule.Mode = domain.RestrictionMode(input.Mode)
	rule.EntityIDs = input.EntityIDs
	rule.RestrictEmpty = input.RestrictEmpty
	rule.UpdatedAt = time.Now()

	if err := s.rules.UpdateRestriction(ctx, rule); err != nil {
		return nil, fmt.Errorf("update restriction: %w", err)
	}

	return rule, nil
}

// DeleteRestriction removes a rule owned by the user.
func (s *RestrictionService) DeleteRestriction(ctx context.Context, userID, ruleID string) error {
	if err := s.rules.DeleteRestriction(ctx, userID, ruleID); err != nil {
		return fmt.Errorf("delete restriction: %w", err)
	}

	s.logger.Info("restriction deleted", "user_id", userID, "rule_id", ruleID)
	return nil
}

// GetRestriction returns one rule owned by the user.
func (s *RestrictionService) GetRestriction(ctx context.Context, userID, ruleID string) (*domain.ContentRestriction, error) {
	return s.rules.GetRestriction(ctx, userID, ruleID)
}

// ListRestrictions returns the user's rules, INCLUDE rules first.
func (s *RestrictionService) ListRestrictions(ctx context.Context, userID string) ([]*domain.ContentRestriction, error) {
	return s.rules.ListRestrictionsForUser(ctx, userID)
}

// VisibleLibrary loads the full mirror, applies the user's restriction rules
// with their cascade, then prunes entities left without visible content.
// This is the path the sidebar tab counts come from.
func (s *RestrictionService) VisibleLibrary(ctx context.Context, userID string) (*domain.Collections, error) {
	lib, err := s.loadLibrary(ctx)
	if err != nil {
		return nil, err
	}

	// Stub references from the link tables become canonical objects so the
	// cascade can walk scene → performer → tags.
	lib.Link()

	if lib.Scenes, err = s.filter.FilterScenesForUser(ctx, userID, lib.Scenes); err != nil {
		return nil, err
	}
	if lib.Images, err = s.filter.FilterImagesForUser(ctx, userID, lib.Images); err != nil {
		return nil, err
	}
	if lib.Galleries, err = s.filter.FilterGalleriesForUser(ctx, userID, lib.Galleries); err != nil {
		return nil, err
	}
	if lib.Groups, err = s.filter.FilterGroupsForUser(ctx, userID, lib.Groups); err != nil {
		return nil, err
	}
	if lib.Performers, err = s.filter.FilterPerformersForUser(ctx, userID, lib.Performers); err != nil {
		return nil, err
	}
	if lib.Studios, err = s.filter.FilterStudiosForUser(ctx, userID, lib.Studios); err != nil {
		return nil, err
	}
	if lib.Tags, err = s.filter.FilterTagsForUser(ctx, userID, lib.Tags); err != nil {
		return nil, err
	}

	pruned := s.pruner.FilterAllEntities(*lib)
	return &pruned.Collections, nil
}

func (s *RestrictionService) loadLibrary(ctx context.Context) (*domain.Collections, error) {
	var lib domain.Collections
	var err error

	if lib.Scenes, err = s.library.ListAllScenes(ctx); err != nil {
		return nil, fmt.Errorf("load scenes: %w", err)
	}
	if lib.Images, err = s.library.ListAllImages(ctx); err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	if lib.Galleries, err = s.library.ListAllGalleries(ctx); err != nil {
		return nil, fmt.Errorf("load galleries: %w", err)
	}
	if lib.Groups, err = s.library.ListAllGroups(ctx); err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	if lib.Performers, err = s.library.ListAllPerformers(ctx); err != nil {
		return nil, fmt.Errorf("load performers: %w", err)
	}
	if lib.Studios, err = s.library.ListAllStudios(ctx); err != nil {
		return nil, fmt.Errorf("load studios: %w", err)
	}
	if lib.Tags, err = s.library.ListAllTags(ctx); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	return &lib, nil
}

// ValidateRestrictableType reports whether t may be targeted by a rule.
func ValidateRestrictableType(t domain.EntityType) error {
	if slices.Contains(domain.RestrictableTypes, t) {
		return nil
	}
	return errors.Validation(fmt.Sprintf("entity type %q cannot be restricted", t))
}
