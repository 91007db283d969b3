package service

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/errors"
	"github.com/mirrorboxapp/mirrorbox-server/internal/restriction"
	"github.com/mirrorboxapp/mirrorbox-server/internal/validation"
)

// fakeRuleStore keeps rules in memory, scoped by user.
type fakeRuleStore struct {
	rules map[string]*domain.ContentRestriction
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{rules: make(map[string]*domain.ContentRestriction)}
}

func (f *fakeRuleStore) CreateRestriction(_ context.Context, r *domain.ContentRestriction) error {
	f.rules[r.ID] = r
	return nil
}

func (f *fakeRuleStore) UpdateRestriction(_ context.Context, r *domain.ContentRestriction) error {
	f.rules[r.ID] = r
	return nil
}

func (f *fakeRuleStore) DeleteRestriction(_ context.Context, userID, id string) error {
	r, ok := f.rules[id]
	if !ok || r.UserID != userID {
		return errors.ErrNotFound
	}
	delete(f.rules, id)
	return nil
}

func (f *fakeRuleStore) GetRestriction(_ context.Context, userID, id string) (*domain.ContentRestriction, error) {
	r, ok := f.rules[id]
	if !ok || r.UserID != userID {
		return nil, errors.ErrNotFound
	}
	return r, nil
}

func (f *fakeRuleStore) ListRestrictionsForUser(_ context.Context, userID string) ([]*domain.ContentRestriction, error) {
	var out []*domain.ContentRestriction
	for _, r := range f.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeLibrary serves a tiny fixed mirror: two tagged scenes under one studio
// each, plus the tags and studios themselves.
type fakeLibrary struct {
	scenes  []*domain.Scene
	studios []*domain.Studio
	tags    []*domain.Tag
}

func newFakeLibrary() *fakeLibrary {
	t1 := &domain.Tag{ID: "t1", InstanceID: "local", Name: "Action"}
	t2 := &domain.Tag{ID: "t2", InstanceID: "local", Name: "Drama"}
	st1 := &domain.Studio{ID: "st1", InstanceID: "local", Name: "First"}
	st2 := &domain.Studio{ID: "st2", InstanceID: "local", Name: "Second"}

	return &fakeLibrary{
		scenes: []*domain.Scene{
			{ID: "s1", InstanceID: "local", Title: "Alpha", Studio: st1, Tags: []*domain.Tag{t1}},
			{ID: "s2", InstanceID: "local", Title: "Beta", Studio: st2, Tags: []*domain.Tag{t2}},
		},
		studios: []*domain.Studio{st1, st2},
		tags:    []*domain.Tag{t1, t2},
	}
}

func (f *fakeLibrary) ListAllScenes(context.Context) ([]*domain.Scene, error)   { return f.scenes, nil }
func (f *fakeLibrary) ListAllImages(context.Context) ([]*domain.Image, error)   { return nil, nil }
func (f *fakeLibrary) ListAllGalleries(context.Context) ([]*domain.Gallery, error) {
	return nil, nil
}
func (f *fakeLibrary) ListAllPerformers(context.Context) ([]*domain.Performer, error) {
	return nil, nil
}
func (f *fakeLibrary) ListAllStudios(context.Context) ([]*domain.Studio, error) {
	return f.studios, nil
}
func (f *fakeLibrary) ListAllTags(context.Context) ([]*domain.Tag, error)     { return f.tags, nil }
func (f *fakeLibrary) ListAllGroups(context.Context) ([]*domain.Group, error) { return nil, nil }

func newRestrictionService(rules *fakeRuleStore, library *fakeLibrary) *RestrictionService {
	logger := slog.New(slog.DiscardHandler)
	return NewRestrictionService(
		rules,
		library,
		restriction.NewService(rules, logger),
		restriction.NewEmptyFilter(logger),
		validation.New(),
		logger,
	)
}

func TestCreateRestriction(t *testing.T) {
	svc := newRestrictionService(newFakeRuleStore(), newFakeLibrary())

	rule, err := svc.CreateRestriction(context.Background(), "u1", RestrictionInput{
		EntityType: "tag",
		Mode:       "EXCLUDE",
		EntityIDs:  []string{"t1"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rule.ID, "rule-"))
	assert.Equal(t, "u1", rule.UserID)
	assert.Equal(t, domain.EntityTag, rule.EntityType)
	assert.Equal(t, domain.RestrictionExclude, rule.Mode)
}

func TestCreateRestriction_RejectsInvalidInput(t *testing.T) {
	svc := newRestrictionService(newFakeRuleStore(), newFakeLibrary())

	cases := []struct {
		name  string
		input RestrictionInput
	}{
		{"bad entity type", RestrictionInput{EntityType: "scene", Mode: "EXCLUDE", EntityIDs: []string{"x"}}},
		{"bad mode", RestrictionInput{EntityType: "tag", Mode: "DENY", EntityIDs: []string{"x"}}},
		{"empty ids", RestrictionInput{EntityType: "tag", Mode: "EXCLUDE", EntityIDs: []string{}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRestriction(context.Background(), "u1", tc.input)
			require.Error(t, err)

			var domainErr *errors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, errors.CodeValidation, domainErr.Code)
		})
	}
}

func TestUpdateRestriction(t *testing.T) {
	rules := newFakeRuleStore()
	svc := newRestrictionService(rules, newFakeLibrary())

	created, err := svc.CreateRestriction(context.Background(), "u1", RestrictionInput{
		EntityType: "tag", Mode: "EXCLUDE", EntityIDs: []string{"t1"},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRestriction(context.Background(), "u1", created.ID, RestrictionInput{
		EntityType: "studio", Mode: "INCLUDE", EntityIDs: []string{"st1", "st2"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.EntityStudio, updated.EntityType)
	assert.Equal(t, domain.RestrictionInclude, updated.Mode)
	assert.Equal(t, []string{"st1", "st2"}, updated.EntityIDs)
}

func TestUpdateRestriction_WrongUser(t *testing.T) {
	rules := newFakeRuleStore()
	svc := newRestrictionService(rules, newFakeLibrary())

	created, err := svc.CreateRestriction(context.Background(), "u1", RestrictionInput{
		EntityType: "tag", Mode: "EXCLUDE", EntityIDs: []string{"t1"},
	})
	require.NoError(t, err)

	_, err = svc.UpdateRestriction(context.Background(), "u2", created.ID, RestrictionInput{
		EntityType: "tag", Mode: "EXCLUDE", EntityIDs: []string{"t2"},
	})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDeleteRestriction(t *testing.T) {
	rules := newFakeRuleStore()
	svc := newRestrictionService(rules, newFakeLibrary())

	created, err := svc.CreateRestriction(context.Background(), "u1", RestrictionInput{
		EntityType: "tag", Mode: "EXCLUDE", EntityIDs: []string{"t1"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRestriction(context.Background(), "u1", created.ID))

	_, err = svc.GetRestriction(context.Background(), "u1", created.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestVisibleLibrary_NoRules(t *testing.T) {
	svc := newRestrictionService(newFakeRuleStore(), newFakeLibrary())

	lib, err := svc.VisibleLibrary(context.Background(), "u1")
	require.NoError(t, err)

	assert.Len(t, lib.Scenes, 2)
	assert.Len(t, lib.Studios, 2)
	assert.Len(t, lib.Tags, 2)
}

func TestVisibleLibrary_ExcludedTagPrunesStudio(t *testing.T) {
	rules := newFakeRuleStore()
	svc := newRestrictionService(rules, newFakeLibrary())

	_, err := svc.CreateRestriction(context.Background(), "u1", RestrictionInput{
		EntityType: "tag", Mode: "EXCLUDE", EntityIDs: []string{"t1"},
	})
	require.NoError(t, err)

	lib, err := svc.VisibleLibrary(context.Background(), "u1")
	require.NoError(t, err)

	// Scene s1 falls to the tag exclusion; studio st1 loses its only scene
	// and is pruned as empty, as is the excluded tag itself.
	require.Len(t, lib.Scenes, 1)
	assert.Equal(t, "s2", lib.Scenes[0].ID)
	require.Len(t, lib.Studios, 1)
	assert.Equal(t, "st2", lib.Studios[0].ID)
	require.Len(t, lib.Tags, 1)
	assert.Equal(t, "t2", lib.Tags[0].ID)
}

func TestVisibleLibrary_OtherUserUnaffected(t *testing.T) {
	rules := newFakeRuleStore()
	svc := newRestrictionService(rules, newFakeLibrary())

	_, err := svc.CreateRestriction(context.Background(), "u1", RestrictionInput{
		EntityType: "tag", Mode: "EXCLUDE", EntityIDs: []string{"t1"},
	})
	require.NoError(t, err)

	lib, err := svc.VisibleLibrary(context.Background(), "u2")
	require.NoError(t, err)
	assert.Len(t, lib.Scenes, 2)
}

func TestValidateRestrictableType(t *testing.T) {
	assert.NoError(t, ValidateRestrictableType(domain.EntityTag))
	assert.NoError(t, ValidateRestrictableType(domain.EntityGallery))
	assert.Error(t, ValidateRestrictableType(domain.EntityScene))
	assert.Error(t, ValidateRestrictableType(domain.EntityImage))
}
