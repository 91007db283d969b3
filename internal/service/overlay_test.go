package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/errors"
	"github.com/mirrorboxapp/mirrorbox-server/internal/validation"
)

type overlayKey struct {
	userID     string
	entityType domain.EntityType
	key        domain.EntityKey
}

// fakeOverlayStore keeps overlays in memory and preserves view counts across
// upserts, matching the sqlite store contract.
type fakeOverlayStore struct {
	overlays map[overlayKey]*domain.Overlay
}

func newFakeOverlayStore() *fakeOverlayStore {
	return &fakeOverlayStore{overlays: make(map[overlayKey]*domain.Overlay)}
}

func (f *fakeOverlayStore) UpsertOverlay(_ context.Context, o *domain.Overlay) error {
	k := overlayKey{o.UserID, o.EntityType, o.EntityKey}
	if existing, ok := f.overlays[k]; ok {
		o.ViewCount = existing.ViewCount
	}
	f.overlays[k] = o
	return nil
}

func (f *fakeOverlayStore) GetOverlay(_ context.Context, userID string, entityType domain.EntityType, key domain.EntityKey) (*domain.Overlay, error) {
	o, ok := f.overlays[overlayKey{userID, entityType, key}]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return o, nil
}

func (f *fakeOverlayStore) IncrementViewCount(_ context.Context, userID string, entityType domain.EntityType, key domain.EntityKey) (int, error) {
	k := overlayKey{userID, entityType, key}
	o, ok := f.overlays[k]
	if !ok {
		o = &domain.Overlay{UserID: userID, EntityType: entityType, EntityKey: key}
		f.overlays[k] = o
	}
	o.ViewCount++
	return o.ViewCount, nil
}

func newOverlayService() (*OverlayService, *fakeOverlayStore) {
	overlays := newFakeOverlayStore()
	svc := NewOverlayService(overlays, validation.New(), slog.New(slog.DiscardHandler))
	return svc, overlays
}

func TestSetOverlay(t *testing.T) {
	svc, _ := newOverlayService()
	key := domain.EntityKey{ID: "s1", InstanceID: "local"}
	rating := 85

	o, err := svc.SetOverlay(context.Background(), "u1", domain.EntityScene, key, OverlayInput{
		Rating:   &rating,
		Favorite: true,
	})
	require.NoError(t, err)

	require.NotNil(t, o.Rating)
	assert.Equal(t, 85, *o.Rating)
	assert.True(t, o.Favorite)
}

func TestSetOverlay_RejectsOutOfRangeRating(t *testing.T) {
	svc, _ := newOverlayService()
	key := domain.EntityKey{ID: "s1", InstanceID: "local"}
	rating := 150

	_, err := svc.SetOverlay(context.Background(), "u1", domain.EntityScene, key, OverlayInput{
		Rating: &rating,
	})
	require.Error(t, err)

	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeValidation, domainErr.Code)
}

func TestSetOverlay_PreservesViewCount(t *testing.T) {
	svc, _ := newOverlayService()
	key := domain.EntityKey{ID: "s1", InstanceID: "local"}

	_, err := svc.RecordView(context.Background(), "u1", domain.EntityScene, key)
	require.NoError(t, err)
	_, err = svc.RecordView(context.Background(), "u1", domain.EntityScene, key)
	require.NoError(t, err)

	rating := 60
	o, err := svc.SetOverlay(context.Background(), "u1", domain.EntityScene, key, OverlayInput{Rating: &rating})
	require.NoError(t, err)

	assert.Equal(t, 2, o.ViewCount)
}

func TestRecordView(t *testing.T) {
	svc, _ := newOverlayService()
	key := domain.EntityKey{ID: "s1", InstanceID: "local"}

	count, err := svc.RecordView(context.Background(), "u1", domain.EntityScene, key)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = svc.RecordView(context.Background(), "u1", domain.EntityScene, key)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetOverlay_Missing(t *testing.T) {
	svc, _ := newOverlayService()

	_, err := svc.GetOverlay(context.Background(), "u1", domain.EntityScene, domain.EntityKey{ID: "nope", InstanceID: "local"})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
