package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

// fakeEntityReader records the filter and params of the last scene query.
type fakeEntityReader struct {
	store.EntityReader

	lastSceneFilter store.SceneFilter
	lastParams      store.ListParams
}

func (f *fakeEntityReader) ListScenes(_ context.Context, _ string, sf store.SceneFilter, params store.ListParams) (*store.ListResult[*domain.Scene], error) {
	f.lastSceneFilter = sf
	f.lastParams = params
	return &store.ListResult[*domain.Scene]{Items: nil, Total: 0}, nil
}

func (f *fakeEntityReader) GetScenesByIDs(_ context.Context, _ string, keys []domain.EntityKey) ([]*domain.Scene, error) {
	scenes := make([]*domain.Scene, 0, len(keys))
	for _, k := range keys {
		scenes = append(scenes, &domain.Scene{ID: k.ID, InstanceID: k.InstanceID})
	}
	return scenes, nil
}

// fakeLineage serves a fixed tag tree: root -> mid -> leaf.
type fakeLineage struct{}

func (fakeLineage) ListTagLineage(context.Context) ([]filter.Lineage, error) {
	return []filter.Lineage{
		{ID: "root"},
		{ID: "mid", ParentIDs: []string{"root"}},
		{ID: "leaf", ParentIDs: []string{"mid"}},
	}, nil
}

func (fakeLineage) ListStudioLineage(context.Context) ([]filter.Lineage, error) {
	return []filter.Lineage{
		{ID: "sp"},
		{ID: "sc", ParentIDs: []string{"sp"}},
	}, nil
}

func newBrowseService(reader *fakeEntityReader) *BrowseService {
	expander := filter.NewExpander(fakeLineage{})
	return NewBrowseService(reader, expander, slog.New(slog.DiscardHandler))
}

func TestListScenes_ClampsPagination(t *testing.T) {
	reader := &fakeEntityReader{}
	svc := newBrowseService(reader)

	_, err := svc.ListScenes(context.Background(), "u1", store.SceneFilter{}, store.ListParams{
		Page:    -3,
		PerPage: 10000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, reader.lastParams.Page)
	assert.Equal(t, 250, reader.lastParams.PerPage)
	assert.Equal(t, store.SortAsc, reader.lastParams.Direction)
}

func TestListScenes_FillsRandomSeed(t *testing.T) {
	reader := &fakeEntityReader{}
	svc := newBrowseService(reader)

	params := store.DefaultListParams()
	params.Sort = "random"

	_, err := svc.ListScenes(context.Background(), "u1", store.SceneFilter{}, params)
	require.NoError(t, err)
	first := reader.lastParams.RandomSeed
	assert.NotZero(t, first)

	// Same user, same day: the seed is stable across requests.
	_, err = svc.ListScenes(context.Background(), "u1", store.SceneFilter{}, params)
	require.NoError(t, err)
	assert.Equal(t, first, reader.lastParams.RandomSeed)

	// A caller-chosen seed is never overridden.
	params.RandomSeed = 42
	_, err = svc.ListScenes(context.Background(), "u1", store.SceneFilter{}, params)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), reader.lastParams.RandomSeed)
}

func TestDayStableSeed(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, dayStableSeed("u1", now), dayStableSeed("u1", now.Add(2*time.Hour)))
	assert.NotEqual(t, dayStableSeed("u1", now), dayStableSeed("u2", now))
	assert.NotEqual(t, dayStableSeed("u1", now), dayStableSeed("u1", now.Add(48*time.Hour)))
}

func TestListScenes_ExpandsTagHierarchy(t *testing.T) {
	reader := &fakeEntityReader{}
	svc := newBrowseService(reader)

	f := store.SceneFilter{
		Tags: &filter.MultiCriterion{
			Values:   []string{"root"},
			Modifier: filter.ModifierIncludes,
			Depth:    filter.DepthUnlimited,
		},
	}

	_, err := svc.ListScenes(context.Background(), "u1", f, store.DefaultListParams())
	require.NoError(t, err)

	got := reader.lastSceneFilter.Tags
	require.NotNil(t, got)
	assert.Equal(t, []string{"root", "mid", "leaf"}, got.Values)
	assert.Zero(t, got.Depth, "depth is consumed by the expansion")
}

func TestListScenes_ExpandsWithDepthLimit(t *testing.T) {
	reader := &fakeEntityReader{}
	svc := newBrowseService(reader)

	f := store.SceneFilter{
		Tags: &filter.MultiCriterion{
			Values:   []string{"root"},
			Modifier: filter.ModifierIncludes,
			Depth:    1,
		},
	}

	_, err := svc.ListScenes(context.Background(), "u1", f, store.DefaultListParams())
	require.NoError(t, err)

	assert.Equal(t, []string{"root", "mid"}, reader.lastSceneFilter.Tags.Values)
}

func TestListScenes_ExpansionKeepsInstanceQualifiers(t *testing.T) {
	reader := &fakeEntityReader{}
	svc := newBrowseService(reader)

	f := store.SceneFilter{
		Tags: &filter.MultiCriterion{
			Values:   []string{"root:local"},
			Modifier: filter.ModifierIncludes,
			Depth:    filter.DepthUnlimited,
		},
	}

	_, err := svc.ListScenes(context.Background(), "u1", f, store.DefaultListParams())
	require.NoError(t, err)

	// The qualified value survives and its bare form stays out: "root"
	// alone would match the tag in every source instance. Descendants
	// join as bare IDs.
	assert.Equal(t, []string{"root:local", "mid", "leaf"}, reader.lastSceneFilter.Tags.Values)
}

func TestListScenes_ExpansionMixedQualification(t *testing.T) {
	reader := &fakeEntityReader{}
	svc := newBrowseService(reader)

	// "root" is also requested bare, so the expander's bare root is a
	// requested key and stays in.
	f := store.SceneFilter{
		Tags: &filter.MultiCriterion{
			Values:   []string{"root:local", "root"},
			Modifier: filter.ModifierIncludes,
			Depth:    filter.DepthUnlimited,
		},
	}

	_, err := svc.ListScenes(context.Background(), "u1", f, store.DefaultListParams())
	require.NoError(t, err)

	assert.Equal(t, []string{"root:local", "root", "mid", "leaf"}, reader.lastSceneFilter.Tags.Values)
}

func TestListScenes_ZeroDepthUntouched(t *testing.T) {
	reader := &fakeEntityReader{}
	svc := newBrowseService(reader)

	f := store.SceneFilter{
		Tags: &filter.MultiCriterion{
			Values:   []string{"root"},
			Modifier: filter.ModifierIncludes,
		},
	}

	_, err := svc.ListScenes(context.Background(), "u1", f, store.DefaultListParams())
	require.NoError(t, err)

	assert.Equal(t, []string{"root"}, reader.lastSceneFilter.Tags.Values)
}

func TestGetScenes_PreservesOrder(t *testing.T) {
	reader := &fakeEntityReader{}
	svc := newBrowseService(reader)

	scenes, err := svc.GetScenes(context.Background(), "u1", []domain.EntityKey{
		{ID: "b", InstanceID: "local"},
		{ID: "a", InstanceID: "local"},
	})
	require.NoError(t, err)

	require.Len(t, scenes, 2)
	assert.Equal(t, "b", scenes[0].ID)
	assert.Equal(t, "a", scenes[1].ID)
}
