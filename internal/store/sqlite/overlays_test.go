package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func TestOverlay_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	ctx := context.Background()

	key := domain.EntityKey{ID: "s1", InstanceID: "local"}
	o := &domain.Overlay{
		UserID: "u1", EntityType: domain.EntityScene, EntityKey: key,
		Rating: intp(90), Favorite: true,
	}
	if err := s.UpsertOverlay(ctx, o); err != nil {
		t.Fatalf("upsert overlay: %v", err)
	}

	got, err := s.GetOverlay(ctx, "u1", domain.EntityScene, key)
	if err != nil {
		t.Fatalf("get overlay: %v", err)
	}
	if got.Rating == nil || *got.Rating != 90 {
		t.Errorf("rating: got %v", got.Rating)
	}
	if !got.Favorite {
		t.Error("favorite not set")
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at not set")
	}
}

func TestOverlay_GetMissing(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")

	_, err := s.GetOverlay(context.Background(), "u1", domain.EntityScene,
		domain.EntityKey{ID: "nope", InstanceID: "local"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestOverlay_UpsertPreservesViewCount(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	ctx := context.Background()

	key := domain.EntityKey{ID: "s1", InstanceID: "local"}
	for range 3 {
		if _, err := s.IncrementViewCount(ctx, "u1", domain.EntityScene, key); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	o := &domain.Overlay{
		UserID: "u1", EntityType: domain.EntityScene, EntityKey: key,
		Rating: intp(50),
	}
	if err := s.UpsertOverlay(ctx, o); err != nil {
		t.Fatalf("upsert overlay: %v", err)
	}

	got, err := s.GetOverlay(ctx, "u1", domain.EntityScene, key)
	if err != nil {
		t.Fatalf("get overlay: %v", err)
	}
	if got.ViewCount != 3 {
		t.Errorf("view count: got %d, want 3", got.ViewCount)
	}
	if got.Rating == nil || *got.Rating != 50 {
		t.Errorf("rating: got %v", got.Rating)
	}
}

func TestIncrementViewCount(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	ctx := context.Background()

	key := domain.EntityKey{ID: "s1", InstanceID: "local"}
	n, err := s.IncrementViewCount(ctx, "u1", domain.EntityScene, key)
	if err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if n != 1 {
		t.Errorf("first view: got %d, want 1", n)
	}
	n, err = s.IncrementViewCount(ctx, "u1", domain.EntityScene, key)
	if err != nil {
		t.Fatalf("second increment: %v", err)
	}
	if n != 2 {
		t.Errorf("second view: got %d, want 2", n)
	}
}

func TestListScenes_OverlayCriteria(t *testing.T) {
	s := newTestStore(t)
	seedSceneLibrary(t, s)
	seedUser(t, s, "u1")
	ctx := context.Background()

	err := s.UpsertOverlay(ctx, &domain.Overlay{
		UserID: "u1", EntityType: domain.EntityScene,
		EntityKey: domain.EntityKey{ID: "s2", InstanceID: "local"},
		Rating:    intp(95), Favorite: true,
	})
	if err != nil {
		t.Fatalf("upsert overlay: %v", err)
	}

	f := store.SceneFilter{MyFavorite: boolp(true)}
	result, err := s.ListScenes(ctx, "u1", f, store.DefaultListParams())
	if err != nil {
		t.Fatalf("list scenes: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != "s2" {
		t.Fatalf("my_favorite: got %v", listSceneIDs(t, result))
	}
	if result.Items[0].Overlay == nil || !result.Items[0].Overlay.Favorite {
		t.Error("overlay not attached to result")
	}

	f = store.SceneFilter{
		MyRating: &filter.IntCriterion{Value: 90, Modifier: filter.ModifierGreaterThan},
	}
	result, err = s.ListScenes(ctx, "u1", f, store.DefaultListParams())
	if err != nil {
		t.Fatalf("list scenes: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != "s2" {
		t.Fatalf("my_rating: got %v", listSceneIDs(t, result))
	}

	// Another user never sees the first user's overlay.
	seedUser(t, s, "u2")
	f = store.SceneFilter{MyFavorite: boolp(true)}
	result, err = s.ListScenes(ctx, "u2", f, store.DefaultListParams())
	if err != nil {
		t.Fatalf("list scenes u2: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("u2 sees u1 overlay rows: %v", listSceneIDs(t, result))
	}
}

func TestListScenes_MyRatingSort(t *testing.T) {
	s := newTestStore(t)
	seedSceneLibrary(t, s)
	seedUser(t, s, "u1")
	ctx := context.Background()

	for id, rating := range map[string]int{"s1": 10, "s2": 90, "s3": 50} {
		err := s.UpsertOverlay(ctx, &domain.Overlay{
			UserID: "u1", EntityType: domain.EntityScene,
			EntityKey: domain.EntityKey{ID: id, InstanceID: "local"},
			Rating:    intp(rating),
		})
		if err != nil {
			t.Fatalf("upsert overlay %s: %v", id, err)
		}
	}

	params := store.DefaultListParams()
	params.Sort = "my_rating"
	params.Direction = store.SortDesc
	result, err := s.ListScenes(ctx, "u1", store.SceneFilter{}, params)
	if err != nil {
		t.Fatalf("list scenes: %v", err)
	}
	ids := listSceneIDs(t, result)
	if len(ids) != 3 || ids[0] != "s2" || ids[1] != "s3" || ids[2] != "s1" {
		t.Fatalf("got %v, want [s2 s3 s1]", ids)
	}
}
