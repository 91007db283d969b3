package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func TestRestriction_CRUD(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	ctx := context.Background()

	r := &domain.ContentRestriction{
		ID: "r1", UserID: "u1", EntityType: domain.EntityTag,
		Mode: domain.RestrictionExclude, EntityIDs: []string{"t1", "t2"},
		RestrictEmpty: true,
	}
	if err := s.CreateRestriction(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetRestriction(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EntityType != domain.EntityTag || got.Mode != domain.RestrictionExclude {
		t.Errorf("got type %s mode %s", got.EntityType, got.Mode)
	}
	if len(got.EntityIDs) != 2 || got.EntityIDs[0] != "t1" || got.EntityIDs[1] != "t2" {
		t.Errorf("entity ids: got %v", got.EntityIDs)
	}
	if !got.RestrictEmpty {
		t.Error("restrict_empty lost")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got.EntityIDs = []string{"t3"}
	got.RestrictEmpty = false
	if err := s.UpdateRestriction(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = s.GetRestriction(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if len(got.EntityIDs) != 1 || got.EntityIDs[0] != "t3" || got.RestrictEmpty {
		t.Errorf("update not applied: %+v", got)
	}

	if err := s.DeleteRestriction(ctx, "u1", "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetRestriction(ctx, "u1", "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get after delete: got %v, want ErrNotFound", err)
	}
}

func TestRestriction_ScopedToUser(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")
	ctx := context.Background()

	r := &domain.ContentRestriction{
		ID: "r1", UserID: "u1", EntityType: domain.EntityStudio,
		Mode: domain.RestrictionInclude, EntityIDs: []string{"st1"},
	}
	if err := s.CreateRestriction(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.GetRestriction(ctx, "u2", "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-user get: got %v, want ErrNotFound", err)
	}
	r.UserID = "u2"
	if err := s.UpdateRestriction(ctx, r); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-user update: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteRestriction(ctx, "u2", "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-user delete: got %v, want ErrNotFound", err)
	}
}

func TestListRestrictionsForUser_IncludeFirst(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	ctx := context.Background()

	// The EXCLUDE rule is created before the INCLUDE rule; the listing must
	// still put INCLUDE rules first.
	base := time.Now().Add(-time.Hour)
	rules := []*domain.ContentRestriction{
		{ID: "rx", UserID: "u1", EntityType: domain.EntityTag,
			Mode: domain.RestrictionExclude, EntityIDs: []string{"t1"}, CreatedAt: base},
		{ID: "ri", UserID: "u1", EntityType: domain.EntityTag,
			Mode: domain.RestrictionInclude, EntityIDs: []string{"t2"}, CreatedAt: base.Add(time.Minute)},
		{ID: "rx2", UserID: "u1", EntityType: domain.EntityStudio,
			Mode: domain.RestrictionExclude, EntityIDs: []string{"st1"}, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range rules {
		if err := s.CreateRestriction(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}

	listed, err := s.ListRestrictionsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("got %d rules, want 3", len(listed))
	}
	if listed[0].ID != "ri" {
		t.Errorf("first rule: got %s, want the INCLUDE rule", listed[0].ID)
	}
	if listed[1].ID != "rx" || listed[2].ID != "rx2" {
		t.Errorf("EXCLUDE rules out of creation order: %s, %s", listed[1].ID, listed[2].ID)
	}
}

func TestRestriction_DeletedWithUser(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	ctx := context.Background()

	r := &domain.ContentRestriction{
		ID: "r1", UserID: "u1", EntityType: domain.EntityTag,
		Mode: domain.RestrictionExclude, EntityIDs: []string{"t1"},
	}
	if err := s.CreateRestriction(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	listed, err := s.ListRestrictionsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("rules survived user deletion: %d", len(listed))
	}
}
