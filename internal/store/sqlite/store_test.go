package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.CreateUser(context.Background(), &domain.User{ID: id, Name: id})
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"scenes", "images", "galleries", "performers", "studios", "tags", "groups",
		"scene_tags", "scene_performers", "scene_galleries",
		"group_scenes", "group_tags", "group_containing",
		"gallery_tags", "gallery_performers",
		"image_tags", "image_performers", "image_galleries",
		"performer_tags", "studio_tags", "tag_parents",
		"users", "content_restrictions", "user_overlays",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	// Verify the derived performer-tag views exist.
	views := []string{"scene_performer_tags", "image_performer_tags", "gallery_performer_tags"}
	for _, view := range views {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='view' AND name=?", view).Scan(&name)
		if err != nil {
			t.Errorf("view %s not found: %v", view, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.DiscardHandler)

	s1, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	parsed, err := parseTime(formatTime(now))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("got %v, want %v", parsed, now)
	}
}
