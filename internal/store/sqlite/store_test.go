package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/versemark/versemark-server/internal/domain"
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

func verse(book string, chapter, v int) domain.Verse {
	return domain.Verse{Book: book, Chapter: chapter, Verse: v}
}

func insertTestBookmark(t *testing.T, s *Store, r domain.VerseRange) *domain.Bookmark {
	t.Helper()
	b := domain.NewBookmark(r, "KJV")
	id, err := s.InsertBookmark(context.Background(), b)
	if err != nil {
		t.Fatalf("InsertBookmark: %v", err)
	}
	b.ID = id
	return b
}

func insertTestLabel(t *testing.T, s *Store, name string) domain.Label {
	t.Helper()
	l := domain.Label{Name: name}
	id, err := s.InsertLabel(context.Background(), &l)
	if err != nil {
		t.Fatalf("InsertLabel: %v", err)
	}
	l.ID = id
	return l
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
	for _, table := range []string{"bookmarks", "labels", "bookmark_labels"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	insertTestLabel(t, s, "Faith")

	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent) and keep data.
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()

	if _, err := s2.LabelByName(context.Background(), "Faith"); err != nil {
		t.Fatalf("LabelByName after reopen: %v", err)
	}
	if err := s2.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
