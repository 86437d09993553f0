package project

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/framecut/framecut-agent/internal/db"
	"github.com/framecut/framecut-agent/internal/media"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) (*db.DB, *SQLiteRepository) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, NewRepository(database.Conn())
}

// fakeResolver maps storage keys to URLs and records what it was asked for.
type fakeResolver struct {
	urls     map[string]string
	resolved []string
}

func (f *fakeResolver) Resolve(_ context.Context, key string) (string, error) {
	f.resolved = append(f.resolved, key)
	url, ok := f.urls[key]
	if !ok {
		return "", io.ErrUnexpectedEOF
	}
	return url, nil
}

func newTestManager(t *testing.T) (*Manager, *SQLiteRepository) {
	t.Helper()
	_, repo := setupTestDB(t)
	m := NewManager(repo, media.NewExtensionProber(nil, 0), nil, DefaultSettings(), testLogger())
	t.Cleanup(func() { m.Shutdown(context.Background()) })
	return m, repo
}
