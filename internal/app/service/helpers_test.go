package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

func newTestFileStore(t *testing.T) *storage.LocalStorage {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "/static")
	require.NoError(t, err)
	return store
}

func testUpload(name string) *storage.Upload {
	return &storage.Upload{Filename: name, Size: 4, Content: strings.NewReader("data")}
}

// recordingFileStore wraps a real store and can fail promotion.
type recordingFileStore struct {
	storage.FileStore
	failPromote bool
	discarded   []string
	removed     []string
}

func (r *recordingFileStore) Promote(ctx context.Context, staged *storage.StagedFile) error {
	if r.failPromote {
		return errors.New("disk full")
	}
	return r.FileStore.Promote(ctx, staged)
}

func (r *recordingFileStore) Discard(ctx context.Context, staged *storage.StagedFile) error {
	r.discarded = append(r.discarded, staged.StagingKey)
	return r.FileStore.Discard(ctx, staged)
}

func (r *recordingFileStore) Remove(ctx context.Context, path string) error {
	r.removed = append(r.removed, path)
	return r.FileStore.Remove(ctx, path)
}
