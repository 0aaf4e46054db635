package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpload(name, body string) *Upload {
	return &Upload{Filename: name, Size: int64(len(body)), Content: strings.NewReader(body)}
}

func TestLocalStorage_StagePromote(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "/static")
	require.NoError(t, err)
	ctx := context.Background()

	staged, err := store.Stage(ctx, FolderProducts, newUpload("Photo.PNG", "png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(staged.Path, "uploads/products/"))
	assert.True(t, strings.HasSuffix(staged.Path, ".png"))

	// Not visible under the final path until promoted
	_, err = os.Stat(filepath.Join(root, staged.Path))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Promote(ctx, staged))

	data, err := os.ReadFile(filepath.Join(root, staged.Path))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = os.Stat(filepath.Join(root, staged.StagingKey))
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, "/static/"+staged.Path, store.URL(staged.Path))
}

func TestLocalStorage_Discard(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "/static")
	require.NoError(t, err)
	ctx := context.Background()

	staged, err := store.Stage(ctx, FolderConsultants, newUpload("me.jpg", "jpg"))
	require.NoError(t, err)

	require.NoError(t, store.Discard(ctx, staged))
	_, err = os.Stat(filepath.Join(root, staged.StagingKey))
	assert.True(t, os.IsNotExist(err))

	// Second discard is a no-op
	assert.NoError(t, store.Discard(ctx, staged))
	// Promoting a discarded file fails
	assert.Error(t, store.Promote(ctx, staged))
}

func TestLocalStorage_Remove(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "/static")
	require.NoError(t, err)
	ctx := context.Background()

	staged, err := store.Stage(ctx, FolderAvatars, newUpload("a.webp", "x"))
	require.NoError(t, err)
	require.NoError(t, store.Promote(ctx, staged))

	require.NoError(t, store.Remove(ctx, staged.Path))
	_, err = os.Stat(filepath.Join(root, staged.Path))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(ctx, staged.Path))
	assert.ErrorIs(t, store.Remove(ctx, "../outside.txt"), ErrInvalidPath)
	assert.ErrorIs(t, store.Remove(ctx, "/etc/passwd"), ErrInvalidPath)
	assert.ErrorIs(t, store.Remove(ctx, ""), ErrInvalidPath)
}

func TestValidateUpload(t *testing.T) {
	assert.NoError(t, ValidateUpload(newUpload("a.JPEG", "x"), ImageExtensions))
	assert.ErrorIs(t, ValidateUpload(newUpload("a.gif", "x"), ConsultantPictureExtension), ErrUnsupportedFileType)
	assert.ErrorIs(t, ValidateUpload(newUpload("script.sh", "x"), ImageExtensions), ErrUnsupportedFileType)

	big := &Upload{Filename: "big.png", Size: MaxUploadSize + 1, Content: strings.NewReader("")}
	assert.ErrorIs(t, ValidateUpload(big, ImageExtensions), ErrFileTooLarge)
}
