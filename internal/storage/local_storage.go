package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agrifarma/agrifarma-backend/pkg/logger"
)

const stagingDir = ".staging"

// LocalStorage keeps files under a root directory that is also served as
// static content at urlPrefix.
type LocalStorage struct {
	root      string
	urlPrefix string
}

func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(root, stagingDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: root, urlPrefix: urlPrefix}, nil
}

func (s *LocalStorage) Stage(_ context.Context, folder string, upload *Upload) (*StagedFile, error) {
	name := newObjectName(upload.Filename)
	stagingKey := filepath.Join(stagingDir, name)

	dst, err := os.OpenFile(filepath.Join(s.root, stagingKey), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	if _, err := io.Copy(dst, upload.Content); err != nil {
		dst.Close()
		os.Remove(filepath.Join(s.root, stagingKey))
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(filepath.Join(s.root, stagingKey))
		return nil, fmt.Errorf("failed to close staging file: %w", err)
	}

	logger.Debug("Upload staged", map[string]interface{}{
		"staging_key": stagingKey,
		"folder":      folder,
	})
	return &StagedFile{StagingKey: stagingKey, Path: finalPath(folder, name)}, nil
}

// Promote renames the staged file to its final path. Rename is atomic on the
// same filesystem, and staging lives under the same root.
func (s *LocalStorage) Promote(_ context.Context, staged *StagedFile) error {
	target := filepath.Join(s.root, filepath.FromSlash(staged.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.Rename(filepath.Join(s.root, staged.StagingKey), target); err != nil {
		return fmt.Errorf("failed to promote upload: %w", err)
	}
	return nil
}

func (s *LocalStorage) Discard(_ context.Context, staged *StagedFile) error {
	err := os.Remove(filepath.Join(s.root, staged.StagingKey))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to discard staged upload: %w", err)
	}
	return nil
}

// Remove deletes a promoted file. A missing file is not an error.
func (s *LocalStorage) Remove(_ context.Context, p string) error {
	rel, err := cleanRelative(p)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(p string) string {
	if p == "" {
		return ""
	}
	return s.urlPrefix + "/" + p
}
