package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
)

// checkUpload validates an optional image upload against the allowed
// extensions.
func checkUpload(upload *storage.Upload, allowed []string) error {
	return checkUploadAs(upload, allowed, ErrUnsupportedImage)
}

// checkUploadAs reports a rejected upload as kind.
func checkUploadAs(upload *storage.Upload, allowed []string, kind error) error {
	if upload == nil {
		return nil
	}
	if err := storage.ValidateUpload(upload, allowed); err != nil {
		if errors.Is(err, storage.ErrUnsupportedFileType) || errors.Is(err, storage.ErrFileTooLarge) {
			return fmt.Errorf("%w: %v", kind, err)
		}
		return err
	}
	return nil
}

// persistWithUpload stages the upload, runs commit with the final path, then
// promotes the file. A failed commit discards the staged file; a failed
// promote runs undo so no row points at a missing file. With no upload,
// commit runs with an empty path.
func persistWithUpload(
	ctx context.Context,
	files storage.FileStore,
	folder string,
	upload *storage.Upload,
	commit func(path string) error,
	undo func() error,
) error {
	if upload == nil {
		return commit("")
	}

	staged, err := files.Stage(ctx, folder, upload)
	if err != nil {
		return fmt.Errorf("%w: stage: %w", ErrUploadFailed, err)
	}

	if err := commit(staged.Path); err != nil {
		discardStaged(ctx, files, staged)
		return err
	}

	if err := files.Promote(ctx, staged); err != nil {
		if undoErr := undo(); undoErr != nil {
			logger.Error("Failed to undo row after upload promotion failure", undoErr, map[string]interface{}{
				"path": staged.Path,
			})
		}
		discardStaged(ctx, files, staged)
		return fmt.Errorf("%w: promote: %w", ErrUploadFailed, err)
	}
	return nil
}

func discardStaged(ctx context.Context, files storage.FileStore, staged *storage.StagedFile) {
	if err := files.Discard(ctx, staged); err != nil {
		logger.Warn("Failed to discard staged upload", map[string]interface{}{
			"staging_key": staged.StagingKey,
			"error":       err.Error(),
		})
	}
}

// removeFileBestEffort deletes a stored file, logging instead of failing.
func removeFileBestEffort(ctx context.Context, files storage.FileStore, path string) {
	if path == "" {
		return
	}
	if err := files.Remove(ctx, path); err != nil {
		logger.Warn("Failed to remove stored file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}
