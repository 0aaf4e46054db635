package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/agrifarma/agrifarma-backend/config"
	"github.com/google/uuid"
)

// Upload folders
const (
	FolderProducts    = "products"
	FolderConsultants = "consultants"
	FolderAvatars     = "avatars"
	FolderBlog        = "blog"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidPath         = errors.New("invalid storage path")
)

// Allowed image extensions per upload kind
var (
	ImageExtensions            = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	ConsultantPictureExtension = []string{".jpg", ".jpeg", ".png"}
	BlogMediaExtensions        = []string{
		".jpg", ".jpeg", ".png", ".gif", ".webp",
		".mp4", ".webm", ".mov",
		".mp3", ".wav", ".ogg",
		".pdf", ".doc", ".docx", ".txt",
	}
)

// MaxUploadSize caps a single uploaded file.
const MaxUploadSize int64 = 5 << 20

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// StagedFile is an upload written to the staging area but not yet visible
// under its final path. Path is what gets stored on the owning row.
type StagedFile struct {
	StagingKey string
	Path       string
}

// FileStore persists uploads in two phases: Stage writes the bytes to a
// private location, Promote moves them to Path once the row is committed.
type FileStore interface {
	Stage(ctx context.Context, folder string, upload *Upload) (*StagedFile, error)
	Promote(ctx context.Context, staged *StagedFile) error
	Discard(ctx context.Context, staged *StagedFile) error
	Remove(ctx context.Context, path string) error
	URL(path string) string
}

// ValidateUpload checks extension and size.
func ValidateUpload(upload *Upload, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	ok := false
	for _, a := range allowed {
		if ext == a {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if upload.Size > MaxUploadSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, upload.Size, MaxUploadSize)
	}
	return nil
}

// newObjectName returns a random file name that keeps the upload's extension.
func newObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.ReplaceAll(uuid.New().String(), "-", "") + ext
}

// finalPath is the relative path stored on rows, e.g. uploads/products/ab12.png
func finalPath(folder, name string) string {
	return path.Join("uploads", folder, name)
}

// cleanRelative rejects absolute paths and paths escaping the storage root.
func cleanRelative(p string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(p, `\`, "/"))
	if p == "" || cleaned == "." || cleaned == ".." || path.IsAbs(cleaned) || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

// NewFromConfig builds the configured backend. Local files are served under
// /static.
func NewFromConfig(storageCfg config.StorageConfig, s3Cfg config.S3Config) (FileStore, error) {
	switch storageCfg.Backend {
	case "s3":
		return NewS3Storage(s3Cfg.Region, s3Cfg.Bucket, s3Cfg.AccessKeyID, s3Cfg.SecretAccessKey, s3Cfg.BaseURL), nil
	case "local", "":
		return NewLocalStorage(storageCfg.RootDir, "/static")
	}
	return nil, fmt.Errorf("unsupported storage backend %q", storageCfg.Backend)
}
