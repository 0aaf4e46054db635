package storage

import (
	"context"
	"fmt"

	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used here.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Storage struct {
	client  S3API
	bucket  string
	region  string
	baseURL string
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// Static credentials when provided, otherwise the default chain
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
		if err != nil {
			logger.Warn("Falling back to region-only AWS config", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = aws.Config{Region: region}
		}
	}

	return NewS3StorageWithClient(s3.NewFromConfig(cfg), region, bucket, baseURL)
}

func NewS3StorageWithClient(client S3API, region, bucket, baseURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, region: region, baseURL: baseURL}
}

func (s *S3Storage) Stage(ctx context.Context, folder string, upload *Upload) (*StagedFile, error) {
	name := newObjectName(upload.Filename)
	stagingKey := stagingDir + "/" + name

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(stagingKey),
		Body:   upload.Content,
	}
	if upload.ContentType != "" {
		input.ContentType = aws.String(upload.ContentType)
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	return &StagedFile{StagingKey: stagingKey, Path: finalPath(folder, name)}, nil
}

// Promote copies the staged object to its final key then deletes the
// staging object. Readers never see a partial object under the final key.
func (s *S3Storage) Promote(ctx context.Context, staged *StagedFile) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(staged.Path),
		CopySource: aws.String(fmt.Sprintf("%s/%s", s.bucket, staged.StagingKey)),
	})
	if err != nil {
		return fmt.Errorf("failed to promote upload: %w", err)
	}

	if err := s.Discard(ctx, staged); err != nil {
		// The final object exists; a leftover staging object is harmless.
		logger.Warn("Failed to delete staging object", map[string]interface{}{
			"key":   staged.StagingKey,
			"error": err.Error(),
		})
	}
	return nil
}

func (s *S3Storage) Discard(ctx context.Context, staged *StagedFile) error {
	return s.deleteKey(ctx, staged.StagingKey)
}

func (s *S3Storage) Remove(ctx context.Context, p string) error {
	key, err := cleanRelative(p)
	if err != nil {
		return err
	}
	return s.deleteKey(ctx, key)
}

func (s *S3Storage) deleteKey(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) URL(p string) string {
	if p == "" {
		return ""
	}
	if s.baseURL != "" {
		// CloudFront or custom domain
		return fmt.Sprintf("%s/%s", s.baseURL, p)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, p)
}
