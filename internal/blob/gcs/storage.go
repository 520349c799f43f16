// Package gcs implements blob storage on Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"summit/internal/platform/config"
)

// Storage uploads objects to a single GCS bucket.
type Storage struct {
	client     *storage.Client
	bucket     *storage.BucketHandle
	bucketName string
}

// NewStorage builds a Storage from GCS configuration. Returns nil if no
// bucket is configured (uploads disabled); callers skip wiring it.
func NewStorage(ctx context.Context, cfg config.GCSConfig) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &Storage{
		client:     client,
		bucket:     client.Bucket(cfg.Bucket),
		bucketName: cfg.Bucket,
	}, nil
}

// Upload streams the object to the bucket and returns its public URL.
// The writer's Close commits the upload, so its error is the upload error.
func (s *Storage) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("commit object %s: %w", key, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key), nil
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}
