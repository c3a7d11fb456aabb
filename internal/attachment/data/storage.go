package data

import (
	"bytes"
	"context"
	"fmt"

	pkgminio "github.com/sitedesk/inspection-backend/internal/pkg/minio"
)

// MinIOObjectStore implements biz.ObjectStore
type MinIOObjectStore struct {
	client *pkgminio.Client
}

// NewMinIOObjectStore creates a MinIO-backed object store
func NewMinIOObjectStore(client *pkgminio.Client) *MinIOObjectStore {
	return &MinIOObjectStore{client: client}
}

// Upload stores data at (bucket, path). Overwrite is disabled: an existing
// object at the exact path fails the upload.
func (s *MinIOObjectStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, bucket, path, reader, int64(len(data)), pkgminio.PutObjectOptions{
		ContentType: contentType,
		Upsert:      false,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	return nil
}

// Delete removes the object at (bucket, path)
func (s *MinIOObjectStore) Delete(ctx context.Context, bucket, path string) error {
	err := s.client.RemoveObject(ctx, bucket, path, pkgminio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}
