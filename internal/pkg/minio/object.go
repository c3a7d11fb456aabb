package minio

import (
	"context"
	"errors"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// PutObjectOptions represents options for uploading an object
type PutObjectOptions struct {
	// ContentType is the content type of the object
	ContentType string
	// UserMetadata is custom metadata for the object
	UserMetadata map[string]string
	// Upsert allows overwriting an existing object at the same key.
	// When false (the default), PutObject fails with ErrObjectAlreadyExists
	// if an object is already present at the key.
	Upsert bool
}

// GetObjectOptions represents options for downloading an object
type GetObjectOptions struct {
	// VersionID specifies the version of the object to retrieve
	VersionID string
}

// RemoveObjectOptions represents options for removing an object
type RemoveObjectOptions struct {
	// VersionID specifies the version of the object to remove
	VersionID string
	// ForceDelete forces deletion even if object is locked
	ForceDelete bool
}

// UploadInfo represents information about an uploaded object
type UploadInfo struct {
	Bucket       string
	Key          string
	ETag         string
	Size         int64
	LastModified string
	Location     string
	VersionID    string
}

// ObjectInfo represents object metadata
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified string
	ContentType  string
	Metadata     map[string]string
}

// PutObject uploads an object to a bucket
func (c *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts PutObjectOptions) (UploadInfo, error) {
	if err := c.checkClosed(); err != nil {
		return UploadInfo{}, err
	}

	if bucketName == "" {
		return UploadInfo{}, WrapError("PutObject", ErrInvalidBucketName, bucketName, objectName)
	}

	if objectName == "" {
		return UploadInfo{}, WrapError("PutObject", ErrInvalidObjectName, bucketName, objectName)
	}

	// S3 PUT overwrites silently, so no-overwrite semantics need a
	// precondition stat on the target key.
	if !opts.Upsert {
		_, err := c.client.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{})
		if err == nil {
			return UploadInfo{}, WrapError("PutObject", ErrObjectAlreadyExists, bucketName, objectName)
		}
		if !isNoSuchKey(err) {
			return UploadInfo{}, WrapError("PutObject", err, bucketName, objectName)
		}
	}

	minioOpts := minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.UserMetadata,
	}

	info, err := c.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minioOpts)
	if err != nil {
		return UploadInfo{}, WrapError("PutObject", err, bucketName, objectName)
	}

	if c.logger != nil {
		c.logger.Info("object uploaded successfully",
			zap.String("bucket", bucketName),
			zap.String("object", objectName),
			zap.Int64("size", info.Size),
			zap.String("etag", info.ETag),
		)
	}

	return UploadInfo{
		Bucket:       info.Bucket,
		Key:          info.Key,
		ETag:         info.ETag,
		Size:         info.Size,
		LastModified: info.LastModified.Format("2006-01-02 15:04:05"),
		Location:     info.Location,
		VersionID:    info.VersionID,
	}, nil
}

// GetObject downloads an object from a bucket
func (c *Client) GetObject(ctx context.Context, bucketName, objectName string, opts GetObjectOptions) (*minio.Object, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	if bucketName == "" {
		return nil, WrapError("GetObject", ErrInvalidBucketName, bucketName, objectName)
	}

	if objectName == "" {
		return nil, WrapError("GetObject", ErrInvalidObjectName, bucketName, objectName)
	}

	minioOpts := minio.GetObjectOptions{}
	if opts.VersionID != "" {
		minioOpts.VersionID = opts.VersionID
	}

	object, err := c.client.GetObject(ctx, bucketName, objectName, minioOpts)
	if err != nil {
		return nil, WrapError("GetObject", err, bucketName, objectName)
	}

	return object, nil
}

// StatObject gets object metadata
func (c *Client) StatObject(ctx context.Context, bucketName, objectName string) (ObjectInfo, error) {
	if err := c.checkClosed(); err != nil {
		return ObjectInfo{}, err
	}

	if bucketName == "" {
		return ObjectInfo{}, WrapError("StatObject", ErrInvalidBucketName, bucketName, objectName)
	}

	if objectName == "" {
		return ObjectInfo{}, WrapError("StatObject", ErrInvalidObjectName, bucketName, objectName)
	}

	info, err := c.client.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return ObjectInfo{}, WrapError("StatObject", ErrObjectNotFound, bucketName, objectName)
		}
		return ObjectInfo{}, WrapError("StatObject", err, bucketName, objectName)
	}

	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified.Format("2006-01-02 15:04:05"),
		ContentType:  info.ContentType,
		Metadata:     info.UserMetadata,
	}, nil
}

// RemoveObject removes an object from a bucket
func (c *Client) RemoveObject(ctx context.Context, bucketName, objectName string, opts RemoveObjectOptions) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	if bucketName == "" {
		return WrapError("RemoveObject", ErrInvalidBucketName, bucketName, objectName)
	}

	if objectName == "" {
		return WrapError("RemoveObject", ErrInvalidObjectName, bucketName, objectName)
	}

	minioOpts := minio.RemoveObjectOptions{
		VersionID:   opts.VersionID,
		ForceDelete: opts.ForceDelete,
	}

	err := c.client.RemoveObject(ctx, bucketName, objectName, minioOpts)
	if err != nil {
		return WrapError("RemoveObject", err, bucketName, objectName)
	}

	if c.logger != nil {
		c.logger.Info("object removed successfully",
			zap.String("bucket", bucketName),
			zap.String("object", objectName),
		)
	}

	return nil
}

// isNoSuchKey reports whether err is the S3 "no such key/bucket" response
func isNoSuchKey(err error) bool {
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		return minioErr.Code == "NoSuchKey" || minioErr.Code == "NoSuchBucket"
	}
	return false
}
