package biz

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitedesk/inspection-backend/internal/pkg/errors"
	"go.uber.org/zap"
)

const (
	// uploadContentType is the content-type hint stored with uploaded objects
	uploadContentType = "image/*"
	// attachmentFileType is the file_type recorded for ingested uploads
	attachmentFileType = "image"
)

// IngestRequest carries one raw upload request handed over by the HTTP host.
// Body may be base64-encoded transport framing; IsBase64 controls the decode.
type IngestRequest struct {
	Method      string
	ContentType string
	Body        []byte
	IsBase64    bool
}

// uploadCommand is the validated intent derived from the form fields
type uploadCommand struct {
	EntityType string
	EntityID   int64
}

// Ingest runs the attachment ingestion pipeline: validate the request, decode
// the multipart body, upload the file to the per-entity-type bucket and insert
// the metadata row. If the insert fails the uploaded object is deleted
// best-effort and the insert error is the one reported.
func (uc *AttachmentUseCase) Ingest(ctx context.Context, req *IngestRequest) (*Attachment, error) {
	if req.Method != http.MethodPost {
		return nil, errors.New(errors.ErrAttachMethodNotAllowed)
	}

	if !strings.Contains(req.ContentType, "multipart/form-data") {
		return nil, errors.New(errors.ErrAttachInvalidContentType)
	}

	body := req.Body
	if req.IsBase64 {
		decoded, err := base64.StdEncoding.DecodeString(string(req.Body))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternalServer, "invalid base64 request body")
		}
		body = decoded
	}

	upload, err := DecodeMultipart(body, req.ContentType)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternalServer, "malformed multipart body")
	}

	if len(upload.FileData) == 0 {
		return nil, errors.New(errors.ErrAttachMissingFile)
	}

	cmd, err := commandFromFields(upload.Fields)
	if err != nil {
		return nil, err
	}

	bucket := BucketFor(cmd.EntityType)
	path := fmt.Sprintf("%s/%d/%s-%s", cmd.EntityType, cmd.EntityID, uuid.New().String(), upload.FileName)

	if err := uc.store.Upload(ctx, bucket, path, upload.FileData, uploadContentType); err != nil {
		uc.logger.Error("attachment upload failed",
			zap.String("bucket", bucket),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, errors.ErrAttachUploadFailed)
	}

	att := &Attachment{
		EntityType: cmd.EntityType,
		EntityID:   cmd.EntityID,
		Bucket:     bucket,
		FilePath:   path,
		FileName:   upload.FileName,
		FileType:   attachmentFileType,
		CreatedAt:  time.Now(),
	}

	if err := uc.repo.Create(ctx, att); err != nil {
		// Compensate by removing the just-uploaded object. The delete is
		// best-effort: its failure is logged but never replaces the insert
		// error reported to the caller.
		if delErr := uc.store.Delete(ctx, bucket, path); delErr != nil {
			uc.logger.Error("failed to remove orphaned upload after insert failure",
				zap.String("bucket", bucket),
				zap.String("path", path),
				zap.Error(delErr),
			)
		}
		return nil, errors.Wrap(err, errors.ErrAttachInsertFailed)
	}

	uc.logger.Info("attachment ingested",
		zap.String("entity_type", cmd.EntityType),
		zap.Int64("entity_id", cmd.EntityID),
		zap.String("bucket", bucket),
		zap.String("path", path),
		zap.Int("size", len(upload.FileData)),
	)

	return att, nil
}

// commandFromFields validates the entity fields of a parsed upload
func commandFromFields(fields map[string]string) (*uploadCommand, error) {
	entityType := strings.TrimSpace(fields["entity_type"])
	rawID := strings.TrimSpace(fields["entity_id"])

	if entityType == "" || rawID == "" {
		return nil, errors.New(errors.ErrAttachMissingEntityData)
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New(errors.ErrAttachMissingEntityData, "entity_id must be a positive integer")
	}

	return &uploadCommand{EntityType: entityType, EntityID: id}, nil
}
