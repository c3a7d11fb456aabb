package biz

import (
	"context"
	"strings"
	"time"

	"github.com/sitedesk/inspection-backend/internal/pkg/errors"
	"github.com/sitedesk/inspection-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Entity types that can own attachments
const (
	EntitySite      = "site"
	EntityAudit     = "audit"
	EntityRisk      = "risk"
	EntityEquipment = "equipment"
)

// KnownEntityTypes returns the entity types with provisioned photo buckets
func KnownEntityTypes() []string {
	return []string{EntitySite, EntityAudit, EntityRisk, EntityEquipment}
}

// BucketFor returns the per-entity-type photo bucket name
func BucketFor(entityType string) string {
	return entityType + "-photos"
}

// Attachment is the durable metadata record for a stored file
type Attachment struct {
	ID         int64
	EntityType string
	EntityID   int64
	Bucket     string
	FilePath   string
	FileName   string
	FileType   string
	FileURL    string // set only for pre-uploaded files registered via the JSON API
	CreatedAt  time.Time
}

// AttachmentRepo is the metadata store interface
type AttachmentRepo interface {
	Create(ctx context.Context, att *Attachment) error
	ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*Attachment, error)
	DeleteByEntity(ctx context.Context, entityType string, entityID int64) ([]*Attachment, error)
}

// ObjectStore is the object storage interface
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	Delete(ctx context.Context, bucket, path string) error
}

// AttachmentUseCase coordinates object storage and the metadata store
type AttachmentUseCase struct {
	repo   AttachmentRepo
	store  ObjectStore
	logger *logger.Logger
}

// NewAttachmentUseCase creates an attachment use case
func NewAttachmentUseCase(repo AttachmentRepo, store ObjectStore, log *logger.Logger) *AttachmentUseCase {
	return &AttachmentUseCase{
		repo:   repo,
		store:  store,
		logger: log,
	}
}

// RegisterInput describes a pre-uploaded file registered via the JSON API
type RegisterInput struct {
	EntityType string
	EntityID   int64
	FileURL    string
	FileName   string
	FileType   string
}

// Register records an attachment whose file already lives at an external URL.
// This is the simple companion path to Ingest: no multipart body, no object
// upload, just the metadata row.
func (uc *AttachmentUseCase) Register(ctx context.Context, in *RegisterInput) (*Attachment, error) {
	if strings.TrimSpace(in.EntityType) == "" || in.EntityID <= 0 {
		return nil, errors.New(errors.ErrAttachInvalidInput, "entity_type and entity_id are required")
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return nil, errors.New(errors.ErrAttachInvalidInput, "file_url is required")
	}

	fileType := in.FileType
	if fileType == "" {
		fileType = attachmentFileType
	}

	att := &Attachment{
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		FileURL:    in.FileURL,
		FileName:   in.FileName,
		FileType:   fileType,
		CreatedAt:  time.Now(),
	}

	if err := uc.repo.Create(ctx, att); err != nil {
		return nil, errors.Wrap(err, errors.ErrAttachInsertFailed)
	}

	return att, nil
}

// ListByEntity returns all attachments for one entity
func (uc *AttachmentUseCase) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*Attachment, error) {
	if strings.TrimSpace(entityType) == "" || entityID <= 0 {
		return nil, errors.New(errors.ErrAttachInvalidInput, "entity_type and entity_id are required")
	}

	atts, err := uc.repo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternalServer, "failed to list attachments")
	}

	return atts, nil
}

// RemoveByEntity deletes all attachment rows for one entity and removes their
// stored objects best-effort. Used when the owning entity is deleted.
func (uc *AttachmentUseCase) RemoveByEntity(ctx context.Context, entityType string, entityID int64) (int, error) {
	deleted, err := uc.repo.DeleteByEntity(ctx, entityType, entityID)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrInternalServer, "failed to delete attachments")
	}

	for _, att := range deleted {
		if att.Bucket == "" || att.FilePath == "" {
			continue
		}
		if err := uc.store.Delete(ctx, att.Bucket, att.FilePath); err != nil {
			uc.logger.Warn("failed to remove stored object for deleted attachment",
				zap.String("bucket", att.Bucket),
				zap.String("path", att.FilePath),
				zap.Error(err),
			)
		}
	}

	return len(deleted), nil
}
