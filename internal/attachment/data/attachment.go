package data

import (
	"context"
	"fmt"
	"time"

	"github.com/sitedesk/inspection-backend/internal/attachment/biz"
	"github.com/sitedesk/inspection-backend/internal/pkg/database"
)

// AttachmentPO is the database model for attachments
type AttachmentPO struct {
	ID         int64     `gorm:"primarykey"`
	EntityType string    `gorm:"column:entity_type;size:50;not null;index:idx_attachments_entity,priority:1"`
	EntityID   int64     `gorm:"column:entity_id;not null;index:idx_attachments_entity,priority:2"`
	Bucket     string    `gorm:"column:bucket;size:100"`
	FilePath   string    `gorm:"column:file_path;size:500"`
	FileName   string    `gorm:"column:file_name;size:255"`
	FileType   string    `gorm:"column:file_type;size:50;not null;default:'image'"`
	FileURL    string    `gorm:"column:file_url;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (AttachmentPO) TableName() string {
	return "attachments"
}

// AttachmentRepo implements biz.AttachmentRepo on PostgreSQL
type AttachmentRepo struct {
	db *database.DB
}

// NewAttachmentRepo creates an attachment repository
func NewAttachmentRepo(db *database.DB) *AttachmentRepo {
	return &AttachmentRepo{db: db}
}

// Create inserts one attachment row and returns the stored row via att
func (r *AttachmentRepo) Create(ctx context.Context, att *biz.Attachment) error {
	po := toPO(att)

	if err := r.db.WithContext(ctx).GetDB().Create(po).Error; err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	// Propagate the generated key and timestamps back to the caller so the
	// returned record matches the inserted row.
	att.ID = po.ID
	att.CreatedAt = po.CreatedAt

	return nil
}

// ListByEntity returns all attachments owned by one entity, newest first
func (r *AttachmentRepo) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*biz.Attachment, error) {
	var pos []AttachmentPO
	err := r.db.WithContext(ctx).GetDB().
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	atts := make([]*biz.Attachment, len(pos))
	for i := range pos {
		atts[i] = toDomain(&pos[i])
	}

	return atts, nil
}

// DeleteByEntity removes all attachment rows for one entity and returns the
// deleted rows so the caller can clean up stored objects
func (r *AttachmentRepo) DeleteByEntity(ctx context.Context, entityType string, entityID int64) ([]*biz.Attachment, error) {
	var pos []AttachmentPO
	err := r.db.WithContext(ctx).GetDB().
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments for delete: %w", err)
	}

	if len(pos) == 0 {
		return nil, nil
	}

	err = r.db.WithContext(ctx).GetDB().
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Delete(&AttachmentPO{}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to delete attachments: %w", err)
	}

	atts := make([]*biz.Attachment, len(pos))
	for i := range pos {
		atts[i] = toDomain(&pos[i])
	}

	return atts, nil
}

func toPO(att *biz.Attachment) *AttachmentPO {
	return &AttachmentPO{
		ID:         att.ID,
		EntityType: att.EntityType,
		EntityID:   att.EntityID,
		Bucket:     att.Bucket,
		FilePath:   att.FilePath,
		FileName:   att.FileName,
		FileType:   att.FileType,
		FileURL:    att.FileURL,
		CreatedAt:  att.CreatedAt,
	}
}

func toDomain(po *AttachmentPO) *biz.Attachment {
	return &biz.Attachment{
		ID:         po.ID,
		EntityType: po.EntityType,
		EntityID:   po.EntityID,
		Bucket:     po.Bucket,
		FilePath:   po.FilePath,
		FileName:   po.FileName,
		FileType:   po.FileType,
		FileURL:    po.FileURL,
		CreatedAt:  po.CreatedAt,
	}
}
