package service

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitedesk/inspection-backend/internal/attachment/biz"
	apperrors "github.com/sitedesk/inspection-backend/internal/pkg/errors"
	"github.com/sitedesk/inspection-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// AttachmentService exposes the attachment HTTP API
type AttachmentService struct {
	attachUseCase *biz.AttachmentUseCase
	logger        *zap.Logger
}

// NewAttachmentService creates an attachment service
func NewAttachmentService(attachUseCase *biz.AttachmentUseCase, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{
		attachUseCase: attachUseCase,
		logger:        logger,
	}
}

// RegisterRoutes registers the attachment routes
func (s *AttachmentService) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/attachments/upload", s.Upload)
	r.POST("/attachments", s.Register)
	r.GET("/attachments", s.List)
}

// AttachmentResponse is the JSON shape of an attachment record
type AttachmentResponse struct {
	ID         int64  `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Bucket     string `json:"bucket,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	FileType   string `json:"file_type"`
	FileURL    string `json:"file_url,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Upload ingests a multipart file upload.
//
// The response contract matches what the admin front end consumes: 200 with
// the bare attachment record on success, plain-text reasons on error.
func (s *AttachmentService) Upload(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.logger.Error("failed to read upload body", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to read request body")
		return
	}

	att, err := s.attachUseCase.Ingest(c.Request.Context(), &biz.IngestRequest{
		Method:      c.Request.Method,
		ContentType: c.GetHeader("Content-Type"),
		Body:        body,
		IsBase64:    false,
	})
	if err != nil {
		code := apperrors.ExtractCode(err)
		status := apperrors.GetHTTPStatus(code)
		if status >= http.StatusInternalServerError {
			s.logger.Error("attachment ingestion failed", zap.Error(err))
		}
		c.String(status, apperrors.FormatError(code, apperrors.GetDetails(err)))
		return
	}

	c.JSON(http.StatusOK, toAttachmentResponse(att))
}

// Register records a pre-uploaded file by URL
func (s *AttachmentService) Register(c *gin.Context) {
	var req struct {
		EntityType string `json:"entity_type" binding:"required"`
		EntityID   int64  `json:"entity_id" binding:"required,min=1"`
		FileURL    string `json:"file_url" binding:"required"`
		FileName   string `json:"file_name"`
		FileType   string `json:"file_type"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid parameters: entity_type, entity_id and file_url required")
		return
	}

	att, err := s.attachUseCase.Register(c.Request.Context(), &biz.RegisterInput{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		FileURL:    req.FileURL,
		FileName:   req.FileName,
		FileType:   req.FileType,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, toAttachmentResponse(att))
}

// List returns the attachments owned by one entity
func (s *AttachmentService) List(c *gin.Context) {
	entityType := c.Query("entity_type")
	entityID, err := strconv.ParseInt(c.Query("entity_id"), 10, 64)
	if err != nil || entityType == "" {
		response.BadRequest(c, "invalid parameters: entity_type and numeric entity_id required")
		return
	}

	atts, err := s.attachUseCase.ListByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	items := make([]AttachmentResponse, len(atts))
	for i, att := range atts {
		items[i] = *toAttachmentResponse(att)
	}

	response.Success(c, gin.H{"items": items})
}

func toAttachmentResponse(att *biz.Attachment) *AttachmentResponse {
	return &AttachmentResponse{
		ID:         att.ID,
		EntityType: att.EntityType,
		EntityID:   att.EntityID,
		Bucket:     att.Bucket,
		FilePath:   att.FilePath,
		FileName:   att.FileName,
		FileType:   att.FileType,
		FileURL:    att.FileURL,
		CreatedAt:  att.CreatedAt.Format(time.RFC3339),
	}
}
