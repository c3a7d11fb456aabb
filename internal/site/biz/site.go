package biz

import (
	"context"
	"strings"
	"time"

	attachbiz "github.com/sitedesk/inspection-backend/internal/attachment/biz"
	"github.com/sitedesk/inspection-backend/internal/pkg/errors"
	"github.com/sitedesk/inspection-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Site statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// Site is an inspection site with its contacts and buildings
type Site struct {
	ID        int64
	Name      string
	Region    string
	Status    string
	Address   string
	Contacts  []Contact
	Buildings []Building
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contact is a person responsible for a site
type Contact struct {
	ID     int64
	SiteID int64
	Name   string
	Role   string
	Email  string
	Phone  string
}

// Building is a structure belonging to a site
type Building struct {
	ID      int64
	SiteID  int64
	Name    string
	Floors  int
	AreaSqm float64
}

// ListSitesRequest carries the list filters of the admin UI
type ListSitesRequest struct {
	Query    string // free-text match on name and address
	Region   string
	Status   string
	Page     int
	PageSize int
}

// SiteRepo is the site persistence interface
type SiteRepo interface {
	Create(ctx context.Context, site *Site) error
	GetByID(ctx context.Context, id int64) (*Site, error)
	List(ctx context.Context, req *ListSitesRequest) ([]*Site, int64, error)
	Update(ctx context.Context, site *Site) error
	Delete(ctx context.Context, id int64) error
}

// SiteCache caches site reads
type SiteCache interface {
	Get(ctx context.Context, id int64) (*Site, bool)
	Set(ctx context.Context, site *Site)
	Invalidate(ctx context.Context, id int64)
}

// AttachmentCleaner removes the attachments of a deleted entity
type AttachmentCleaner interface {
	RemoveByEntity(ctx context.Context, entityType string, entityID int64) (int, error)
}

// SiteUseCase implements the site management operations
type SiteUseCase struct {
	repo        SiteRepo
	cache       SiteCache
	attachments AttachmentCleaner
	logger      *logger.Logger
}

// NewSiteUseCase creates a site use case
func NewSiteUseCase(repo SiteRepo, cache SiteCache, attachments AttachmentCleaner, log *logger.Logger) *SiteUseCase {
	return &SiteUseCase{
		repo:        repo,
		cache:       cache,
		attachments: attachments,
		logger:      log,
	}
}

// CreateSite validates and persists a new site
func (uc *SiteUseCase) CreateSite(ctx context.Context, site *Site) (*Site, error) {
	if err := validateSite(site); err != nil {
		return nil, err
	}

	if site.Status == "" {
		site.Status = StatusActive
	}

	now := time.Now()
	site.CreatedAt = now
	site.UpdatedAt = now

	if err := uc.repo.Create(ctx, site); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternalServer, "failed to create site")
	}

	return site, nil
}

// GetSite returns one site, served from cache when possible
func (uc *SiteUseCase) GetSite(ctx context.Context, id int64) (*Site, error) {
	if site, ok := uc.cache.Get(ctx, id); ok {
		return site, nil
	}

	site, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSiteNotFound)
	}

	uc.cache.Set(ctx, site)

	return site, nil
}

// ListSites returns a filtered page of sites and the total match count
func (uc *SiteUseCase) ListSites(ctx context.Context, req *ListSitesRequest) ([]*Site, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	if req.Status != "" && !validStatus(req.Status) {
		return nil, 0, errors.New(errors.ErrSiteInvalidInput, "invalid status filter")
	}

	sites, total, err := uc.repo.List(ctx, req)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrInternalServer, "failed to list sites")
	}

	return sites, total, nil
}

// UpdateSite validates and persists changes to a site
func (uc *SiteUseCase) UpdateSite(ctx context.Context, site *Site) (*Site, error) {
	if site.ID <= 0 {
		return nil, errors.New(errors.ErrSiteInvalidInput, "site id is required")
	}
	if err := validateSite(site); err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetByID(ctx, site.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSiteNotFound)
	}

	site.CreatedAt = existing.CreatedAt
	site.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, site); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternalServer, "failed to update site")
	}

	uc.cache.Invalidate(ctx, site.ID)

	return site, nil
}

// DeleteSite removes a site and cascades to its attachments
func (uc *SiteUseCase) DeleteSite(ctx context.Context, id int64) error {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrSiteNotFound)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrInternalServer, "failed to delete site")
	}

	uc.cache.Invalidate(ctx, id)

	removed, err := uc.attachments.RemoveByEntity(ctx, attachbiz.EntitySite, id)
	if err != nil {
		// The site row is already gone; attachment cleanup failure is
		// reported but does not undo the delete.
		uc.logger.Error("failed to clean up site attachments",
			zap.Int64("site_id", id),
			zap.Error(err),
		)
		return nil
	}

	if removed > 0 {
		uc.logger.Info("removed site attachments",
			zap.Int64("site_id", id),
			zap.Int("count", removed),
		)
	}

	return nil
}

func validateSite(site *Site) error {
	if strings.TrimSpace(site.Name) == "" {
		return errors.New(errors.ErrSiteInvalidInput, "name is required")
	}
	if site.Status != "" && !validStatus(site.Status) {
		return errors.New(errors.ErrSiteInvalidInput, "status must be active, inactive or archived")
	}
	return nil
}

func validStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	}
	return false
}
