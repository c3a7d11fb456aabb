package data

import (
	"context"
	"fmt"
	"time"

	"github.com/sitedesk/inspection-backend/internal/pkg/database"
	"github.com/sitedesk/inspection-backend/internal/site/biz"
	"gorm.io/gorm"
)

// SitePO is the database model for sites
type SitePO struct {
	ID        int64        `gorm:"primarykey"`
	Name      string       `gorm:"column:name;size:255;not null;index:idx_sites_name"`
	Region    string       `gorm:"column:region;size:100;index:idx_sites_region"`
	Status    string       `gorm:"column:status;size:20;not null;default:'active';index:idx_sites_status"`
	Address   string       `gorm:"column:address;size:500"`
	Contacts  []ContactPO  `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE"`
	Buildings []BuildingPO `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (SitePO) TableName() string {
	return "sites"
}

// ContactPO is the database model for site contacts
type ContactPO struct {
	ID     int64  `gorm:"primarykey"`
	SiteID int64  `gorm:"column:site_id;not null;index:idx_contacts_site_id"`
	Name   string `gorm:"column:name;size:255;not null"`
	Role   string `gorm:"column:role;size:100"`
	Email  string `gorm:"column:email;size:255"`
	Phone  string `gorm:"column:phone;size:50"`
}

func (ContactPO) TableName() string {
	return "contacts"
}

// BuildingPO is the database model for site buildings
type BuildingPO struct {
	ID      int64   `gorm:"primarykey"`
	SiteID  int64   `gorm:"column:site_id;not null;index:idx_buildings_site_id"`
	Name    string  `gorm:"column:name;size:255;not null"`
	Floors  int     `gorm:"column:floors;not null;default:1"`
	AreaSqm float64 `gorm:"column:area_sqm"`
}

func (BuildingPO) TableName() string {
	return "buildings"
}

// SiteRepo implements biz.SiteRepo on PostgreSQL
type SiteRepo struct {
	db *database.DB
}

// NewSiteRepo creates a site repository
func NewSiteRepo(db *database.DB) *SiteRepo {
	return &SiteRepo{db: db}
}

// Create inserts a site with its contacts and buildings
func (r *SiteRepo) Create(ctx context.Context, site *biz.Site) error {
	po := toPO(site)

	if err := r.db.WithContext(ctx).GetDB().Create(po).Error; err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}

	*site = *toDomain(po)

	return nil
}

// GetByID returns one site with its contacts and buildings
func (r *SiteRepo) GetByID(ctx context.Context, id int64) (*biz.Site, error) {
	var po SitePO
	err := r.db.WithContext(ctx).GetDB().
		Preload("Contacts").
		Preload("Buildings").
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	return toDomain(&po), nil
}

// List returns a filtered page of sites and the total match count
func (r *SiteRepo) List(ctx context.Context, req *biz.ListSitesRequest) ([]*biz.Site, int64, error) {
	query := r.db.WithContext(ctx).GetDB().Model(&SitePO{})

	if req.Query != "" {
		pattern := "%" + req.Query + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ?", pattern, pattern)
	}
	if req.Region != "" {
		query = query.Where("region = ?", req.Region)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sites: %w", err)
	}

	var pos []SitePO
	err := query.
		Preload("Contacts").
		Preload("Buildings").
		Order("name ASC").
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Find(&pos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sites: %w", err)
	}

	sites := make([]*biz.Site, len(pos))
	for i := range pos {
		sites[i] = toDomain(&pos[i])
	}

	return sites, total, nil
}

// Update replaces a site's fields and its contacts and buildings
func (r *SiteRepo) Update(ctx context.Context, site *biz.Site) error {
	po := toPO(site)

	err := r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		// Replace nested rows wholesale: the admin form submits the full
		// contact and building lists on every save.
		if err := tx.Where("site_id = ?", site.ID).Delete(&ContactPO{}).Error; err != nil {
			return err
		}
		if err := tx.Where("site_id = ?", site.ID).Delete(&BuildingPO{}).Error; err != nil {
			return err
		}

		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(po).Error
	})
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}

	*site = *toDomain(po)

	return nil
}

// Delete removes a site; contacts and buildings go with it via FK cascade
func (r *SiteRepo) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).GetDB().
		Select("Contacts", "Buildings").
		Delete(&SitePO{ID: id}).Error
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}

	return nil
}

func toPO(site *biz.Site) *SitePO {
	po := &SitePO{
		ID:        site.ID,
		Name:      site.Name,
		Region:    site.Region,
		Status:    site.Status,
		Address:   site.Address,
		CreatedAt: site.CreatedAt,
		UpdatedAt: site.UpdatedAt,
	}

	for _, c := range site.Contacts {
		po.Contacts = append(po.Contacts, ContactPO{
			ID:     c.ID,
			SiteID: site.ID,
			Name:   c.Name,
			Role:   c.Role,
			Email:  c.Email,
			Phone:  c.Phone,
		})
	}

	for _, b := range site.Buildings {
		po.Buildings = append(po.Buildings, BuildingPO{
			ID:      b.ID,
			SiteID:  site.ID,
			Name:    b.Name,
			Floors:  b.Floors,
			AreaSqm: b.AreaSqm,
		})
	}

	return po
}

func toDomain(po *SitePO) *biz.Site {
	site := &biz.Site{
		ID:        po.ID,
		Name:      po.Name,
		Region:    po.Region,
		Status:    po.Status,
		Address:   po.Address,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}

	for _, c := range po.Contacts {
		site.Contacts = append(site.Contacts, biz.Contact{
			ID:     c.ID,
			SiteID: c.SiteID,
			Name:   c.Name,
			Role:   c.Role,
			Email:  c.Email,
			Phone:  c.Phone,
		})
	}

	for _, b := range po.Buildings {
		site.Buildings = append(site.Buildings, biz.Building{
			ID:      b.ID,
			SiteID:  b.SiteID,
			Name:    b.Name,
			Floors:  b.Floors,
			AreaSqm: b.AreaSqm,
		})
	}

	return site
}
