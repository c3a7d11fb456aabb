package service

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitedesk/inspection-backend/internal/pkg/response"
	"github.com/sitedesk/inspection-backend/internal/site/biz"
	"go.uber.org/zap"
)

// SiteService exposes the site management HTTP API
type SiteService struct {
	siteUseCase *biz.SiteUseCase
	logger      *zap.Logger
}

// NewSiteService creates a site service
func NewSiteService(siteUseCase *biz.SiteUseCase, logger *zap.Logger) *SiteService {
	return &SiteService{
		siteUseCase: siteUseCase,
		logger:      logger,
	}
}

// RegisterRoutes registers the site routes
func (s *SiteService) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/sites", s.CreateSite)
	r.GET("/sites", s.ListSites)
	r.GET("/sites/:id", s.GetSite)
	r.PUT("/sites/:id", s.UpdateSite)
	r.DELETE("/sites/:id", s.DeleteSite)
}

// ContactRequest is a contact in a site create/update payload
type ContactRequest struct {
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BuildingRequest is a building in a site create/update payload
type BuildingRequest struct {
	Name    string  `json:"name" binding:"required"`
	Floors  int     `json:"floors"`
	AreaSqm float64 `json:"area_sqm"`
}

// SiteRequest is the site create/update payload
type SiteRequest struct {
	Name      string            `json:"name" binding:"required"`
	Region    string            `json:"region"`
	Status    string            `json:"status"`
	Address   string            `json:"address"`
	Contacts  []ContactRequest  `json:"contacts"`
	Buildings []BuildingRequest `json:"buildings"`
}

// SiteResponse is the JSON shape of a site
type SiteResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Region    string             `json:"region,omitempty"`
	Status    string             `json:"status"`
	Address   string             `json:"address,omitempty"`
	Contacts  []ContactResponse  `json:"contacts"`
	Buildings []BuildingResponse `json:"buildings"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

// ContactResponse is the JSON shape of a contact
type ContactResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// BuildingResponse is the JSON shape of a building
type BuildingResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Floors  int     `json:"floors"`
	AreaSqm float64 `json:"area_sqm,omitempty"`
}

// CreateSite creates a site
func (s *SiteService) CreateSite(c *gin.Context) {
	var req SiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid parameters: name required")
		return
	}

	site, err := s.siteUseCase.CreateSite(c.Request.Context(), toSite(&req, 0))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, toSiteResponse(site))
}

// GetSite returns one site
func (s *SiteService) GetSite(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid site id")
		return
	}

	site, err := s.siteUseCase.GetSite(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, toSiteResponse(site))
}

// ListSites returns a filtered page of sites
func (s *SiteService) ListSites(c *gin.Context) {
	var req struct {
		Query    string `form:"q"`
		Region   string `form:"region"`
		Status   string `form:"status"`
		Page     int    `form:"page,default=1"`
		PageSize int    `form:"page_size,default=20"`
	}

	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid parameters")
		return
	}

	sites, total, err := s.siteUseCase.ListSites(c.Request.Context(), &biz.ListSitesRequest{
		Query:    req.Query,
		Region:   req.Region,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	items := make([]SiteResponse, len(sites))
	for i, site := range sites {
		items[i] = *toSiteResponse(site)
	}

	response.Success(c, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":      req.Page,
			"page_size": req.PageSize,
			"total":     total,
		},
	})
}

// UpdateSite replaces a site's fields, contacts and buildings
func (s *SiteService) UpdateSite(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid site id")
		return
	}

	var req SiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid parameters: name required")
		return
	}

	site, err := s.siteUseCase.UpdateSite(c.Request.Context(), toSite(&req, id))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, toSiteResponse(site))
}

// DeleteSite deletes a site and its attachments
func (s *SiteService) DeleteSite(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid site id")
		return
	}

	if err := s.siteUseCase.DeleteSite(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, nil)
}

func toSite(req *SiteRequest, id int64) *biz.Site {
	site := &biz.Site{
		ID:      id,
		Name:    req.Name,
		Region:  req.Region,
		Status:  req.Status,
		Address: req.Address,
	}

	for _, c := range req.Contacts {
		site.Contacts = append(site.Contacts, biz.Contact{
			Name:  c.Name,
			Role:  c.Role,
			Email: c.Email,
			Phone: c.Phone,
		})
	}

	for _, b := range req.Buildings {
		site.Buildings = append(site.Buildings, biz.Building{
			Name:    b.Name,
			Floors:  b.Floors,
			AreaSqm: b.AreaSqm,
		})
	}

	return site
}

func toSiteResponse(site *biz.Site) *SiteResponse {
	resp := &SiteResponse{
		ID:        site.ID,
		Name:      site.Name,
		Region:    site.Region,
		Status:    site.Status,
		Address:   site.Address,
		Contacts:  []ContactResponse{},
		Buildings: []BuildingResponse{},
		CreatedAt: site.CreatedAt.Format(time.RFC3339),
		UpdatedAt: site.UpdatedAt.Format(time.RFC3339),
	}

	for _, c := range site.Contacts {
		resp.Contacts = append(resp.Contacts, ContactResponse{
			ID:    c.ID,
			Name:  c.Name,
			Role:  c.Role,
			Email: c.Email,
			Phone: c.Phone,
		})
	}

	for _, b := range site.Buildings {
		resp.Buildings = append(resp.Buildings, BuildingResponse{
			ID:      b.ID,
			Name:    b.Name,
			Floors:  b.Floors,
			AreaSqm: b.AreaSqm,
		})
	}

	return resp
}
