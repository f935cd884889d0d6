package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/internal/services"
	"github.com/reviewloop/backend/pkg/response"
)

type BusinessHandler struct {
	businesses *services.BusinessService
	bonuses    *services.BonusService
}

func NewBusinessHandler(businesses *services.BusinessService, bonuses *services.BonusService) *BusinessHandler {
	return &BusinessHandler{businesses: businesses, bonuses: bonuses}
}

// List handles GET /api/businesses?owner_id=.
func (h *BusinessHandler) List(c *gin.Context) {
	ownerID, _ := strconv.ParseUint(c.Query("owner_id"), 10, 32)
	businesses, err := h.businesses.List(uint(ownerID))
	if err != nil {
		response.ServerError(c, "failed to load businesses")
		return
	}
	response.Success(c, businesses)
}

// Get handles GET /api/businesses/:id.
func (h *BusinessHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid business id")
		return
	}

	business, err := h.businesses.GetByID(uint(id))
	if err == gorm.ErrRecordNotFound {
		response.NotFound(c, "business not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to load business")
		return
	}
	response.Success(c, business)
}

// GetByQRToken handles GET /api/qr/:token — the landing lookup after a scan.
func (h *BusinessHandler) GetByQRToken(c *gin.Context) {
	business, err := h.businesses.GetByQRToken(c.Param("token"))
	if err == gorm.ErrRecordNotFound {
		response.NotFound(c, "business not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to load business")
		return
	}
	response.Success(c, business)
}

type createBusinessRequest struct {
	Name     string `json:"name" binding:"required"`
	Industry string `json:"industry"`
	Location string `json:"location"`
	OwnerID  uint   `json:"owner_id"`
	LogoURL  string `json:"logo_url"`
}

// Create handles POST /api/businesses.
func (h *BusinessHandler) Create(c *gin.Context) {
	var req createBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	business := models.Business{
		Name:     req.Name,
		Industry: req.Industry,
		Location: req.Location,
		OwnerID:  req.OwnerID,
		LogoURL:  req.LogoURL,
	}
	if err := h.businesses.Create(&business); err != nil {
		response.ServerError(c, "failed to create business")
		return
	}
	response.Created(c, business)
}

type updateBusinessRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Location string `json:"location"`
	LogoURL  string `json:"logo_url"`
}

// Update handles PUT /api/businesses/:id.
func (h *BusinessHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid business id")
		return
	}

	var req updateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Industry != "" {
		updates["industry"] = req.Industry
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.LogoURL != "" {
		updates["logo_url"] = req.LogoURL
	}

	business, err := h.businesses.Update(uint(id), updates)
	if err == gorm.ErrRecordNotFound {
		response.NotFound(c, "business not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to update business")
		return
	}
	response.Success(c, business)
}

// Delete handles DELETE /api/businesses/:id (soft delete).
func (h *BusinessHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid business id")
		return
	}

	if err := h.businesses.Delete(uint(id)); err != nil {
		response.ServerError(c, "failed to delete business")
		return
	}
	response.Success(c, nil)
}

// Analytics handles GET /api/businesses/:id/analytics.
func (h *BusinessHandler) Analytics(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid business id")
		return
	}

	analytics, err := h.businesses.GetAnalytics(uint(id))
	if err != nil {
		response.ServerError(c, "failed to load analytics")
		return
	}
	response.Success(c, analytics)
}

// Bonuses handles GET /api/businesses/:id/bonuses — active bonuses only.
func (h *BusinessHandler) Bonuses(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid business id")
		return
	}

	bonuses, err := h.bonuses.GetActiveByBusiness(uint(id))
	if err != nil {
		response.ServerError(c, "failed to load bonuses")
		return
	}
	response.Success(c, bonuses)
}
