package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/internal/services"
	"github.com/reviewloop/backend/pkg/response"
)

type BonusHandler struct {
	bonuses *services.BonusService
}

func NewBonusHandler(bonuses *services.BonusService) *BonusHandler {
	return &BonusHandler{bonuses: bonuses}
}

type createBonusRequest struct {
	BusinessID  uint   `json:"business_id" binding:"required"`
	Description string `json:"description" binding:"required"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	Conditions  string `json:"conditions"`
}

// Create handles POST /api/bonuses.
func (h *BonusHandler) Create(c *gin.Context) {
	var req createBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	bonus := models.Bonus{
		BusinessID:  req.BusinessID,
		Description: req.Description,
		Type:        req.Type,
		Value:       req.Value,
		Conditions:  req.Conditions,
		IsActive:    true,
	}
	if err := h.bonuses.Create(&bonus); err != nil {
		response.ServerError(c, "failed to create bonus")
		return
	}
	response.Created(c, bonus)
}

type updateBonusRequest struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	Conditions  string `json:"conditions"`
	IsActive    *bool  `json:"is_active"`
}

// Update handles PUT /api/bonuses/:id.
func (h *BonusHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bonus id")
		return
	}

	var req updateBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Value != "" {
		updates["value"] = req.Value
	}
	if req.Conditions != "" {
		updates["conditions"] = req.Conditions
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	bonus, err := h.bonuses.Update(uint(id), updates)
	if err == gorm.ErrRecordNotFound {
		response.NotFound(c, "bonus not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to update bonus")
		return
	}
	response.Success(c, bonus)
}

// Deactivate handles DELETE /api/bonuses/:id — retires without deleting
// claim history.
func (h *BonusHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bonus id")
		return
	}

	if err := h.bonuses.Deactivate(uint(id)); err != nil {
		response.ServerError(c, "failed to deactivate bonus")
		return
	}
	response.Success(c, nil)
}
