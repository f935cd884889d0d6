package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/services"
	"github.com/reviewloop/backend/pkg/response"
)

type UserHandler struct {
	users   *services.UserService
	bonuses *services.BonusService
}

func NewUserHandler(users *services.UserService, bonuses *services.BonusService) *UserHandler {
	return &UserHandler{users: users, bonuses: bonuses}
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.users.GetByID(uint(id))
	if err == gorm.ErrRecordNotFound {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to load user")
		return
	}
	response.Success(c, user)
}

// GetByEmail handles GET /api/users?email=.
func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "email query parameter is required")
		return
	}

	user, err := h.users.GetByEmail(email)
	if err == gorm.ErrRecordNotFound {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to load user")
		return
	}
	response.Success(c, user)
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateProfile handles PUT /api/users/:id.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.users.UpdateProfile(uint(id), req.Name, req.PhoneNumber)
	if err == gorm.ErrRecordNotFound {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to update profile")
		return
	}
	response.Success(c, user)
}

// GetBonuses handles GET /api/users/:id/bonuses — claimed bonuses.
func (h *UserHandler) GetBonuses(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	claims, err := h.bonuses.GetUserClaims(uint(id))
	if err != nil {
		response.ServerError(c, "failed to load claimed bonuses")
		return
	}
	response.Success(c, claims)
}
