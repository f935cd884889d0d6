package handlers

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/services"
	"github.com/reviewloop/backend/pkg/logger"
	"github.com/reviewloop/backend/pkg/response"
)

// Receipt uploads above this size are ignored rather than rejected.
const maxReceiptBytes = 10 << 20

type ReviewHandler struct {
	submissions *services.SubmissionService
	businesses  *services.BusinessService
	users       *services.UserService
}

func NewReviewHandler(submissions *services.SubmissionService, businesses *services.BusinessService, users *services.UserService) *ReviewHandler {
	return &ReviewHandler{submissions: submissions, businesses: businesses, users: users}
}

// Submit handles POST /api/reviews (multipart form with optional receipt).
func (h *ReviewHandler) Submit(c *gin.Context) {
	businessID, _ := strconv.ParseUint(c.PostForm("businessId"), 10, 32)
	rating, _ := strconv.Atoi(c.PostForm("rating"))

	input := services.SubmissionInput{
		BusinessID: uint(businessID),
		Text:       c.PostForm("text"),
		Rating:     rating,
		UserEmail:  c.PostForm("userEmail"),
		IP:         c.ClientIP(),
	}

	if file, err := c.FormFile("receipt"); err == nil && file.Size > 0 && file.Size <= maxReceiptBytes {
		f, err := file.Open()
		if err == nil {
			data, readErr := io.ReadAll(f)
			f.Close()
			if readErr == nil {
				input.ReceiptImage = data
			} else {
				logger.Warn().Err(readErr).Msg("failed to read receipt upload")
			}
		}
	}

	outcome, err := h.submissions.Submit(c.Request.Context(), input)
	switch {
	case err == services.ErrMissingFields:
		response.BadRequest(c, err.Error())
		return
	case err == services.ErrBusinessNotFound:
		response.NotFound(c, err.Error())
		return
	case err != nil:
		logger.Error().Err(err).Msg("review submission failed")
		response.ServerError(c, "failed to process review")
		return
	}

	if outcome.Approved {
		response.Created(c, outcome)
		return
	}
	response.Rejection(c, outcome)
}

// GetByBusiness handles GET /api/businesses/:id/reviews.
func (h *ReviewHandler) GetByBusiness(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid business id")
		return
	}

	reviews, err := h.businesses.GetReviews(uint(id))
	if err != nil {
		response.ServerError(c, "failed to load reviews")
		return
	}
	response.Success(c, reviews)
}

// GetByUser handles GET /api/users/:id/reviews.
func (h *ReviewHandler) GetByUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	reviews, err := h.users.GetReviews(uint(id))
	if err != nil {
		response.ServerError(c, "failed to load reviews")
		return
	}
	response.Success(c, reviews)
}

// GetByID handles GET /api/reviews/:id.
func (h *ReviewHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	review, err := h.submissions.GetReview(uint(id))
	if err == gorm.ErrRecordNotFound {
		response.NotFound(c, "review not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to load review")
		return
	}
	response.Success(c, review)
}
