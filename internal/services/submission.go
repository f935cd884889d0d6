package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/pkg/logger"
	"github.com/reviewloop/backend/pkg/metrics"
)

// Terminal submission errors surfaced to the caller before any side effect.
var (
	ErrMissingFields    = errors.New("missing required fields: businessId, text, rating, userEmail")
	ErrBusinessNotFound = errors.New("business not found")
)

// SubmissionInput is one review submission from the QR flow.
type SubmissionInput struct {
	BusinessID   uint
	Text         string
	Rating       int
	UserEmail    string
	ReceiptImage []byte
	IP           string
}

// UserSummary is the caller-visible slice of the submitting user.
type UserSummary struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// SubmissionOutcome is the result of a processed submission. Approved
// carries the persisted rows; a rejection carries the validator's reasoning
// and persists nothing.
type SubmissionOutcome struct {
	Approved            bool              `json:"approved"`
	Message             string            `json:"message"`
	Reason              string            `json:"reason,omitempty"`
	Suggestions         string            `json:"suggestions,omitempty"`
	Sentiment           string            `json:"sentiment,omitempty"`
	Topics              []string          `json:"topics"`
	CoveredAspects      []string          `json:"covered_aspects"`
	MissingAspects      []string          `json:"missing_aspects"`
	ConfirmationMessage string            `json:"confirmation_message,omitempty"`
	Review              *models.Review    `json:"review,omitempty"`
	User                *UserSummary      `json:"user,omitempty"`
	AssignedBonus       *models.UserBonus `json:"assigned_bonus"`
	ReceiptProcessed    bool              `json:"receipt_processed"`
}

// SubmissionService runs the review pipeline: duplicate detection, receipt
// extraction, quality validation, persistence and bonus auto-assignment.
type SubmissionService struct {
	db         *gorm.DB
	businesses *BusinessService
	users      *UserService
	bonuses    *BonusService
	duplicates *DuplicateDetector
	ocr        *OCRService
	validator  ReviewValidator
	systemLog  *SystemLogService
}

func NewSubmissionService(
	db *gorm.DB,
	businesses *BusinessService,
	users *UserService,
	bonuses *BonusService,
	duplicates *DuplicateDetector,
	ocr *OCRService,
	validator ReviewValidator,
	systemLog *SystemLogService,
) *SubmissionService {
	return &SubmissionService{
		db:         db,
		businesses: businesses,
		users:      users,
		bonuses:    bonuses,
		duplicates: duplicates,
		ocr:        ocr,
		validator:  validator,
		systemLog:  systemLog,
	}
}

// Submit processes one review end to end. Policy rejections (duplicate,
// insufficient quality) come back as a non-approved outcome with nil error;
// errors are reserved for invalid input, unknown business and storage
// failures.
func (s *SubmissionService) Submit(ctx context.Context, input SubmissionInput) (*SubmissionOutcome, error) {
	if input.BusinessID == 0 || strings.TrimSpace(input.Text) == "" ||
		input.Rating == 0 || strings.TrimSpace(input.UserEmail) == "" {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return nil, ErrMissingFields
	}

	business, err := s.businesses.GetByID(input.BusinessID)
	if err == gorm.ErrRecordNotFound {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		metrics.Submissions.WithLabelValues("error").Inc()
		return nil, err
	}

	duplicate, err := s.duplicates.IsDuplicate(business.ID, input.Text)
	if err != nil {
		metrics.Submissions.WithLabelValues("error").Inc()
		return nil, err
	}
	if duplicate {
		metrics.Submissions.WithLabelValues("rejected_duplicate").Inc()
		logger.Info().Uint("business_id", business.ID).Msg("duplicate review rejected")
		return &SubmissionOutcome{
			Approved:       false,
			Message:        "Duplicate review detected",
			Reason:         DuplicateReason,
			Suggestions:    DuplicateSuggestion,
			Topics:         []string{},
			CoveredAspects: []string{},
			MissingAspects: []string{},
		}, nil
	}

	var receiptText string
	if len(input.ReceiptImage) > 0 {
		ocrResult := s.ocr.ExtractText(ctx, input.ReceiptImage)
		if ocrResult.Success {
			receiptText = ocrResult.Text
		} else {
			// Receipt extraction is best-effort; the review proceeds
			// without receipt text.
			logger.Warn().Str("error", ocrResult.Error).Uint("business_id", business.ID).Msg("receipt OCR failed")
			s.systemLog.LogWarning("submission", "ocr_failed", ocrResult.Error, nil, input.IP)
		}
	}

	assessment := s.validator.Validate(ctx, input.Text, business.Industry)

	if !assessment.Approved {
		metrics.Submissions.WithLabelValues("rejected_quality").Inc()
		return &SubmissionOutcome{
			Approved:            false,
			Message:             "Review needs improvement",
			Reason:              assessment.Reason,
			Suggestions:         assessment.Suggestions,
			Sentiment:           assessment.Sentiment,
			Topics:              assessment.Topics,
			CoveredAspects:      assessment.CoveredAspects,
			MissingAspects:      assessment.MissingAspects,
			ConfirmationMessage: assessment.ConfirmationMessage,
		}, nil
	}

	user, err := s.users.FindOrCreate(input.UserEmail)
	if err != nil {
		metrics.Submissions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	review := models.Review{
		BusinessID:  business.ID,
		UserID:      user.ID,
		Text:        input.Text,
		Rating:      input.Rating,
		ReceiptText: receiptText,
		Sentiment:   assessment.Sentiment,
		Topics:      strings.Join(assessment.Topics, ","),
	}
	if err := s.db.Create(&review).Error; err != nil {
		metrics.Submissions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist review: %w", err)
	}

	assignedBonus := s.autoAssignBonus(business.ID, user.ID, input.IP)

	metrics.Submissions.WithLabelValues("approved").Inc()
	s.systemLog.LogInfo("submission", "review_approved",
		fmt.Sprintf("review %d approved for business %d", review.ID, business.ID),
		&user.ID, input.IP)

	return &SubmissionOutcome{
		Approved:            true,
		Message:             "Review submitted successfully",
		Sentiment:           assessment.Sentiment,
		Topics:              assessment.Topics,
		CoveredAspects:      assessment.CoveredAspects,
		MissingAspects:      assessment.MissingAspects,
		ConfirmationMessage: assessment.ConfirmationMessage,
		Review:              &review,
		User:                &UserSummary{ID: user.ID, Email: user.Email},
		AssignedBonus:       assignedBonus,
		ReceiptProcessed:    receiptText != "",
	}, nil
}

// autoAssignBonus claims the newest active bonus for the user. Claim
// failures never fail the submission.
func (s *SubmissionService) autoAssignBonus(businessID, userID uint, ip string) *models.UserBonus {
	bonuses, err := s.bonuses.GetActiveByBusiness(businessID)
	if err != nil {
		logger.Warn().Err(err).Uint("business_id", businessID).Msg("could not load bonuses")
		return nil
	}
	if len(bonuses) == 0 {
		return nil
	}

	claim, err := s.bonuses.Claim(userID, bonuses[0].ID)
	if err != nil {
		logger.Info().Err(err).Uint("user_id", userID).Uint("bonus_id", bonuses[0].ID).Msg("could not assign bonus")
		s.systemLog.LogInfo("submission", "bonus_claim_skipped", err.Error(), &userID, ip)
		return nil
	}
	return claim
}

// GetReview returns a single review with its relations.
func (s *SubmissionService) GetReview(id uint) (*models.Review, error) {
	var review models.Review
	err := s.db.Preload("Business").Preload("User").First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}
