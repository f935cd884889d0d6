package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
)

// Rejection texts for duplicate submissions.
const (
	DuplicateReason     = "Your review is too similar to a recent review. Please provide unique feedback."
	DuplicateSuggestion = "Try to add more details or share a different aspect of your experience."
)

const defaultDuplicateWindow = 10

// DuplicateDetector compares a candidate review against the most recent
// reviews of the same business. Exact match only, after normalization.
type DuplicateDetector struct {
	db           *gorm.DB
	systemConfig *SystemConfigService
}

func NewDuplicateDetector(db *gorm.DB, systemConfig *SystemConfigService) *DuplicateDetector {
	return &DuplicateDetector{db: db, systemConfig: systemConfig}
}

func (d *DuplicateDetector) windowSize() int {
	if d.systemConfig != nil {
		if n := d.systemConfig.GetInt("duplicate_window_size", defaultDuplicateWindow); n > 0 {
			return n
		}
	}
	return defaultDuplicateWindow
}

// IsDuplicate reports whether the normalized text exactly matches any of the
// last N reviews for the business. Read-only.
func (d *DuplicateDetector) IsDuplicate(businessID uint, text string) (bool, error) {
	var recent []models.Review
	err := d.db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(d.windowSize()).
		Find(&recent).Error
	if err != nil {
		return false, err
	}

	normalized := normalizeReviewText(text)
	for _, review := range recent {
		if normalizeReviewText(review.Text) == normalized {
			return true, nil
		}
	}
	return false, nil
}

func normalizeReviewText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
