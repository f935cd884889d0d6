package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/pkg/metrics"
)

// Claim failure modes callers are expected to distinguish.
var (
	ErrBonusUnavailable = errors.New("bonus not found or inactive")
	ErrAlreadyClaimed   = errors.New("bonus already claimed")
)

// BonusService manages owner-defined rewards and user claims. Claim
// uniqueness per (user, bonus) is enforced here with a check-then-insert,
// backed by the composite unique index for concurrent claims.
type BonusService struct {
	db *gorm.DB
}

func NewBonusService(db *gorm.DB) *BonusService {
	return &BonusService{db: db}
}

// GetActiveByBusiness returns the active bonuses of a business,
// most-recent-first. The first entry is the auto-assignment candidate.
func (s *BonusService) GetActiveByBusiness(businessID uint) ([]models.Bonus, error) {
	var bonuses []models.Bonus
	err := s.db.Where("business_id = ? AND is_active = ?", businessID, true).
		Order("created_at DESC").
		Find(&bonuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load bonuses: %w", err)
	}
	return bonuses, nil
}

// Claim records that the user claimed the bonus. Returns
// ErrBonusUnavailable when the bonus is missing or inactive and
// ErrAlreadyClaimed when a claim row for the pair already exists.
func (s *BonusService) Claim(userID, bonusID uint) (*models.UserBonus, error) {
	var bonus models.Bonus
	err := s.db.Where("id = ? AND is_active = ?", bonusID, true).First(&bonus).Error
	if err == gorm.ErrRecordNotFound {
		metrics.BonusClaims.WithLabelValues("inactive").Inc()
		return nil, ErrBonusUnavailable
	}
	if err != nil {
		metrics.BonusClaims.WithLabelValues("error").Inc()
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.UserBonus{}).
		Where("user_id = ? AND bonus_id = ?", userID, bonusID).
		Count(&count).Error; err != nil {
		metrics.BonusClaims.WithLabelValues("error").Inc()
		return nil, err
	}
	if count > 0 {
		metrics.BonusClaims.WithLabelValues("already_claimed").Inc()
		return nil, ErrAlreadyClaimed
	}

	claim := models.UserBonus{
		UserID:  userID,
		BonusID: bonusID,
		Status:  "claimed",
	}
	if err := s.db.Create(&claim).Error; err != nil {
		// A concurrent claim can slip past the count check; the unique
		// index turns it into a constraint violation here.
		if isUniqueViolation(err) {
			metrics.BonusClaims.WithLabelValues("already_claimed").Inc()
			return nil, ErrAlreadyClaimed
		}
		metrics.BonusClaims.WithLabelValues("error").Inc()
		return nil, err
	}

	claim.Bonus = &bonus
	metrics.BonusClaims.WithLabelValues("claimed").Inc()
	return &claim, nil
}

// Create registers a new bonus for a business.
func (s *BonusService) Create(bonus *models.Bonus) error {
	return s.db.Create(bonus).Error
}

// Update modifies an existing bonus.
func (s *BonusService) Update(id uint, updates map[string]interface{}) (*models.Bonus, error) {
	var bonus models.Bonus
	if err := s.db.First(&bonus, id).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&bonus).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &bonus, nil
}

// Deactivate retires a bonus without deleting claim history.
func (s *BonusService) Deactivate(id uint) error {
	return s.db.Model(&models.Bonus{}).Where("id = ?", id).
		Update("is_active", false).Error
}

// GetUserClaims returns a user's claims with the bonus details preloaded.
func (s *BonusService) GetUserClaims(userID uint) ([]models.UserBonus, error) {
	var claims []models.UserBonus
	err := s.db.Preload("Bonus").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&claims).Error
	return claims, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
