package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/pkg/logger"
)

// UserService manages reviewer accounts. Accounts are usually created
// implicitly on the first approved review.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetByEmail looks up a user by normalized email.
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID looks up a user by primary key.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreate returns the user for the email, creating one with a random
// placeholder credential if absent. The placeholder is never communicated;
// the account is activated later through a password reset.
func (s *UserService) FindOrCreate(email string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate placeholder credential: %w", err)
	}

	user = models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         "client",
	}
	if err := s.db.Create(&user).Error; err != nil {
		// Lost a race with a concurrent submission for the same email.
		if isUniqueViolation(err) {
			var existing models.User
			if lookupErr := s.db.Where("email = ?", email).First(&existing).Error; lookupErr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	logger.Info().Uint("user_id", user.ID).Msg("created user from review submission")
	return &user, nil
}

// UpdateProfile sets the mutable profile fields.
func (s *UserService) UpdateProfile(id uint, name, phoneNumber string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if phoneNumber != "" {
		updates["phone_number"] = phoneNumber
	}
	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// GetReviews returns a user's review history, newest first.
func (s *UserService) GetReviews(userID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Business").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
