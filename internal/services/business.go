package services

import (
	"math"

	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
)

// BusinessService manages venues and their owner-facing analytics.
type BusinessService struct {
	db *gorm.DB
}

func NewBusinessService(db *gorm.DB) *BusinessService {
	return &BusinessService{db: db}
}

func (s *BusinessService) GetByID(id uint) (*models.Business, error) {
	var business models.Business
	if err := s.db.First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// GetByQRToken resolves the token embedded in a scanned QR code.
func (s *BusinessService) GetByQRToken(token string) (*models.Business, error) {
	var business models.Business
	if err := s.db.Where("qr_token = ?", token).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// List returns businesses, optionally restricted to one owner.
func (s *BusinessService) List(ownerID uint) ([]models.Business, error) {
	var businesses []models.Business
	query := s.db.Order("created_at DESC")
	if ownerID > 0 {
		query = query.Where("owner_id = ?", ownerID)
	}
	err := query.Find(&businesses).Error
	return businesses, err
}

func (s *BusinessService) Create(business *models.Business) error {
	return s.db.Create(business).Error
}

func (s *BusinessService) Update(id uint, updates map[string]interface{}) (*models.Business, error) {
	var business models.Business
	if err := s.db.First(&business, id).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&business).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (s *BusinessService) Delete(id uint) error {
	return s.db.Delete(&models.Business{}, id).Error
}

// GetReviews returns all reviews of a business, newest first.
func (s *BusinessService) GetReviews(businessID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("User").
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Analytics is the owner dashboard summary for one business.
type Analytics struct {
	TotalReviews       int64            `json:"total_reviews"`
	AverageRating      float64          `json:"average_rating"`
	SentimentBreakdown map[string]int64 `json:"sentiment_breakdown"`
	RecentReviews      []models.Review  `json:"recent_reviews"`
}

// GetAnalytics aggregates review counts, the average rating rounded to one
// decimal, a sentiment breakdown and the five most recent reviews.
func (s *BusinessService) GetAnalytics(businessID uint) (*Analytics, error) {
	analytics := &Analytics{
		SentimentBreakdown: map[string]int64{},
	}

	if err := s.db.Model(&models.Review{}).
		Where("business_id = ?", businessID).
		Count(&analytics.TotalReviews).Error; err != nil {
		return nil, err
	}

	if analytics.TotalReviews > 0 {
		var avg float64
		if err := s.db.Model(&models.Review{}).
			Where("business_id = ?", businessID).
			Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return nil, err
		}
		analytics.AverageRating = math.Round(avg*10) / 10
	}

	rows := []struct {
		Sentiment string
		Count     int64
	}{}
	if err := s.db.Model(&models.Review{}).
		Where("business_id = ? AND sentiment <> ''", businessID).
		Select("sentiment, COUNT(*) as count").
		Group("sentiment").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		analytics.SentimentBreakdown[row.Sentiment] = row.Count
	}

	if err := s.db.Preload("User").
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(5).
		Find(&analytics.RecentReviews).Error; err != nil {
		return nil, err
	}

	return analytics, nil
}
