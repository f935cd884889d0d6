package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/reviewloop/backend/internal/models"
)

var testDBCounter int64

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Business{},
		&models.User{},
		&models.Review{},
		&models.Bonus{},
		&models.UserBonus{},
		&models.LLMConfig{},
		&models.SystemConfig{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestBusiness(t *testing.T, db *gorm.DB, industry string) *models.Business {
	t.Helper()
	business := &models.Business{Name: "Testaurant", Industry: industry}
	if err := db.Create(business).Error; err != nil {
		t.Fatalf("failed to create business: %v", err)
	}
	return business
}
