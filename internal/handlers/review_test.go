package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/reviewloop/backend/internal/config"
	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/internal/services"
	"github.com/reviewloop/backend/pkg/response"
)

var handlerDBCounter int64

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlerdb%d?mode=memory&cache=shared", atomic.AddInt64(&handlerDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Business{}, &models.User{}, &models.Review{},
		&models.Bonus{}, &models.UserBonus{},
		&models.SystemConfig{}, &models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	systemConfig := services.NewSystemConfigService(db)
	systemLog := services.NewSystemLogService(db, systemConfig)
	businesses := services.NewBusinessService(db)
	users := services.NewUserService(db)
	bonuses := services.NewBonusService(db)
	validator := services.NewHeuristicValidator(services.NewClassifier())
	submissions := services.NewSubmissionService(
		db, businesses, users, bonuses,
		services.NewDuplicateDetector(db, systemConfig),
		services.NewOCRService(&config.OCRConfig{}),
		validator, systemLog,
	)

	r := gin.New()
	reviewHandler := NewReviewHandler(submissions, businesses, users)
	r.POST("/api/reviews", reviewHandler.Submit)
	r.GET("/api/reviews/:id", reviewHandler.GetByID)
	return r, db
}

func postReview(t *testing.T, r *gin.Engine, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/reviews", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitEndpointApproves(t *testing.T) {
	r, db := newTestRouter(t)
	business := models.Business{Name: "Testaurant", Industry: "restaurant"}
	if err := db.Create(&business).Error; err != nil {
		t.Fatalf("create business: %v", err)
	}

	w := postReview(t, r, map[string]string{
		"businessId": fmt.Sprint(business.ID),
		"text":       "Lovely food, attentive service, relaxed atmosphere, great cleanliness, fair price.",
		"rating":     "5",
		"userEmail":  "guest@example.com",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["approved"] != true {
		t.Errorf("approved = %v, want true", data["approved"])
	}

	var reviews int64
	db.Model(&models.Review{}).Count(&reviews)
	if reviews != 1 {
		t.Errorf("reviews = %d, want 1", reviews)
	}
}

func TestSubmitEndpointRejectsShortReview(t *testing.T) {
	r, db := newTestRouter(t)
	business := models.Business{Name: "Testaurant", Industry: "restaurant"}
	if err := db.Create(&business).Error; err != nil {
		t.Fatalf("create business: %v", err)
	}

	w := postReview(t, r, map[string]string{
		"businessId": fmt.Sprint(business.ID),
		"text":       "meh",
		"rating":     "2",
		"userEmail":  "guest@example.com",
	})

	// Policy rejections travel as 200, not as errors.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["approved"] != false {
		t.Errorf("approved = %v, want false", data["approved"])
	}
	if data["reason"] == "" {
		t.Error("expected a rejection reason")
	}

	var reviews int64
	db.Model(&models.Review{}).Count(&reviews)
	if reviews != 0 {
		t.Errorf("reviews = %d, want 0", reviews)
	}
}

func TestSubmitEndpointValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postReview(t, r, map[string]string{
		"text":      "no business id supplied",
		"rating":    "4",
		"userEmail": "guest@example.com",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = postReview(t, r, map[string]string{
		"businessId": "9999",
		"text":       "unknown business gets a not-found",
		"rating":     "4",
		"userEmail":  "guest@example.com",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
