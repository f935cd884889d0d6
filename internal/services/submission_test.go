package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/config"
	"github.com/reviewloop/backend/internal/models"
)

type stubValidator struct {
	result ValidationResult
}

func (s stubValidator) Validate(context.Context, string, string) ValidationResult {
	return s.result
}

func approvingValidator() stubValidator {
	return stubValidator{result: ValidationResult{
		Approved:            true,
		Reason:              "ok",
		Sentiment:           SentimentPositive,
		Topics:              []string{"food", "service"},
		CoveredAspects:      []string{"food quality", "service", "atmosphere", "cleanliness", "price/value"},
		MissingAspects:      []string{},
		ConfirmationMessage: "Thank you!",
	}}
}

func newTestSubmissionService(t *testing.T, db *gorm.DB, validator ReviewValidator) *SubmissionService {
	t.Helper()
	systemConfig := NewSystemConfigService(db)
	return NewSubmissionService(
		db,
		NewBusinessService(db),
		NewUserService(db),
		NewBonusService(db),
		NewDuplicateDetector(db, systemConfig),
		NewOCRService(&config.OCRConfig{}),
		validator,
		NewSystemLogService(db, systemConfig),
	)
}

func TestSubmitApprovedEndToEnd(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	bonus := models.Bonus{BusinessID: business.ID, Description: "free dessert", IsActive: true}
	if err := db.Create(&bonus).Error; err != nil {
		t.Fatalf("create bonus: %v", err)
	}

	svc := newTestSubmissionService(t, db, approvingValidator())

	outcome, err := svc.Submit(context.Background(), SubmissionInput{
		BusinessID: business.ID,
		Text:       "Excellent food, friendly service, cozy atmosphere, impeccable cleanliness, fair price.",
		Rating:     5,
		UserEmail:  "Guest@Example.com",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !outcome.Approved {
		t.Fatalf("expected approval, got rejection: %q", outcome.Reason)
	}
	if outcome.Review == nil || outcome.Review.ID == 0 {
		t.Fatal("expected a persisted review")
	}
	if outcome.Review.Sentiment != SentimentPositive {
		t.Errorf("review sentiment = %q, want positive", outcome.Review.Sentiment)
	}
	if outcome.Review.Topics != "food,service" {
		t.Errorf("review topics = %q, want comma-joined topics", outcome.Review.Topics)
	}
	if outcome.User == nil || outcome.User.Email != "guest@example.com" {
		t.Errorf("user summary = %+v, want normalized email", outcome.User)
	}
	if outcome.AssignedBonus == nil {
		t.Fatal("expected the active bonus to be auto-assigned")
	}
	if outcome.ReceiptProcessed {
		t.Error("no receipt was uploaded")
	}

	var users, reviews, claims int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Review{}).Count(&reviews)
	db.Model(&models.UserBonus{}).Count(&claims)
	if users != 1 || reviews != 1 || claims != 1 {
		t.Errorf("rows (users=%d reviews=%d claims=%d), want 1 each", users, reviews, claims)
	}
}

func TestSubmitValidation(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	svc := newTestSubmissionService(t, db, approvingValidator())

	tests := []struct {
		name  string
		input SubmissionInput
	}{
		{"missing business", SubmissionInput{Text: "text", Rating: 5, UserEmail: "a@b.c"}},
		{"missing text", SubmissionInput{BusinessID: business.ID, Rating: 5, UserEmail: "a@b.c"}},
		{"blank text", SubmissionInput{BusinessID: business.ID, Text: "   ", Rating: 5, UserEmail: "a@b.c"}},
		{"missing rating", SubmissionInput{BusinessID: business.ID, Text: "text", UserEmail: "a@b.c"}},
		{"missing email", SubmissionInput{BusinessID: business.ID, Text: "text", Rating: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Submit(context.Background(), tt.input); err != ErrMissingFields {
				t.Errorf("Submit error = %v, want ErrMissingFields", err)
			}
		})
	}

	_, err := svc.Submit(context.Background(), SubmissionInput{
		BusinessID: business.ID + 100, Text: "text", Rating: 5, UserEmail: "a@b.c",
	})
	if err != ErrBusinessNotFound {
		t.Errorf("Submit error = %v, want ErrBusinessNotFound", err)
	}
}

func TestSubmitDuplicateShortCircuits(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	seedReview(t, db, business.ID, "Identical feedback as before", time.Hour)
	svc := newTestSubmissionService(t, db, approvingValidator())

	outcome, err := svc.Submit(context.Background(), SubmissionInput{
		BusinessID: business.ID,
		Text:       "  identical FEEDBACK as before  ",
		Rating:     5,
		UserEmail:  "dup@example.com",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Approved {
		t.Fatal("duplicate must be rejected")
	}
	if outcome.Message != "Duplicate review detected" {
		t.Errorf("message = %q", outcome.Message)
	}
	if outcome.Reason != DuplicateReason {
		t.Errorf("reason = %q, want %q", outcome.Reason, DuplicateReason)
	}

	var users, reviews int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Review{}).Count(&reviews)
	if users != 0 {
		t.Errorf("users = %d, duplicate must not create a user", users)
	}
	if reviews != 1 {
		t.Errorf("reviews = %d, duplicate must not be persisted", reviews)
	}
}

func TestSubmitRejectionPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	bonus := models.Bonus{BusinessID: business.ID, Description: "promo", IsActive: true}
	if err := db.Create(&bonus).Error; err != nil {
		t.Fatalf("create bonus: %v", err)
	}

	svc := newTestSubmissionService(t, db, stubValidator{result: ValidationResult{
		Approved:       false,
		Reason:         ReasonMissingAspects,
		Suggestions:    "Please also mention: service",
		Sentiment:      SentimentNeutral,
		Topics:         []string{"food"},
		CoveredAspects: []string{"food quality"},
		MissingAspects: []string{"service", "atmosphere", "cleanliness", "price/value"},
	}})

	outcome, err := svc.Submit(context.Background(), SubmissionInput{
		BusinessID: business.ID,
		Text:       "The food was fine I guess, nothing else to say about this place really.",
		Rating:     3,
		UserEmail:  "critic@example.com",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Approved {
		t.Fatal("expected rejection")
	}
	if outcome.Message != "Review needs improvement" {
		t.Errorf("message = %q", outcome.Message)
	}
	if len(outcome.MissingAspects) != 4 {
		t.Errorf("missing aspects = %v", outcome.MissingAspects)
	}

	var users, reviews, claims int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Review{}).Count(&reviews)
	db.Model(&models.UserBonus{}).Count(&claims)
	if users != 0 || reviews != 0 || claims != 0 {
		t.Errorf("rows (users=%d reviews=%d claims=%d), rejection must persist nothing", users, reviews, claims)
	}
}

func TestSubmitClaimFailureDoesNotFailSubmission(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	bonus := models.Bonus{BusinessID: business.ID, Description: "one per guest", IsActive: true}
	if err := db.Create(&bonus).Error; err != nil {
		t.Fatalf("create bonus: %v", err)
	}
	user := models.User{Email: "repeat@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := db.Create(&models.UserBonus{UserID: user.ID, BonusID: bonus.ID, Status: "claimed"}).Error; err != nil {
		t.Fatalf("create claim: %v", err)
	}

	svc := newTestSubmissionService(t, db, approvingValidator())

	outcome, err := svc.Submit(context.Background(), SubmissionInput{
		BusinessID: business.ID,
		Text:       "Back again: food still superb, service warm, atmosphere lovely, cleanliness spotless, price fair.",
		Rating:     5,
		UserEmail:  "repeat@example.com",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !outcome.Approved {
		t.Fatalf("expected approval, got %q", outcome.Reason)
	}
	if outcome.AssignedBonus != nil {
		t.Error("already-claimed bonus must not be assigned again")
	}

	var claims int64
	db.Model(&models.UserBonus{}).Count(&claims)
	if claims != 1 {
		t.Errorf("claims = %d, want the pre-existing claim only", claims)
	}
}

func TestSubmitNewestBonusWins(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	older := models.Bonus{BusinessID: business.ID, Description: "older", IsActive: true, CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.Bonus{BusinessID: business.ID, Description: "newer", IsActive: true, CreatedAt: time.Now().Add(-time.Hour)}
	for _, b := range []*models.Bonus{&older, &newer} {
		if err := db.Create(b).Error; err != nil {
			t.Fatalf("create bonus: %v", err)
		}
	}

	svc := newTestSubmissionService(t, db, approvingValidator())

	outcome, err := svc.Submit(context.Background(), SubmissionInput{
		BusinessID: business.ID,
		Text:       "Wonderful food, fast service, warm atmosphere, perfect cleanliness, honest price.",
		Rating:     5,
		UserEmail:  "guest@example.com",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.AssignedBonus == nil {
		t.Fatal("expected a bonus assignment")
	}
	if outcome.AssignedBonus.BonusID != newer.ID {
		t.Errorf("assigned bonus %d, want the most recent (%d)", outcome.AssignedBonus.BonusID, newer.ID)
	}
}
