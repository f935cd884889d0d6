package services

import (
	"testing"
	"time"

	"github.com/reviewloop/backend/internal/models"
)

func TestClaimBonus(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	svc := NewBonusService(db)

	user := models.User{Email: "claimer@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	bonus := models.Bonus{BusinessID: business.ID, Description: "10% off", IsActive: true}
	if err := db.Create(&bonus).Error; err != nil {
		t.Fatalf("create bonus: %v", err)
	}

	claim, err := svc.Claim(user.ID, bonus.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claim.Status != "claimed" {
		t.Errorf("claim status = %q, want claimed", claim.Status)
	}
	if claim.Bonus == nil || claim.Bonus.ID != bonus.ID {
		t.Error("claim should carry the bonus details")
	}

	// Second claim for the same pair fails and adds no row.
	if _, err := svc.Claim(user.ID, bonus.ID); err != ErrAlreadyClaimed {
		t.Fatalf("second claim error = %v, want ErrAlreadyClaimed", err)
	}

	var count int64
	db.Model(&models.UserBonus{}).Where("user_id = ? AND bonus_id = ?", user.ID, bonus.ID).Count(&count)
	if count != 1 {
		t.Errorf("claim rows = %d, want exactly 1", count)
	}
}

func TestClaimUnavailableBonus(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	svc := NewBonusService(db)

	user := models.User{Email: "claimer@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := svc.Claim(user.ID, 999); err != ErrBonusUnavailable {
		t.Errorf("claim of missing bonus = %v, want ErrBonusUnavailable", err)
	}

	inactive := models.Bonus{BusinessID: business.ID, Description: "expired promo", IsActive: false}
	if err := db.Create(&inactive).Error; err != nil {
		t.Fatalf("create bonus: %v", err)
	}
	if _, err := svc.Claim(user.ID, inactive.ID); err != ErrBonusUnavailable {
		t.Errorf("claim of inactive bonus = %v, want ErrBonusUnavailable", err)
	}

	var count int64
	db.Model(&models.UserBonus{}).Count(&count)
	if count != 0 {
		t.Errorf("claim rows = %d, want none", count)
	}
}

func TestGetActiveByBusinessOrdering(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	svc := NewBonusService(db)

	older := models.Bonus{BusinessID: business.ID, Description: "older", IsActive: true, CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.Bonus{BusinessID: business.ID, Description: "newer", IsActive: true, CreatedAt: time.Now().Add(-time.Hour)}
	retired := models.Bonus{BusinessID: business.ID, Description: "retired", IsActive: false, CreatedAt: time.Now()}
	for _, b := range []*models.Bonus{&older, &newer, &retired} {
		if err := db.Create(b).Error; err != nil {
			t.Fatalf("create bonus: %v", err)
		}
	}

	bonuses, err := svc.GetActiveByBusiness(business.ID)
	if err != nil {
		t.Fatalf("GetActiveByBusiness: %v", err)
	}
	if len(bonuses) != 2 {
		t.Fatalf("active bonuses = %d, want 2", len(bonuses))
	}
	if bonuses[0].Description != "newer" {
		t.Errorf("first bonus = %q, want the most recent", bonuses[0].Description)
	}
}

func TestDeactivateKeepsClaims(t *testing.T) {
	db := newTestDB(t)
	business := createTestBusiness(t, db, "restaurant")
	svc := NewBonusService(db)

	user := models.User{Email: "claimer@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	bonus := models.Bonus{BusinessID: business.ID, Description: "free drink", IsActive: true}
	if err := db.Create(&bonus).Error; err != nil {
		t.Fatalf("create bonus: %v", err)
	}
	if _, err := svc.Claim(user.ID, bonus.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	if err := svc.Deactivate(bonus.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	claims, err := svc.GetUserClaims(user.ID)
	if err != nil {
		t.Fatalf("GetUserClaims: %v", err)
	}
	if len(claims) != 1 {
		t.Errorf("claims after deactivation = %d, want 1", len(claims))
	}

	if _, err := svc.Claim(user.ID, bonus.ID); err != ErrBonusUnavailable {
		t.Errorf("claim of deactivated bonus = %v, want ErrBonusUnavailable", err)
	}
}
