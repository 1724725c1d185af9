package services

import (
	"fmt"
	"testing"
	"time"

	"mlmapi/models"

	"gorm.io/gorm"
)

func TestBoosterWindowClosed(t *testing.T) {
	end := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before end", end.Add(-15 * 24 * time.Hour), false},
		{"one second before end", end.Add(-time.Second), false},
		{"exactly at end", end, true},
		{"one second after end", end.Add(time.Second), true},
	}
	for _, tt := range tests {
		if got := boosterWindowClosed(end, tt.now); got != tt.want {
			t.Fatalf("%s: boosterWindowClosed = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBoosterRewardAmount(t *testing.T) {
	tests := []struct {
		investment float64
		want       float64
	}{
		{1000, 100},
		{500, 50},
		{333.33, 33.33},
		{0, 0},
	}
	for _, tt := range tests {
		if got := boosterRewardAmount(tt.investment); got != tt.want {
			t.Fatalf("boosterRewardAmount(%.2f) = %.2f, want %.2f", tt.investment, got, tt.want)
		}
	}
}

func seedBooster(t *testing.T, db *gorm.DB, userID uint, endDate time.Time) *models.Booster {
	t.Helper()
	booster := models.Booster{
		UserID:             userID,
		PackageID:          1,
		InvestmentAmount:   1000,
		StartDate:          endDate.Add(-30 * 24 * time.Hour),
		EndDate:            endDate,
		QualifiedDirects:   2,
		TargetDirects:      2,
		BonusROIPercentage: 5,
		Status:             "Active",
	}
	if err := db.Create(&booster).Error; err != nil {
		t.Fatalf("seed booster: %v", err)
	}
	return &booster
}

func TestBoosterRewardCreditedOnce(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 0)
	booster := seedBooster(t, db, user.ID, time.Now().Add(24*time.Hour))

	pkg := models.UserPackage{
		UserID:        user.ID,
		Name:          "Standard",
		Amount:        1000,
		ROIPercentage: 10,
		OrderID:       "MLM-TEST-1",
		Status:        "Active",
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := creditBoosterReward(db, booster); err != nil {
			t.Fatalf("credit attempt %d: %v", i+1, err)
		}
	}

	if got := userBalance(t, db, user.ID); got != 100 {
		t.Fatalf("balance = %.2f, want single 10%% reward of 100", got)
	}

	key := fmt.Sprintf("booster_reward_%d", booster.ID)
	var n int64
	db.Model(&models.MLMTransaction{}).Where("idempotency_key = ?", key).Count(&n)
	if n != 1 {
		t.Fatalf("reward ledger rows = %d, want exactly 1", n)
	}
	db.Model(&models.Payout{}).Where("user_id = ?", user.ID).Count(&n)
	if n != 1 {
		t.Fatalf("payout rows = %d, want exactly 1", n)
	}

	var reloaded models.Booster
	if err := db.First(&reloaded, booster.ID).Error; err != nil {
		t.Fatalf("reload booster: %v", err)
	}
	if reloaded.Status != "Achieved" || !reloaded.RewardCredited {
		t.Fatalf("booster = %s credited=%v, want Achieved true", reloaded.Status, reloaded.RewardCredited)
	}

	var flagged models.UserPackage
	if err := db.First(&flagged, pkg.ID).Error; err != nil {
		t.Fatalf("reload package: %v", err)
	}
	if !flagged.HasBooster || flagged.BoosterROIPercentage != 5 {
		t.Fatalf("package booster=%v roi=%.2f, want flagged with 5", flagged.HasBooster, flagged.BoosterROIPercentage)
	}
}

func TestBoosterRewardNotCreditedAfterWindow(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 0)
	booster := seedBooster(t, db, user.ID, time.Now().Add(-time.Hour))

	if err := creditBoosterReward(db, booster); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if got := userBalance(t, db, user.ID); got != 0 {
		t.Fatalf("balance = %.2f, want 0 after the window closed", got)
	}
	if n := ledgerRowCount(t, db, user.ID); n != 0 {
		t.Fatalf("ledger rows = %d, want 0", n)
	}
	var reloaded models.Booster
	if err := db.First(&reloaded, booster.ID).Error; err != nil {
		t.Fatalf("reload booster: %v", err)
	}
	if reloaded.Status != "Expired" || reloaded.RewardCredited {
		t.Fatalf("booster = %s credited=%v, want Expired false", reloaded.Status, reloaded.RewardCredited)
	}
}
