package services

import (
	"errors"
	"testing"

	"mlmapi/models"

	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, balance float64) *models.User {
	t.Helper()
	user := models.User{
		Name:     "Ledger User",
		Number:   "628000000001",
		Password: "x",
		ReffCode: "LEDGER01",
		Balance:  balance,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func userBalance(t *testing.T, db *gorm.DB, userID uint) float64 {
	t.Helper()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return user.Balance
}

func ledgerRowCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.MLMTransaction{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count ledger rows: %v", err)
	}
	return n
}

func TestPostLedgerEntryIdempotencyKey(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 100)

	key := "reward_once"
	post := func() (*models.MLMTransaction, error) {
		var row *models.MLMTransaction
		err := db.Transaction(func(tx *gorm.DB) error {
			var perr error
			row, perr = PostLedgerEntry(tx, user.ID, 50, LedgerEntry{
				Type:           "booster_reward",
				Description:    "reward",
				IdempotencyKey: &key,
			})
			return perr
		})
		return row, err
	}

	first, err := post()
	if err != nil {
		t.Fatalf("first post: %v", err)
	}
	second, err := post()
	if err != nil {
		t.Fatalf("second post: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate key produced a new row: %d vs %d", second.ID, first.ID)
	}
	if got := userBalance(t, db, user.ID); got != 150 {
		t.Fatalf("balance = %.2f, want 150 after one credit", got)
	}
	if n := ledgerRowCount(t, db, user.ID); n != 1 {
		t.Fatalf("ledger rows = %d, want 1", n)
	}
}

func TestPostLedgerEntryInsufficientBalance(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, perr := PostLedgerEntry(tx, user.ID, -200, LedgerEntry{
			Type:        "withdrawal_request",
			Description: "over balance",
		})
		return perr
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}
	if got := userBalance(t, db, user.ID); got != 100 {
		t.Fatalf("balance = %.2f, want untouched 100", got)
	}
	if n := ledgerRowCount(t, db, user.ID); n != 0 {
		t.Fatalf("ledger rows = %d, want 0", n)
	}
}

// Balance conservation: after any sequence of entries, the wallet equals the
// signed sum of the user's ledger rows and each row chains balance_before to
// the previous balance_after.
func TestLedgerBalanceConservation(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 0)

	deltas := []float64{500, -120, 75.25, -30}
	for _, d := range deltas {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, perr := PostLedgerEntry(tx, user.ID, d, LedgerEntry{
				Type:        "adjustment",
				Description: "movement",
			})
			return perr
		})
		if err != nil {
			t.Fatalf("delta %.2f: %v", d, err)
		}
	}

	var rows []models.MLMTransaction
	if err := db.Where("user_id = ?", user.ID).Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	sum := 0.0
	prevAfter := 0.0
	for i, row := range rows {
		if row.BalanceBefore != prevAfter {
			t.Fatalf("row %d balance_before = %.2f, want %.2f", i, row.BalanceBefore, prevAfter)
		}
		sum += row.Amount
		prevAfter = row.BalanceAfter
	}
	if got := userBalance(t, db, user.ID); got != sum {
		t.Fatalf("balance %.2f != ledger sum %.2f", got, sum)
	}
}
