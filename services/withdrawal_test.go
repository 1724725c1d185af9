package services

import (
	"errors"
	"testing"

	"mlmapi/models"
)

func TestSubmitWithdrawalBelowMinimum(t *testing.T) {
	// Amounts under the floor must be rejected before any database work,
	// so a nil handle is safe here.
	for _, amount := range []float64{0, 0.01, 9.99} {
		_, err := SubmitWithdrawalRequest(nil, 1, amount, "0xabc", "crypto", "TRC20")
		if !errors.Is(err, ErrBelowMinimumWithdrawal) {
			t.Fatalf("amount %.2f: got %v, want ErrBelowMinimumWithdrawal", amount, err)
		}
	}
}

func TestAdminAddFundsRejectsNonPositive(t *testing.T) {
	for _, amount := range []float64{0, -5} {
		if err := AdminAddFunds(nil, 1, amount, 1, ""); err == nil {
			t.Fatalf("amount %.2f: expected error for non-positive credit", amount)
		}
	}
}

func TestSubmitWithdrawalDebitsUpFront(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 500)

	wd, err := SubmitWithdrawalRequest(db, user.ID, 100, "0xabc", "crypto", "TRC20")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if wd.Status != "Pending" {
		t.Fatalf("status = %s, want Pending", wd.Status)
	}
	if got := userBalance(t, db, user.ID); got != 400 {
		t.Fatalf("balance = %.2f, want 400 after debit", got)
	}

	var row models.MLMTransaction
	if err := db.Where("reference_type = ? AND reference_id = ?", "withdrawal", wd.ID).First(&row).Error; err != nil {
		t.Fatalf("load debit row: %v", err)
	}
	if row.Amount != -100 || row.Status != "Pending" {
		t.Fatalf("debit row amount=%.2f status=%s, want -100 Pending", row.Amount, row.Status)
	}
}

func TestSubmitWithdrawalOverBalance(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 50)

	_, err := SubmitWithdrawalRequest(db, user.ID, 100, "0xabc", "crypto", "TRC20")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}
	if got := userBalance(t, db, user.ID); got != 50 {
		t.Fatalf("balance = %.2f, want untouched 50", got)
	}
	var n int64
	db.Model(&models.Withdrawal{}).Where("user_id = ?", user.ID).Count(&n)
	if n != 0 {
		t.Fatalf("withdrawal rows = %d, want 0 after rollback", n)
	}
}

func TestRejectWithdrawalRestoresBalance(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 500)

	wd, err := SubmitWithdrawalRequest(db, user.ID, 100, "0xabc", "crypto", "TRC20")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := RejectWithdrawal(db, wd.ID, 7, "wrong wallet"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if got := userBalance(t, db, user.ID); got != 500 {
		t.Fatalf("balance = %.2f, want full 500 back", got)
	}

	var reloaded models.Withdrawal
	if err := db.First(&reloaded, wd.ID).Error; err != nil {
		t.Fatalf("reload withdrawal: %v", err)
	}
	if reloaded.Status != "Rejected" || reloaded.RejectionReason == nil || *reloaded.RejectionReason != "wrong wallet" {
		t.Fatalf("withdrawal = %+v, want Rejected with reason", reloaded)
	}

	// The original debit is marked Cancelled, the refund is a separate credit,
	// and the pair nets to zero. The debit row itself is never rewritten.
	var rows []models.MLMTransaction
	if err := db.Where("user_id = ?", user.ID).Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ledger rows = %d, want debit + refund", len(rows))
	}
	if rows[0].Amount != -100 || rows[0].Status != "Cancelled" {
		t.Fatalf("debit row amount=%.2f status=%s, want -100 Cancelled", rows[0].Amount, rows[0].Status)
	}
	if rows[1].Amount != 100 || rows[1].TransactionType != "withdrawal_refund" {
		t.Fatalf("refund row amount=%.2f type=%s, want 100 withdrawal_refund", rows[1].Amount, rows[1].TransactionType)
	}
	if rows[0].Amount+rows[1].Amount != 0 {
		t.Fatalf("debit and refund do not net to zero")
	}
}

func TestWithdrawalResolvedExactlyOnce(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, 500)

	wd, err := SubmitWithdrawalRequest(db, user.ID, 100, "0xabc", "crypto", "TRC20")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := ApproveWithdrawal(db, wd.ID, 7); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := userBalance(t, db, user.ID); got != 400 {
		t.Fatalf("balance = %.2f, approve must not move money again", got)
	}

	rowsAfterApprove := ledgerRowCount(t, db, user.ID)

	if err := ApproveWithdrawal(db, wd.ID, 7); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("second approve: got %v, want ErrWithdrawalNotPending", err)
	}
	if err := RejectWithdrawal(db, wd.ID, 7, "late"); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("reject after approve: got %v, want ErrWithdrawalNotPending", err)
	}

	if got := userBalance(t, db, user.ID); got != 400 {
		t.Fatalf("balance = %.2f, want 400 after failed re-resolutions", got)
	}
	if n := ledgerRowCount(t, db, user.ID); n != rowsAfterApprove {
		t.Fatalf("ledger rows = %d, want unchanged %d", n, rowsAfterApprove)
	}

	if err := ApproveWithdrawal(db, 9999, 7); !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("missing id: got %v, want ErrWithdrawalNotFound", err)
	}
}
