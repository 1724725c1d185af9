package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"mlmapi/models"
	"mlmapi/utils"

	"gorm.io/gorm"
)

// MinWithdrawalAmount is the floor for a withdrawal request.
const MinWithdrawalAmount = 10.0

var (
	ErrBelowMinimumWithdrawal = fmt.Errorf("minimum withdrawal is %.0f", MinWithdrawalAmount)
	ErrWithdrawalNotFound     = errors.New("withdrawal not found")
	ErrWithdrawalNotPending   = errors.New("only pending withdrawals can be processed")
)

// SubmitWithdrawalRequest debits the full requested amount up front and files
// a Pending request. Everything happens in one transaction on the locked user
// row: a validation failure or an insert error leaves the balance untouched.
// Deduction fields are persisted as zero; the fee is currently disabled.
func SubmitWithdrawalRequest(db *gorm.DB, userID uint, requestedAmount float64, walletAddress, paymentMethod, network string) (*models.Withdrawal, error) {
	if requestedAmount < MinWithdrawalAmount {
		return nil, ErrBelowMinimumWithdrawal
	}

	var wd models.Withdrawal
	err := db.Transaction(func(tx *gorm.DB) error {
		wd = models.Withdrawal{
			UserID:              userID,
			RequestedAmount:     requestedAmount,
			DeductionPercentage: 0,
			DeductionAmount:     0,
			FinalAmount:         requestedAmount,
			WalletAddress:       walletAddress,
			PaymentMethod:       paymentMethod,
			Network:             network,
			OrderID:             utils.GenerateOrderID(userID),
			Status:              "Pending",
		}
		if err := tx.Create(&wd).Error; err != nil {
			return err
		}

		if _, err := PostLedgerEntry(tx, userID, -requestedAmount, LedgerEntry{
			Type:          "withdrawal_request",
			Description:   fmt.Sprintf("Withdrawal request %s", wd.OrderID),
			Status:        "Pending",
			ReferenceType: "withdrawal",
			ReferenceID:   &wd.ID,
			Metadata: map[string]interface{}{
				"wallet_address": walletAddress,
				"payment_method": paymentMethod,
				"network":        network,
			},
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[withdrawal] user %d requested %.2f (%s)", userID, requestedAmount, wd.OrderID)
	return &wd, nil
}

// ApproveWithdrawal finalizes a pending request. The wallet was already
// debited at submission, so approval only flips statuses and appends a
// zero-delta completion row for the audit trail.
func ApproveWithdrawal(db *gorm.DB, withdrawalID uint, adminID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var wd models.Withdrawal
		if err := lockForUpdate(tx).First(&wd, withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if wd.Status != "Pending" {
			return ErrWithdrawalNotPending
		}

		now := time.Now()
		if err := tx.Model(&wd).Updates(map[string]interface{}{
			"status":       "Approved",
			"processed_by": adminID,
			"processed_at": now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.MLMTransaction{}).
			Where("reference_type = ? AND reference_id = ? AND transaction_type = ?", "withdrawal", wd.ID, "withdrawal_request").
			Update("status", "Completed").Error; err != nil {
			return err
		}

		if _, err := PostLedgerEntry(tx, wd.UserID, 0, LedgerEntry{
			Type:          "withdrawal_completed",
			Description:   fmt.Sprintf("Withdrawal %s approved", wd.OrderID),
			Status:        "Completed",
			ReferenceType: "withdrawal",
			ReferenceID:   &wd.ID,
			Metadata: map[string]interface{}{
				"final_amount":   wd.FinalAmount,
				"wallet_address": wd.WalletAddress,
				"approved_by":    adminID,
			},
		}); err != nil {
			return err
		}
		log.Printf("[withdrawal] %s approved by admin %d", wd.OrderID, adminID)
		return nil
	})
}

// RejectWithdrawal refunds the full requested amount and closes the request.
// Withdrawal and user rows are both locked inside one transaction.
func RejectWithdrawal(db *gorm.DB, withdrawalID uint, adminID uint, reason string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var wd models.Withdrawal
		if err := lockForUpdate(tx).First(&wd, withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if wd.Status != "Pending" {
			return ErrWithdrawalNotPending
		}

		now := time.Now()
		if err := tx.Model(&wd).Updates(map[string]interface{}{
			"status":           "Rejected",
			"rejection_reason": reason,
			"processed_by":     adminID,
			"processed_at":     now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.MLMTransaction{}).
			Where("reference_type = ? AND reference_id = ? AND transaction_type = ?", "withdrawal", wd.ID, "withdrawal_request").
			Update("status", "Cancelled").Error; err != nil {
			return err
		}

		// Refund the requested amount, not the final amount.
		if _, err := PostLedgerEntry(tx, wd.UserID, wd.RequestedAmount, LedgerEntry{
			Type:          "withdrawal_refund",
			Description:   fmt.Sprintf("Withdrawal %s rejected: %s", wd.OrderID, reason),
			ReferenceType: "withdrawal",
			ReferenceID:   &wd.ID,
			Metadata: map[string]interface{}{
				"rejection_reason": reason,
				"rejected_by":      adminID,
			},
		}); err != nil {
			return err
		}
		log.Printf("[withdrawal] %s rejected by admin %d: %s", wd.OrderID, adminID, reason)
		return nil
	})
}

// AdminAddFunds is the manual correction escape hatch: a direct wallet credit
// with one ledger row. Authorization is the route layer's problem.
func AdminAddFunds(db *gorm.DB, userID uint, amount float64, adminID uint, description string) error {
	if amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	if description == "" {
		description = "Manual balance adjustment"
	}
	return db.Transaction(func(tx *gorm.DB) error {
		_, err := PostLedgerEntry(tx, userID, amount, LedgerEntry{
			Type:          "admin_add_fund",
			Description:   description,
			ReferenceType: "admin",
			ReferenceID:   &adminID,
			Metadata: map[string]interface{}{
				"admin_id": adminID,
			},
		})
		if err == nil {
			log.Printf("[admin] admin %d added %.2f to user %d", adminID, amount, userID)
		}
		return err
	})
}
