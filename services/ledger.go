package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"mlmapi/models"
	"mlmapi/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
)

// lockForUpdate adds a row lock on dialects that support one. SQLite, which
// backs the package tests, holds a single writer lock for the whole
// transaction and rejects the FOR UPDATE syntax, so the clause is skipped
// there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// LedgerEntry describes the mlm_transactions row appended alongside a balance
// delta. Earning entries additionally bump total_earnings and, when
// EarningField names an aggregate column, that column too.
type LedgerEntry struct {
	Type           string
	Description    string
	Status         string
	ReferenceType  string
	ReferenceID    *uint
	IdempotencyKey *string
	Metadata       map[string]interface{}
	Earning        bool
	EarningField   string
}

// PostLedgerEntry applies a signed balance delta to one user and appends the
// matching ledger row. It must be called inside an enclosing transaction; the
// user row is locked FOR UPDATE so concurrent writers serialize here. The
// idempotency check runs under that lock: a key that already has a row makes
// the call a no-op success returning the existing row, with no balance change.
func PostLedgerEntry(tx *gorm.DB, userID uint, delta float64, entry LedgerEntry) (*models.MLMTransaction, error) {
	var user models.User
	if err := lockForUpdate(tx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if entry.IdempotencyKey != nil {
		var existing models.MLMTransaction
		err := tx.Where("idempotency_key = ?", *entry.IdempotencyKey).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	balanceBefore := user.Balance
	balanceAfter := utils.RoundFloat(balanceBefore+delta, 2)
	if balanceAfter < 0 {
		return nil, ErrInsufficientBalance
	}

	updates := map[string]interface{}{"balance": balanceAfter}
	if entry.Earning && delta > 0 {
		updates["total_earnings"] = gorm.Expr("total_earnings + ?", delta)
		if entry.EarningField != "" {
			updates[entry.EarningField] = gorm.Expr(entry.EarningField+" + ?", delta)
		}
	}
	if err := tx.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	status := entry.Status
	if status == "" {
		status = "Success"
	}
	var metadata *string
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal ledger metadata: %w", err)
		}
		s := string(raw)
		metadata = &s
	}

	row := models.MLMTransaction{
		UserID:          userID,
		TransactionType: entry.Type,
		Amount:          delta,
		Description:     entry.Description,
		Status:          status,
		ReferenceType:   entry.ReferenceType,
		ReferenceID:     entry.ReferenceID,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceAfter,
		IdempotencyKey:  entry.IdempotencyKey,
		Metadata:        metadata,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
