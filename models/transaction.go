package models

import "time"

// MLMTransaction is the append-only ledger. Every balance mutation writes
// exactly one row (or a balanced debit/credit pair) with the before/after
// balance captured under the same row lock, so the wallet balance always
// equals the signed sum of a user's rows.
type MLMTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	TransactionType string    `gorm:"type:varchar(50);not null;index" json:"transaction_type"`
	Amount          float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description     string    `gorm:"type:text" json:"description"`
	Status          string    `gorm:"type:enum('Success','Pending','Completed','Cancelled','Failed');not null;default:'Success'" json:"status"`
	ReferenceType   string    `gorm:"type:varchar(50)" json:"reference_type"`
	ReferenceID     *uint     `json:"reference_id,omitempty"`
	BalanceBefore   float64   `gorm:"type:decimal(15,2);not null" json:"balance_before"`
	BalanceAfter    float64   `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	IdempotencyKey  *string   `gorm:"type:varchar(191);uniqueIndex" json:"idempotency_key,omitempty"`
	Metadata        *string   `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"-"`
}

func (MLMTransaction) TableName() string {
	return "mlm_transactions"
}
