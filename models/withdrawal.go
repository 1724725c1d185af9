package models

import "time"

// Withdrawal is debited from the wallet at submission and resolved exactly
// once by an admin: Approved finalizes without touching the balance again,
// Rejected refunds the full requested amount. Deduction fields are persisted
// but currently always written as zero.
type Withdrawal struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserID              uint       `gorm:"not null;index" json:"user_id"`
	RequestedAmount     float64    `gorm:"type:decimal(15,2);not null" json:"requested_amount"`
	DeductionPercentage float64    `gorm:"type:decimal(5,2);not null;default:0" json:"deduction_percentage"`
	DeductionAmount     float64    `gorm:"type:decimal(15,2);not null;default:0" json:"deduction_amount"`
	FinalAmount         float64    `gorm:"type:decimal(15,2);not null" json:"final_amount"`
	WalletAddress       string     `gorm:"size:255" json:"wallet_address"`
	PaymentMethod       string     `gorm:"size:50" json:"payment_method"`
	Network             string     `gorm:"size:50" json:"network"`
	OrderID             string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	Status              string     `gorm:"type:enum('Pending','Approved','Rejected','Completed');not null;default:'Pending'" json:"status"`
	RejectionReason     *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	ProcessedBy         *uint      `json:"processed_by,omitempty"`
	ProcessedAt         *time.Time `json:"processed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
