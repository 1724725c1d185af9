package models

import "time"

type Payout struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	PayoutType  string    `gorm:"type:varchar(50);not null" json:"payout_type"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	ReferenceID *uint     `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Payout) TableName() string {
	return "payouts"
}
