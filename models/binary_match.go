package models

import "time"

// BinaryMatch is the append-only audit row written once per executed match.
type BinaryMatch struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	MatchedVolume    float64   `gorm:"type:decimal(15,2);not null" json:"matched_volume"`
	LeftBefore       float64   `gorm:"type:decimal(15,2);not null" json:"left_before"`
	RightBefore      float64   `gorm:"type:decimal(15,2);not null" json:"right_before"`
	LeftAfter        float64   `gorm:"type:decimal(15,2);not null" json:"left_after"`
	RightAfter       float64   `gorm:"type:decimal(15,2);not null" json:"right_after"`
	PayoutAmount     float64   `gorm:"type:decimal(15,2);not null" json:"payout_amount"`
	PayoutPercentage float64   `gorm:"type:decimal(5,2);not null" json:"payout_percentage"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (BinaryMatch) TableName() string {
	return "binary_matches"
}
