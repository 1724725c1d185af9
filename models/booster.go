package models

import "time"

// Booster tracks a 30-day qualification window tied to one investment. A user
// holds at most one Active or Achieved booster at a time; RewardCredited flips
// to true exactly once, together with the Achieved transition.
type Booster struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	PackageID          uint      `gorm:"not null" json:"package_id"`
	InvestmentAmount   float64   `gorm:"type:decimal(15,2);not null" json:"investment_amount"`
	StartDate          time.Time `gorm:"not null" json:"start_date"`
	EndDate            time.Time `gorm:"not null" json:"end_date"`
	QualifiedDirects   int       `gorm:"default:0" json:"qualified_directs"`
	TargetDirects      int       `gorm:"not null" json:"target_directs"`
	BonusROIPercentage float64   `gorm:"column:bonus_roi_percentage;type:decimal(5,2);not null" json:"bonus_roi_percentage"`
	RewardCredited     bool      `gorm:"default:false" json:"reward_credited"`
	Status             string    `gorm:"type:enum('Active','Achieved','Expired');default:'Active'" json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Booster) TableName() string {
	return "boosters"
}
