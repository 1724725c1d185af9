package models

import "time"

// PlanSetting is a feature-flag row with a JSON config blob. Commission
// features can be legitimately disabled; a missing or inactive row is a soft
// no-op for the service that consumes it, not an error.
type PlanSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlanKey   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"plan_key"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	Config    string    `gorm:"type:json" json:"config"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (PlanSetting) TableName() string {
	return "plan_settings"
}

// Plan keys consumed by the services layer.
const (
	PlanBinary  = "binary"
	PlanBooster = "booster"
	PlanLevel   = "level_income"
)

// BinaryPlanConfig is the parsed config blob for the binary plan.
type BinaryPlanConfig struct {
	PayoutPercentage float64 `json:"payout_percentage"`
	MinMatchAmount   float64 `json:"min_match_amount"`
	MaxDailyMatch    float64 `json:"max_daily_match"`
	MatchingRatio    string  `json:"matching_ratio"`
}

// BoosterPlanConfig is the parsed config blob for the booster plan.
type BoosterPlanConfig struct {
	TargetDirects      int     `json:"target_directs"`
	BonusROIPercentage float64 `json:"bonus_roi_percentage"`
	WindowDays         int     `json:"window_days"`
}
