package models

import "time"

// UserPackage is an activated investment package. ROI accrues daily while
// Running; HasBooster marks packages whose owner achieved a booster, so the
// accrual applies the bonus rate on top of the base ROI.
type UserPackage struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	Name                 string     `gorm:"size:100;not null" json:"name"`
	Amount               float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	ROIPercentage        float64    `gorm:"column:roi_percentage;type:decimal(5,2);not null" json:"roi_percentage"`
	HasBooster           bool       `gorm:"default:false" json:"has_booster"`
	BoosterROIPercentage float64    `gorm:"column:booster_roi_percentage;type:decimal(5,2);default:0" json:"booster_roi_percentage"`
	TotalReturned        float64    `gorm:"type:decimal(15,2);default:0" json:"total_returned"`
	NextReturnAt         *time.Time `json:"next_return_at,omitempty"`
	LastReturnAt         *time.Time `json:"last_return_at,omitempty"`
	ActivatedAt          *time.Time `json:"activated_at,omitempty"`
	StoppedAt            *time.Time `json:"stopped_at,omitempty"`
	OrderID              string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	Status               string     `gorm:"type:enum('Active','Stopped','Completed');default:'Active'" json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (UserPackage) TableName() string {
	return "user_packages"
}
