package models

import "time"

type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	Number           string    `gorm:"size:20;uniqueIndex;not null" json:"number"`
	Password         string    `gorm:"size:255;not null" json:"-"`
	ReffCode         string    `gorm:"size:20;uniqueIndex;not null" json:"reff_code"`
	SponsorID        *uint     `gorm:"column:sponsor_id;index" json:"sponsor_id"`
	Balance          float64   `gorm:"type:decimal(15,2);default:0" json:"balance"`
	TotalEarnings    float64   `gorm:"type:decimal(15,2);default:0" json:"total_earnings"`
	DirectCount      int       `gorm:"default:0" json:"direct_count"`
	BinaryEarnings   float64   `gorm:"type:decimal(15,2);default:0" json:"binary_earnings"`
	BoosterEarnings  float64   `gorm:"type:decimal(15,2);default:0" json:"booster_earnings"`
	TotalInvest      float64   `gorm:"column:total_invest;type:decimal(15,2);default:0" json:"total_invest"`
	Status           string    `gorm:"type:enum('Active','Inactive','Suspend');default:'Active'" json:"status"`
	InvestmentStatus string    `gorm:"type:enum('Active','Inactive');default:'Inactive'" json:"investment_status"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
