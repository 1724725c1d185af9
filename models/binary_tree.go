package models

import "time"

// BinaryTreeNode places a user in the binary placement tree. Volume counters
// are maintained by the accumulator on every downline investment; unmatched
// counters are consumed by the matching engine and never exceed the lifetime
// totals.
type BinaryTreeNode struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	ParentID       *uint      `gorm:"column:parent_id;index" json:"parent_id"`
	Position       string     `gorm:"type:enum('left','right')" json:"position"`
	LeftVolume     float64    `gorm:"type:decimal(15,2);default:0" json:"left_volume"`
	RightVolume    float64    `gorm:"type:decimal(15,2);default:0" json:"right_volume"`
	LeftUnmatched  float64    `gorm:"type:decimal(15,2);default:0" json:"left_unmatched"`
	RightUnmatched float64    `gorm:"type:decimal(15,2);default:0" json:"right_unmatched"`
	MatchedToDate  float64    `gorm:"type:decimal(15,2);default:0" json:"matched_to_date"`
	LastMatchedAt  *time.Time `json:"last_matched_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (BinaryTreeNode) TableName() string {
	return "binary_tree"
}
