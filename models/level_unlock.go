package models

import "time"

// LevelUnlock persists the per-user commission level flags. The flags are
// recomputed wholesale from DirectCount on every reconciliation, so stored
// state self-heals against the threshold table.
type LevelUnlock struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	DirectCount    int       `gorm:"default:0" json:"direct_count"`
	UnlockedLevels int       `gorm:"default:0" json:"unlocked_levels"`
	Level1         bool      `gorm:"column:level_1_unlocked;default:false" json:"level_1_unlocked"`
	Level2         bool      `gorm:"column:level_2_unlocked;default:false" json:"level_2_unlocked"`
	Level3         bool      `gorm:"column:level_3_unlocked;default:false" json:"level_3_unlocked"`
	Level4         bool      `gorm:"column:level_4_unlocked;default:false" json:"level_4_unlocked"`
	Level5         bool      `gorm:"column:level_5_unlocked;default:false" json:"level_5_unlocked"`
	Level6         bool      `gorm:"column:level_6_unlocked;default:false" json:"level_6_unlocked"`
	Level7         bool      `gorm:"column:level_7_unlocked;default:false" json:"level_7_unlocked"`
	Level8         bool      `gorm:"column:level_8_unlocked;default:false" json:"level_8_unlocked"`
	Level9         bool      `gorm:"column:level_9_unlocked;default:false" json:"level_9_unlocked"`
	Level10        bool      `gorm:"column:level_10_unlocked;default:false" json:"level_10_unlocked"`
	Level11        bool      `gorm:"column:level_11_unlocked;default:false" json:"level_11_unlocked"`
	Level12        bool      `gorm:"column:level_12_unlocked;default:false" json:"level_12_unlocked"`
	Level13        bool      `gorm:"column:level_13_unlocked;default:false" json:"level_13_unlocked"`
	Level14        bool      `gorm:"column:level_14_unlocked;default:false" json:"level_14_unlocked"`
	Level15        bool      `gorm:"column:level_15_unlocked;default:false" json:"level_15_unlocked"`
	Level16        bool      `gorm:"column:level_16_unlocked;default:false" json:"level_16_unlocked"`
	Level17        bool      `gorm:"column:level_17_unlocked;default:false" json:"level_17_unlocked"`
	Level18        bool      `gorm:"column:level_18_unlocked;default:false" json:"level_18_unlocked"`
	Level19        bool      `gorm:"column:level_19_unlocked;default:false" json:"level_19_unlocked"`
	Level20        bool      `gorm:"column:level_20_unlocked;default:false" json:"level_20_unlocked"`
	Level21        bool      `gorm:"column:level_21_unlocked;default:false" json:"level_21_unlocked"`
	Level22        bool      `gorm:"column:level_22_unlocked;default:false" json:"level_22_unlocked"`
	Level23        bool      `gorm:"column:level_23_unlocked;default:false" json:"level_23_unlocked"`
	Level24        bool      `gorm:"column:level_24_unlocked;default:false" json:"level_24_unlocked"`
	Level25        bool      `gorm:"column:level_25_unlocked;default:false" json:"level_25_unlocked"`
	Level26        bool      `gorm:"column:level_26_unlocked;default:false" json:"level_26_unlocked"`
	Level27        bool      `gorm:"column:level_27_unlocked;default:false" json:"level_27_unlocked"`
	Level28        bool      `gorm:"column:level_28_unlocked;default:false" json:"level_28_unlocked"`
	Level29        bool      `gorm:"column:level_29_unlocked;default:false" json:"level_29_unlocked"`
	Level30        bool      `gorm:"column:level_30_unlocked;default:false" json:"level_30_unlocked"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

func (LevelUnlock) TableName() string {
	return "level_unlocks"
}

// SetLevel flips the flag for a 1-based level number.
func (l *LevelUnlock) SetLevel(level int, unlocked bool) {
	flags := l.levelFlags()
	if level >= 1 && level <= 30 {
		*flags[level-1] = unlocked
	}
}

// GetLevel reports the flag for a 1-based level number.
func (l *LevelUnlock) GetLevel(level int) bool {
	flags := l.levelFlags()
	if level >= 1 && level <= 30 {
		return *flags[level-1]
	}
	return false
}

func (l *LevelUnlock) levelFlags() [30]*bool {
	return [30]*bool{
		&l.Level1, &l.Level2, &l.Level3, &l.Level4, &l.Level5,
		&l.Level6, &l.Level7, &l.Level8, &l.Level9, &l.Level10,
		&l.Level11, &l.Level12, &l.Level13, &l.Level14, &l.Level15,
		&l.Level16, &l.Level17, &l.Level18, &l.Level19, &l.Level20,
		&l.Level21, &l.Level22, &l.Level23, &l.Level24, &l.Level25,
		&l.Level26, &l.Level27, &l.Level28, &l.Level29, &l.Level30,
	}
}
