package services

import (
	"errors"
	"sort"

	"mlmapi/models"

	"gorm.io/gorm"
)

// levelThreshold maps a direct-referral count to the levels it opens. The
// first eight directs unlock one level each; the later milestones open
// five-level bands.
type levelThreshold struct {
	Directs int
	Levels  []int
}

var levelThresholds = []levelThreshold{
	{1, []int{1}},
	{2, []int{2}},
	{3, []int{3}},
	{4, []int{4}},
	{5, []int{5}},
	{6, []int{6}},
	{7, []int{7}},
	{8, []int{8}},
	{9, []int{9, 10}},
	{10, []int{11, 12, 13, 14, 15}},
	{15, []int{16, 17, 18, 19, 20}},
	{20, []int{21, 22, 23, 24, 25}},
	{25, []int{26, 27, 28, 29, 30}},
}

// CalculateUnlockedLevels maps a direct count to the sorted set of unlocked
// level numbers. Pure: re-evaluated in full, so the result is monotonically
// non-decreasing in directCount by construction.
func CalculateUnlockedLevels(directCount int) []int {
	levels := []int{}
	for _, t := range levelThresholds {
		if directCount >= t.Directs {
			levels = append(levels, t.Levels...)
		}
	}
	sort.Ints(levels)
	return levels
}

// UnlockMilestone is the next threshold a user can reach.
type UnlockMilestone struct {
	DirectsRequired int   `json:"directs_required"`
	DirectsNeeded   int   `json:"directs_needed"`
	Levels          []int `json:"levels"`
}

// GetNextUnlockMilestone returns the closest threshold above directCount, or
// nil when all 30 levels are open.
func GetNextUnlockMilestone(directCount int) *UnlockMilestone {
	for _, t := range levelThresholds {
		if directCount < t.Directs {
			return &UnlockMilestone{
				DirectsRequired: t.Directs,
				DirectsNeeded:   t.Directs - directCount,
				Levels:          t.Levels,
			}
		}
	}
	return nil
}

// LevelUnlockResult reports a reconciliation pass.
type LevelUnlockResult struct {
	DirectCount    int   `json:"direct_count"`
	UnlockedLevels []int `json:"unlocked_levels"`
	NewlyUnlocked  []int `json:"newly_unlocked"`
}

// UpdateUserLevelUnlocks recomputes the unlock flags from the user's current
// direct count and reconciles the stored row wholesale. Idempotent; the
// returned NewlyUnlocked slice names levels that flipped on in this call.
// No-op with a nil result while the level income plan is switched off.
func UpdateUserLevelUnlocks(db *gorm.DB, userID uint) (*LevelUnlockResult, error) {
	if !IsPlanActive(db, models.PlanLevel) {
		return nil, nil
	}

	var directCount int64
	if err := db.Model(&models.User{}).Where("sponsor_id = ?", userID).Count(&directCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).
		Update("direct_count", directCount).Error; err != nil {
		return nil, err
	}

	unlocked := CalculateUnlockedLevels(int(directCount))

	var record models.LevelUnlock
	err := db.Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = models.LevelUnlock{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	newly := []int{}
	inSet := map[int]bool{}
	for _, lvl := range unlocked {
		inSet[lvl] = true
		if !record.GetLevel(lvl) {
			newly = append(newly, lvl)
		}
	}
	for lvl := 1; lvl <= 30; lvl++ {
		record.SetLevel(lvl, inSet[lvl])
	}
	record.DirectCount = int(directCount)
	record.UnlockedLevels = len(unlocked)

	if err := db.Save(&record).Error; err != nil {
		return nil, err
	}
	return &LevelUnlockResult{
		DirectCount:    int(directCount),
		UnlockedLevels: unlocked,
		NewlyUnlocked:  newly,
	}, nil
}
