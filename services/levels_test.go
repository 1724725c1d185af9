package services

import (
	"fmt"
	"reflect"
	"testing"

	"mlmapi/models"

	"gorm.io/gorm"
)

func TestCalculateUnlockedLevels_SingleUnlocks(t *testing.T) {
	for directs := 1; directs <= 8; directs++ {
		levels := CalculateUnlockedLevels(directs)
		if len(levels) != directs {
			t.Fatalf("directs=%d: expected %d levels, got %v", directs, directs, levels)
		}
		if levels[len(levels)-1] != directs {
			t.Fatalf("directs=%d: expected highest level %d, got %v", directs, directs, levels)
		}
	}
}

func TestCalculateUnlockedLevels_Milestones(t *testing.T) {
	cases := []struct {
		directs int
		count   int
		highest int
	}{
		{0, 0, 0},
		{9, 10, 10},
		{10, 15, 15},
		{14, 15, 15},
		{15, 20, 20},
		{20, 25, 25},
		{25, 30, 30},
		{100, 30, 30},
	}
	for _, c := range cases {
		levels := CalculateUnlockedLevels(c.directs)
		if len(levels) != c.count {
			t.Fatalf("directs=%d: expected %d levels, got %d (%v)", c.directs, c.count, len(levels), levels)
		}
		if c.count > 0 && levels[len(levels)-1] != c.highest {
			t.Fatalf("directs=%d: expected highest %d, got %d", c.directs, c.highest, levels[len(levels)-1])
		}
	}
}

func TestCalculateUnlockedLevels_NinthDirectOpensTwo(t *testing.T) {
	got := CalculateUnlockedLevels(9)
	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCalculateUnlockedLevels_Monotonic(t *testing.T) {
	prev := 0
	for directs := 0; directs <= 30; directs++ {
		n := len(CalculateUnlockedLevels(directs))
		if n < prev {
			t.Fatalf("unlock count decreased at directs=%d: %d < %d", directs, n, prev)
		}
		prev = n
	}
}

func TestGetNextUnlockMilestone(t *testing.T) {
	m := GetNextUnlockMilestone(0)
	if m == nil || m.DirectsRequired != 1 || m.DirectsNeeded != 1 {
		t.Fatalf("directs=0: unexpected milestone %+v", m)
	}

	m = GetNextUnlockMilestone(9)
	if m == nil || m.DirectsRequired != 10 || m.DirectsNeeded != 1 {
		t.Fatalf("directs=9: unexpected milestone %+v", m)
	}
	if !reflect.DeepEqual(m.Levels, []int{11, 12, 13, 14, 15}) {
		t.Fatalf("directs=9: unexpected milestone levels %v", m.Levels)
	}

	m = GetNextUnlockMilestone(21)
	if m == nil || m.DirectsRequired != 25 || m.DirectsNeeded != 4 {
		t.Fatalf("directs=21: unexpected milestone %+v", m)
	}

	if m = GetNextUnlockMilestone(25); m != nil {
		t.Fatalf("directs=25: expected no further milestone, got %+v", m)
	}
}

func seedDirects(t *testing.T, db *gorm.DB, sponsorID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		direct := models.User{
			Name:      fmt.Sprintf("Direct %d", i+1),
			Number:    fmt.Sprintf("6281000000%03d", i+1),
			Password:  "x",
			ReffCode:  fmt.Sprintf("DIRECT%03d", i+1),
			SponsorID: &sponsorID,
			Status:    "Active",
		}
		if err := db.Create(&direct).Error; err != nil {
			t.Fatalf("seed direct %d: %v", i+1, err)
		}
	}
}

func TestUpdateUserLevelUnlocksGatedOnPlan(t *testing.T) {
	db := openTestDB(t)
	sponsor := seedUser(t, db, 0)
	seedDirects(t, db, sponsor.ID, 3)

	// No level_income row means the plan is off and nothing persists.
	res, err := UpdateUserLevelUnlocks(db, sponsor.ID)
	if err != nil {
		t.Fatalf("plan off: %v", err)
	}
	if res != nil {
		t.Fatalf("plan off: expected nil result, got %+v", res)
	}
	var n int64
	db.Model(&models.LevelUnlock{}).Where("user_id = ?", sponsor.ID).Count(&n)
	if n != 0 {
		t.Fatalf("plan off: level_unlocks rows = %d, want 0", n)
	}

	plan := models.PlanSetting{PlanKey: models.PlanLevel, IsActive: true, Config: "{}"}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	res, err = UpdateUserLevelUnlocks(db, sponsor.ID)
	if err != nil {
		t.Fatalf("plan on: %v", err)
	}
	if res == nil || res.DirectCount != 3 {
		t.Fatalf("plan on: unexpected result %+v", res)
	}
	if !reflect.DeepEqual(res.UnlockedLevels, []int{1, 2, 3}) {
		t.Fatalf("plan on: unlocked %v, want [1 2 3]", res.UnlockedLevels)
	}

	var record models.LevelUnlock
	if err := db.Where("user_id = ?", sponsor.ID).First(&record).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if !record.GetLevel(3) || record.GetLevel(4) {
		t.Fatalf("record flags wrong: %+v", record)
	}
}
