package models

import "testing"

func TestLevelUnlockFlagRoundTrip(t *testing.T) {
	var l LevelUnlock
	for level := 1; level <= 30; level++ {
		if l.GetLevel(level) {
			t.Fatalf("level %d unexpectedly unlocked on zero value", level)
		}
		l.SetLevel(level, true)
		if !l.GetLevel(level) {
			t.Fatalf("level %d not set after SetLevel", level)
		}
		l.SetLevel(level, false)
		if l.GetLevel(level) {
			t.Fatalf("level %d still set after clearing", level)
		}
	}
}

func TestLevelUnlockOutOfRange(t *testing.T) {
	var l LevelUnlock
	l.SetLevel(0, true)
	l.SetLevel(31, true)
	if l.GetLevel(0) || l.GetLevel(31) {
		t.Fatal("out-of-range levels must report false")
	}
	for level := 1; level <= 30; level++ {
		if l.GetLevel(level) {
			t.Fatalf("out-of-range SetLevel leaked into level %d", level)
		}
	}
}
