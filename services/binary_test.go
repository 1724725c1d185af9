package services

import "testing"

func TestMatchableVolume(t *testing.T) {
	tests := []struct {
		left, right float64
		want        float64
	}{
		{0, 0, 0},
		{1000, 500, 500},
		{500, 1000, 500},
		{750, 750, 750},
		{0, 2000, 0},
		{1234.56, 1234.55, 1234.55},
	}
	for _, tt := range tests {
		if got := matchableVolume(tt.left, tt.right); got != tt.want {
			t.Fatalf("matchableVolume(%.2f, %.2f) = %.2f, want %.2f", tt.left, tt.right, got, tt.want)
		}
	}
}

func TestExceedsDailyCap(t *testing.T) {
	tests := []struct {
		today, candidate, cap float64
		want                  bool
	}{
		{0, 500, 1000, false},
		{500, 500, 1000, false},
		{500, 501, 1000, true},
		{1000, 1, 1000, true},
		// cap of zero disables the check entirely
		{1e9, 1e9, 0, false},
	}
	for _, tt := range tests {
		if got := exceedsDailyCap(tt.today, tt.candidate, tt.cap); got != tt.want {
			t.Fatalf("exceedsDailyCap(%.2f, %.2f, %.2f) = %v, want %v",
				tt.today, tt.candidate, tt.cap, got, tt.want)
		}
	}
}
