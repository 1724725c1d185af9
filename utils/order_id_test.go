package utils

import (
	"strings"
	"testing"
)

func TestGenerateOrderIDPrefixAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateOrderID(42)
		if !strings.HasPrefix(id, "MLM-") {
			t.Fatalf("unexpected prefix: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate order id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestRoundFloat(t *testing.T) {
	cases := []struct {
		in        float64
		precision int
		want      float64
	}{
		{1.005, 2, 1.0},
		{2.676, 2, 2.68},
		{100.4999, 2, 100.5},
		{-3.14159, 3, -3.142},
		{0, 2, 0},
	}
	for _, c := range cases {
		if got := RoundFloat(c.in, c.precision); got != c.want {
			t.Fatalf("RoundFloat(%v, %d) = %v, want %v", c.in, c.precision, got, c.want)
		}
	}
}
