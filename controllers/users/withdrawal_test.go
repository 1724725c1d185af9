package users

import "testing"

func TestMaskWalletAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "short"},
		{"0123456789", "0123456789"},
		{"TXYZabcdef1234567890", "TXYZab****7890"},
	}
	for _, c := range cases {
		if got := MaskWalletAddress(c.in); got != c.want {
			t.Fatalf("MaskWalletAddress(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
