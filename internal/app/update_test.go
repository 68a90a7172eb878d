package app

import "testing"

func TestVersionLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.2.3", "1.2.4", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.4", "1.2.3", false},
		{"v1.9.0", "1.10.0", true},
		{"1.2", "1.2.1", true},
		{"2.0.0", "1.99.99", false},
		{"1.2.3-beta", "1.2.3", false},
		{"1.2.3", "2.0.0-rc1", true},
	}

	for _, tt := range tests {
		if got := versionLess(tt.a, tt.b); got != tt.want {
			t.Errorf("versionLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
