package statement

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"250.00", 250, true},
		{"1,234.56", 1234.56, true},
		{"₹1,500", 1500, true},
		{"  45 ", 45, true},
		{"-120.50", -120.50, true},
		{"0", 0, true},
		{"", 0, false},
		{"   ", 0, false},
		{"N/A", 0, false},
		{"12.3.4", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseAmount(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAmount(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
