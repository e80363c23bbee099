package money

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{250.0, 250.0},
		{250.005, 250.01},
		{1.005, 1.01},
		{-1.005, -1.01},
		{12.344, 12.34},
		{12.346, 12.35},
		{-2.345, -2.35},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round2(tt.input); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
