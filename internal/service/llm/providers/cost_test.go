package providers

import (
	"testing"

	"promptlab/internal/capabilities"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name       string
		prompt     int
		completion int
		rates      capabilities.Rates
		want       float64
	}{
		{
			name:       "reference rates",
			prompt:     1000,
			completion: 2000,
			rates:      capabilities.Rates{InputPer1K: 0.00025, OutputPer1K: 0.0005},
			want:       0.00125,
		},
		{
			name:  "no tokens",
			rates: capabilities.Rates{InputPer1K: 1, OutputPer1K: 1},
			want:  0,
		},
		{
			name:       "free model",
			prompt:     500,
			completion: 500,
			want:       0,
		},
		{
			name:       "negative counts clamp to zero",
			prompt:     -100,
			completion: -5,
			rates:      capabilities.Rates{InputPer1K: 1, OutputPer1K: 1},
			want:       0,
		},
		{
			name:       "negative rate clamps to zero",
			prompt:     1000,
			completion: 1000,
			rates:      capabilities.Rates{InputPer1K: -1, OutputPer1K: 2},
			want:       2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCost(tt.prompt, tt.completion, tt.rates)
			if got != tt.want {
				t.Errorf("CalculateCost() = %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Errorf("cost is negative: %v", got)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"héllo wörld!", 3},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
