package providers

import "promptlab/internal/capabilities"

// CalculateCost prices a call in USD:
// (promptTokens/1000)*inputRate + (completionTokens/1000)*outputRate.
// Negative counts or rates contribute nothing.
func CalculateCost(promptTokens, completionTokens int, rates capabilities.Rates) float64 {
	in := max(0, rates.InputPer1K)
	out := max(0, rates.OutputPer1K)
	pt := float64(max(0, promptTokens))
	ct := float64(max(0, completionTokens))

	// Multiply before dividing so exact per-token rates stay exact
	return (pt*in + ct*out) / 1000
}
