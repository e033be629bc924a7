package providers

import "promptlab/internal/capabilities"

// RateTable resolves per-1K token rates for a model.
// *capabilities.Registry implements it.
type RateTable interface {
	RatesFor(provider, model string) capabilities.Rates
}
