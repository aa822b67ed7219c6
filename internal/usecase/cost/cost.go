// Package cost estimates the monetary cost of a generation call.
package cost

import "github.com/kailas-cloud/bookclub/internal/domain"

// Price is the rate in USD per 1000 tokens.
type Price struct {
	Prompt     float64
	Completion float64
}

// DefaultPrices is the built-in table; self-hosted models are absent and cost nothing.
func DefaultPrices() map[string]Price {
	return map[string]Price{
		"openai/gpt-3.5-turbo": {Prompt: 0.0015, Completion: 0.002},
		"openai/gpt-4o":        {Prompt: 0.03, Completion: 0.06},
		"openai/gpt-4o-mini":   {Prompt: 0.03, Completion: 0.06},
	}
}

// Estimator looks up prices by full model id. Read-only after construction.
type Estimator struct {
	prices map[string]Price
}

// New builds an estimator from the default table with overrides applied on top.
func New(overrides map[string]Price) *Estimator {
	prices := DefaultPrices()
	for id, p := range overrides {
		prices[id] = p
	}
	return &Estimator{prices: prices}
}

// Cost returns (prompt*rate_p + completion*rate_c) / 1000, or 0 for unpriced models.
func (e *Estimator) Cost(modelID string, usage domain.TokenUsage) float64 {
	p, ok := e.prices[modelID]
	if !ok {
		return 0
	}
	return (float64(usage.PromptTokens)*p.Prompt + float64(usage.CompletionTokens)*p.Completion) / 1000
}

// Priced reports whether the model has a price entry.
func (e *Estimator) Priced(modelID string) bool {
	_, ok := e.prices[modelID]
	return ok
}
