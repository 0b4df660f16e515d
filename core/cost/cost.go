package cost

import (
	"fmt"

	"github.com/leofalp/aitask/providers/ai"
)

// ModelCost represents the token pricing of a text model. Costs are
// expressed in USD per million tokens.
//
// Example usage:
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:       2.50,
//	    OutputCostPerMillion:      10.00,
//	    CachedInputCostPerMillion: 1.25,
//	}
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million input tokens
	InputCostPerMillion float64 `json:"input_cost_per_million" yaml:"input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million output tokens
	OutputCostPerMillion float64 `json:"output_cost_per_million" yaml:"output_cost_per_million"`

	// CachedInputCostPerMillion is the discounted rate for cached prompt tokens (optional)
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty" yaml:"cached_input_cost_per_million,omitempty"`

	// ReasoningCostPerMillion is the rate for reasoning tokens when billed separately (optional)
	ReasoningCostPerMillion float64 `json:"reasoning_cost_per_million,omitempty" yaml:"reasoning_cost_per_million,omitempty"`
}

func perMillion(units int, rate float64) float64 {
	return (float64(units) / 1_000_000.0) * rate
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return perMillion(tokens, mc.InputCostPerMillion)
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return perMillion(tokens, mc.OutputCostPerMillion)
}

// CalculateTotalCost calculates the total cost for all token types. Cached
// and reasoning tokens are only billed when their rate is set.
func (mc ModelCost) CalculateTotalCost(inputTokens, outputTokens, cachedTokens, reasoningTokens int) float64 {
	total := mc.CalculateInputCost(inputTokens)
	total += mc.CalculateOutputCost(outputTokens)

	if mc.CachedInputCostPerMillion > 0 && cachedTokens > 0 {
		total += perMillion(cachedTokens, mc.CachedInputCostPerMillion)
	}
	if mc.ReasoningCostPerMillion > 0 && reasoningTokens > 0 {
		total += perMillion(reasoningTokens, mc.ReasoningCostPerMillion)
	}
	return total
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// Pricing extends ModelCost with the unit rates media models bill by.
type Pricing struct {
	ModelCost `yaml:",inline"`

	// PerMillionCharacters prices synthesized characters (speech, sound effects).
	PerMillionCharacters float64 `json:"per_million_characters,omitempty" yaml:"per_million_characters,omitempty"`
	// PerSecond prices processed or produced audio/video seconds.
	PerSecond float64 `json:"per_second,omitempty" yaml:"per_second,omitempty"`
	// PerImage prices each generated image.
	PerImage float64 `json:"per_image,omitempty" yaml:"per_image,omitempty"`
	// PerRequest is a flat fee charged once per call.
	PerRequest float64 `json:"per_request,omitempty" yaml:"per_request,omitempty"`
}

// Estimate returns the USD cost of one call with usage. A nil usage costs
// only the flat request fee.
func (p Pricing) Estimate(usage *ai.Usage) float64 {
	total := p.PerRequest
	if usage == nil {
		return total
	}
	total += p.CalculateTotalCost(usage.PromptTokens, usage.CompletionTokens, usage.CachedTokens, usage.ReasoningTokens)
	total += perMillion(usage.Characters, p.PerMillionCharacters)
	total += usage.Seconds * p.PerSecond
	total += float64(usage.Images) * p.PerImage
	return total
}

// IsZero reports whether no rate is set.
func (p Pricing) IsZero() bool {
	return p == Pricing{}
}

// Pricer estimates the cost of a call. ok is false when the model has no
// known pricing, in which case the record carries a zero cost.
type Pricer interface {
	Estimate(provider ai.ProviderID, modelID string, usage *ai.Usage) (usd float64, ok bool)
}
