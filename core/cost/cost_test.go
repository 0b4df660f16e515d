package cost

import (
	"math"
	"testing"

	"github.com/leofalp/aitask/providers/ai"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestModelCostCalculateTotalCost(t *testing.T) {
	mc := ModelCost{
		InputCostPerMillion:       2.50,
		OutputCostPerMillion:      10.00,
		CachedInputCostPerMillion: 1.25,
		ReasoningCostPerMillion:   5.00,
	}

	tests := []struct {
		name                             string
		input, output, cached, reasoning int
		expected                         float64
	}{
		{"tokens only", 1_000_000, 500_000, 0, 0, 2.50 + 5.00},
		{"with cached", 1_000_000, 0, 200_000, 0, 2.50 + 0.25},
		{"with reasoning", 0, 0, 0, 100_000, 0.50},
		{"zero", 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mc.CalculateTotalCost(tt.input, tt.output, tt.cached, tt.reasoning)
			if !almostEqual(got, tt.expected) {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestModelCostString(t *testing.T) {
	mc := ModelCost{InputCostPerMillion: 2.50, OutputCostPerMillion: 10.00}
	expected := "Input: $2.500000/M, Output: $10.000000/M"
	if mc.String() != expected {
		t.Errorf("Expected %s, got %s", expected, mc.String())
	}
}

// TestPricingEstimate verifies that media units are priced alongside tokens.
func TestPricingEstimate(t *testing.T) {
	pricing := Pricing{
		ModelCost:            ModelCost{InputCostPerMillion: 1, OutputCostPerMillion: 2},
		PerMillionCharacters: 30,
		PerSecond:            0.01,
		PerImage:             0.04,
		PerRequest:           0.001,
	}

	tests := []struct {
		name     string
		usage    *ai.Usage
		expected float64
	}{
		{"nil usage", nil, 0.001},
		{"speech characters", &ai.Usage{Characters: 1000}, 0.001 + 0.03},
		{"video seconds", &ai.Usage{Seconds: 8}, 0.001 + 0.08},
		{"images", &ai.Usage{Images: 2}, 0.001 + 0.08},
		{"tokens", &ai.Usage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000}, 0.001 + 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pricing.Estimate(tt.usage); !almostEqual(got, tt.expected) {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}
