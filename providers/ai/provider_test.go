package ai

import "testing"

// TestParseProvider verifies identifier, display-name, and sentinel parsing.
func TestParseProvider(t *testing.T) {
	tests := []struct {
		input    string
		expected ProviderID
		wantErr  bool
	}{
		{input: "openai", expected: ProviderOpenAI},
		{input: "  OpenAI ", expected: ProviderOpenAI},
		{input: "Stability AI", expected: ProviderStability},
		{input: "none", expected: ProviderNone},
		{input: "", expected: ProviderNone},
		{input: "all", expected: ProviderAll},
		{input: "*", expected: ProviderAll},
		{input: "unknown-vendor", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestProviderID_IsDispatchable verifies that sentinels are never dispatch
// targets while every listed provider is.
func TestProviderID_IsDispatchable(t *testing.T) {
	if ProviderNone.IsDispatchable() || ProviderAll.IsDispatchable() {
		t.Fatal("sentinel providers must not be dispatchable")
	}
	for _, id := range Providers() {
		if !id.IsDispatchable() {
			t.Errorf("expected %q to be dispatchable", id)
		}
	}
}

// TestProviderID_TextRoundTrip verifies that MarshalText output parses back
// to the same identifier, sentinels included.
func TestProviderID_TextRoundTrip(t *testing.T) {
	for _, id := range append(Providers(), ProviderNone, ProviderAll) {
		text, _ := id.MarshalText()
		var decoded ProviderID
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if decoded != id {
			t.Errorf("expected %q, got %q", id, decoded)
		}
	}
}

// TestUsage_Add verifies element-wise addition with nil operands.
func TestUsage_Add(t *testing.T) {
	var nilUsage *Usage
	sum := nilUsage.Add(&Usage{PromptTokens: 2, Seconds: 1.5}).Add(&Usage{PromptTokens: 3, Images: 1})
	if sum.PromptTokens != 5 || sum.Seconds != 1.5 || sum.Images != 1 {
		t.Errorf("unexpected sum: %+v", sum)
	}
	if !nilUsage.IsZero() || sum.IsZero() {
		t.Error("IsZero mismatch")
	}
}
