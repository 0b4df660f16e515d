package catalog

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

const sampleYAML = `
models:
  - id: tts-1
    name: TTS 1
    provider: openai
    kinds: [speech]
    pricing:
      per_million_characters: 15
  - id: gpt-4o
    provider: openai
    kinds: [chat, completion]
    pricing:
      input_cost_per_million: 2.5
      output_cost_per_million: 10
  - id: stable-audio
    provider: Stability AI
    keyword: audio
    kinds: [sound_effect]
  - id: gpt-4o
    provider: openrouter
`

// TestParse verifies YAML decoding of entries, kinds and pricing.
func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", c.Len())
	}

	entry, ok := c.ResolveModel("stable-audio")
	if !ok {
		t.Fatal("expected stable-audio to resolve")
	}
	if entry.Provider != ai.ProviderStability || entry.Keyword != "audio" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if !entry.Serves(task.KindSoundEffect) || entry.Serves(task.KindChat) {
		t.Errorf("unexpected kinds: %v", entry.Kinds)
	}
}

// TestResolveModel_FirstProviderWins verifies lookups of shared ids.
func TestResolveModel_FirstProviderWins(t *testing.T) {
	c, _ := Parse([]byte(sampleYAML))

	entry, _ := c.ResolveModel("gpt-4o")
	if entry.Provider != ai.ProviderOpenAI {
		t.Errorf("expected openai, got %v", entry.Provider)
	}
	if _, ok := c.Lookup(ai.ProviderOpenRouter, "gpt-4o"); !ok {
		t.Error("expected the openrouter entry through Lookup")
	}
	if _, ok := c.ResolveModel("unknown"); ok {
		t.Error("unknown model should not resolve")
	}
}

// TestEstimate verifies pricing through the catalog.
func TestEstimate(t *testing.T) {
	c, _ := Parse([]byte(sampleYAML))

	usd, ok := c.Estimate(ai.ProviderOpenAI, "gpt-4o", &ai.Usage{PromptTokens: 1_000_000, CompletionTokens: 100_000})
	if !ok || math.Abs(usd-3.5) > 1e-9 {
		t.Errorf("expected (3.5, true), got (%f, %v)", usd, ok)
	}
	if _, ok := c.Estimate(ai.ProviderStability, "stable-audio", &ai.Usage{Seconds: 3}); ok {
		t.Error("unpriced model should report ok=false")
	}
}

// TestModels verifies filtering by provider and kind.
func TestModels(t *testing.T) {
	c, _ := Parse([]byte(sampleYAML))

	if got := c.Models(ai.ProviderOpenAI, task.KindUnknown); len(got) != 2 {
		t.Errorf("expected 2 openai models, got %d", len(got))
	}
	if got := c.Models(ai.ProviderAll, task.KindChat); len(got) != 2 {
		t.Errorf("expected gpt-4o twice (openrouter lists no kinds), got %d", len(got))
	}
}

// TestNew_Invalid verifies entry validation.
func TestNew_Invalid(t *testing.T) {
	if _, err := New(Entry{Provider: ai.ProviderOpenAI}); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := New(Entry{ID: "x"}); err == nil {
		t.Error("expected error for missing provider")
	}
	if _, err := Parse([]byte("models:\n  - id: x\n    provider: acme\n")); err == nil {
		t.Error("expected error for unknown provider")
	}
}

// TestLoad_MissingFile verifies that a missing file is an empty catalog.
func TestLoad_MissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil || c.Len() != 0 {
		t.Fatalf("expected empty catalog, got %v (err %v)", c, err)
	}

	path := filepath.Join(t.TempDir(), "aitask.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err = Load(path)
	if err != nil || c.Len() != 4 {
		t.Fatalf("expected 4 entries, got err %v", err)
	}
}
