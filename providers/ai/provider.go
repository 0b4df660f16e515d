package ai

import (
	"fmt"
	"strings"
)

// ProviderID identifies a generative-AI vendor. The set is closed: executors
// can only be registered for the identifiers declared here.
type ProviderID string

const (
	// ProviderNone means "not specified" and triggers default-provider
	// resolution. It is never a valid dispatch target.
	ProviderNone ProviderID = ""
	// ProviderAll is a wildcard used when filtering records or listings.
	// It is never a valid dispatch target.
	ProviderAll ProviderID = "*"

	ProviderOpenAI     ProviderID = "openai"
	ProviderAnthropic  ProviderID = "anthropic"
	ProviderGoogle     ProviderID = "google"
	ProviderElevenLabs ProviderID = "elevenlabs"
	ProviderStability  ProviderID = "stability"
	ProviderMistral    ProviderID = "mistral"
	ProviderXAI        ProviderID = "xai"
	ProviderOpenRouter ProviderID = "openrouter"
	ProviderOllama     ProviderID = "ollama"
	// ProviderEcho is the offline executor shipped with the module. It never
	// leaves the process and is used by the CLI and tests.
	ProviderEcho ProviderID = "echo"
)

var providerDisplayNames = map[ProviderID]string{
	ProviderOpenAI:     "OpenAI",
	ProviderAnthropic:  "Anthropic",
	ProviderGoogle:     "Google",
	ProviderElevenLabs: "ElevenLabs",
	ProviderStability:  "Stability AI",
	ProviderMistral:    "Mistral",
	ProviderXAI:        "xAI",
	ProviderOpenRouter: "OpenRouter",
	ProviderOllama:     "Ollama",
	ProviderEcho:       "Echo",
}

// Providers returns every dispatchable provider in declaration order.
func Providers() []ProviderID {
	return []ProviderID{
		ProviderOpenAI,
		ProviderAnthropic,
		ProviderGoogle,
		ProviderElevenLabs,
		ProviderStability,
		ProviderMistral,
		ProviderXAI,
		ProviderOpenRouter,
		ProviderOllama,
		ProviderEcho,
	}
}

// String returns the identifier as used in configuration files.
func (p ProviderID) String() string {
	switch p {
	case ProviderNone:
		return "none"
	case ProviderAll:
		return "all"
	}
	return string(p)
}

// DisplayName returns the human-readable vendor name, e.g. "Stability AI".
// Unknown identifiers are returned verbatim.
func (p ProviderID) DisplayName() string {
	if name, ok := providerDisplayNames[p]; ok {
		return name
	}
	return p.String()
}

// IsDispatchable reports whether p names a concrete vendor that an executor
// can be registered for.
func (p ProviderID) IsDispatchable() bool {
	_, ok := providerDisplayNames[p]
	return ok
}

// ParseProvider converts a configuration value into a ProviderID. Matching is
// case-insensitive and accepts both identifiers ("stability") and display
// names ("Stability AI"). "none" and "" map to ProviderNone, "all" and "*" to
// ProviderAll.
func ParseProvider(value string) (ProviderID, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", "none":
		return ProviderNone, nil
	case "*", "all":
		return ProviderAll, nil
	}

	for id, name := range providerDisplayNames {
		if normalized == string(id) || normalized == strings.ToLower(name) {
			return id, nil
		}
	}
	return ProviderNone, fmt.Errorf("aitask: unknown provider %q", value)
}

// UnmarshalText lets ProviderID be decoded directly from YAML, JSON, and
// environment variables.
func (p *ProviderID) UnmarshalText(text []byte) error {
	parsed, err := ParseProvider(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText encodes the identifier in its configuration form.
func (p ProviderID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
