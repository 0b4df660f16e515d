package task

import (
	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/providers/ai"
)

// Chat and completion operations return *ai.ChatResponse directly.

type ImageResult struct {
	Model         string
	Images        []content.Content
	RevisedPrompt string
	Usage         *ai.Usage
}

// AudioResult is returned by speech, sound-effect, voice-change and
// audio-isolation operations.
type AudioResult struct {
	Model string
	Audio content.Content
	Usage *ai.Usage
}

// TranscriptResult is returned by transcript and translation operations.
type TranscriptResult struct {
	Model    string
	Text     string
	Language string
	// Duration of the source audio in seconds.
	Duration float64
	Usage    *ai.Usage
}

type VideoResult struct {
	Model string
	Video content.Content
	Usage *ai.Usage
}

type ModelInfo struct {
	ID       string        `json:"id"`
	Name     string        `json:"name,omitempty"`
	Provider ai.ProviderID `json:"provider"`
	Kinds    []Kind        `json:"kinds,omitempty"`
	OwnedBy  string        `json:"owned_by,omitempty"`
}

type VoiceInfo struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Provider   ai.ProviderID `json:"provider"`
	Language   string        `json:"language,omitempty"`
	Gender     string        `json:"gender,omitempty"`
	Category   string        `json:"category,omitempty"`
	PreviewURL string        `json:"preview_url,omitempty"`
}
