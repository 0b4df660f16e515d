package task

import (
	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/providers/ai"
)

// Request is implemented by every built descriptor.
type Request interface {
	Kind() Kind
	Shared() Common
}

// Common holds the fields every descriptor carries.
type Common struct {
	// Model is the target model; nil lets the dispatcher pick the default
	// provider for the kind.
	Model *ModelRef
	// Provider selects a vendor without naming a model. Ignored when Model
	// carries its own provider.
	Provider ai.ProviderID
	// Count is the number of outputs requested (n). Always >= 1 once built.
	Count int
	// Persist asks for the result to be written to OutputPath.
	Persist bool
	// OutputPath is a file path or directory. The dispatcher replaces it with
	// the resolved destination before the executor sees the request.
	OutputPath string
	// OutputMime is the requested output format, e.g. "audio/mpeg".
	OutputMime string
	// Sender tags the caller (an editor window, a job name, a user id).
	Sender  string
	Options Options
}

// Shared returns the common fields; promoted to every request type.
func (c Common) Shared() Common { return c }

// ModelID returns the model id or "" when no model was set.
func (c Common) ModelID() string {
	if c.Model == nil {
		return ""
	}
	return c.Model.ID
}

type CompletionRequest struct {
	Common
	Prompt      string
	System      string
	MaxTokens   int
	Temperature *float64
	Stop        []string
}

func (CompletionRequest) Kind() Kind { return KindCompletion }

type ChatRequest struct {
	Common
	System       string
	Messages     []Message
	Tools        []Tool
	MaxTokens    int
	Temperature  *float64
	Reasoning    *ReasoningOptions
	WebSearch    *WebSearchOptions
	SpeechOutput *SpeechOutputOptions
}

func (ChatRequest) Kind() Kind { return KindChat }

type ImageRequest struct {
	Common
	Prompt  string
	Size    string
	Quality string
	Style   string
}

func (ImageRequest) Kind() Kind { return KindImageCreate }

type ImageEditRequest struct {
	Common
	Prompt string
	Image  content.Content
	Mask   content.Content
	Size   string
}

func (ImageEditRequest) Kind() Kind { return KindImageEdit }

type ImageVariationRequest struct {
	Common
	Image content.Content
	Size  string
}

func (ImageVariationRequest) Kind() Kind { return KindImageVariation }

type SpeechRequest struct {
	Common
	Prompt       string
	Voice        string
	Speed        float64
	Instructions string
}

func (SpeechRequest) Kind() Kind { return KindSpeech }

type TranscriptRequest struct {
	Common
	Audio      content.Content
	Language   string
	Prompt     string
	Timestamps bool
}

func (TranscriptRequest) Kind() Kind { return KindTranscript }

type TranslationRequest struct {
	Common
	Audio          content.Content
	Prompt         string
	TargetLanguage string
}

func (TranslationRequest) Kind() Kind { return KindTranslation }

type SoundEffectRequest struct {
	Common
	Prompt string
	// Duration in seconds; zero lets the vendor choose.
	Duration        float64
	PromptInfluence float64
	Loop            bool
}

func (SoundEffectRequest) Kind() Kind { return KindSoundEffect }

type VoiceChangeRequest struct {
	Common
	Audio       content.Content
	Voice       string
	RemoveNoise bool
}

func (VoiceChangeRequest) Kind() Kind { return KindVoiceChange }

type AudioIsolationRequest struct {
	Common
	Audio content.Content
}

func (AudioIsolationRequest) Kind() Kind { return KindAudioIsolation }

type VideoRequest struct {
	Common
	Prompt string
	// Image optionally seeds the first frame.
	Image       content.Content
	Duration    float64
	Resolution  string
	AspectRatio string
}

func (VideoRequest) Kind() Kind { return KindVideo }

type ListModelsRequest struct {
	Common
	// Filter limits the listing to models that serve one kind.
	Filter Kind
}

func (ListModelsRequest) Kind() Kind { return KindListModels }

type ListVoicesRequest struct {
	Common
	Language string
}

func (ListVoicesRequest) Kind() Kind { return KindListVoices }
