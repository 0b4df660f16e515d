package executor

import (
	"context"

	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// Unsupported implements every Executor method by returning an
// *UnsupportedError for ID. Embed it and override the supported kinds.
type Unsupported struct {
	ID ai.ProviderID
}

var _ Executor = Unsupported{}

func (u Unsupported) Provider() ai.ProviderID { return u.ID }

func (u Unsupported) unsupported(kind task.Kind) error {
	return &UnsupportedError{Provider: u.ID, Kind: kind}
}

func (u Unsupported) Complete(context.Context, task.CompletionRequest) (*ai.ChatResponse, error) {
	return nil, u.unsupported(task.KindCompletion)
}

// CompleteStream terminates h with the unsupported error so streaming callers
// are never left waiting.
func (u Unsupported) CompleteStream(_ context.Context, _ task.CompletionRequest, h *stream.Handler) error {
	err := u.unsupported(task.KindCompletion)
	if h != nil {
		h.Error(err)
	}
	return err
}

func (u Unsupported) Chat(context.Context, task.ChatRequest) (*ai.ChatResponse, error) {
	return nil, u.unsupported(task.KindChat)
}

func (u Unsupported) ChatStream(_ context.Context, _ task.ChatRequest, h *stream.Handler) error {
	err := u.unsupported(task.KindChat)
	if h != nil {
		h.Error(err)
	}
	return err
}

func (u Unsupported) CreateImage(context.Context, task.ImageRequest) (*task.ImageResult, error) {
	return nil, u.unsupported(task.KindImageCreate)
}

func (u Unsupported) EditImage(context.Context, task.ImageEditRequest) (*task.ImageResult, error) {
	return nil, u.unsupported(task.KindImageEdit)
}

func (u Unsupported) CreateImageVariation(context.Context, task.ImageVariationRequest) (*task.ImageResult, error) {
	return nil, u.unsupported(task.KindImageVariation)
}

func (u Unsupported) Speech(context.Context, task.SpeechRequest) (*task.AudioResult, error) {
	return nil, u.unsupported(task.KindSpeech)
}

func (u Unsupported) Transcribe(context.Context, task.TranscriptRequest) (*task.TranscriptResult, error) {
	return nil, u.unsupported(task.KindTranscript)
}

func (u Unsupported) Translate(context.Context, task.TranslationRequest) (*task.TranscriptResult, error) {
	return nil, u.unsupported(task.KindTranslation)
}

func (u Unsupported) SoundEffect(context.Context, task.SoundEffectRequest) (*task.AudioResult, error) {
	return nil, u.unsupported(task.KindSoundEffect)
}

func (u Unsupported) ChangeVoice(context.Context, task.VoiceChangeRequest) (*task.AudioResult, error) {
	return nil, u.unsupported(task.KindVoiceChange)
}

func (u Unsupported) IsolateAudio(context.Context, task.AudioIsolationRequest) (*task.AudioResult, error) {
	return nil, u.unsupported(task.KindAudioIsolation)
}

func (u Unsupported) CreateVideo(context.Context, task.VideoRequest) (*task.VideoResult, error) {
	return nil, u.unsupported(task.KindVideo)
}

func (u Unsupported) ListModels(context.Context, task.ListModelsRequest) ([]task.ModelInfo, error) {
	return nil, u.unsupported(task.KindListModels)
}

func (u Unsupported) ListVoices(context.Context, task.ListVoicesRequest) ([]task.VoiceInfo, error) {
	return nil, u.unsupported(task.KindListVoices)
}
