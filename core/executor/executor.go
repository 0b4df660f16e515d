package executor

import (
	"context"

	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// Executor performs provider-specific generation calls. Requests reaching an
// executor are already validated, and media requests that asked for
// persistence carry the resolved destination in OutputPath.
//
// The streaming methods must leave h terminated before returning, with
// Complete on success or Error on failure. stream.Pump and stream.Replay do
// this for iterator-based and non-streaming transports respectively.
type Executor interface {
	Provider() ai.ProviderID

	Complete(ctx context.Context, req task.CompletionRequest) (*ai.ChatResponse, error)
	CompleteStream(ctx context.Context, req task.CompletionRequest, h *stream.Handler) error
	Chat(ctx context.Context, req task.ChatRequest) (*ai.ChatResponse, error)
	ChatStream(ctx context.Context, req task.ChatRequest, h *stream.Handler) error

	CreateImage(ctx context.Context, req task.ImageRequest) (*task.ImageResult, error)
	EditImage(ctx context.Context, req task.ImageEditRequest) (*task.ImageResult, error)
	CreateImageVariation(ctx context.Context, req task.ImageVariationRequest) (*task.ImageResult, error)

	Speech(ctx context.Context, req task.SpeechRequest) (*task.AudioResult, error)
	Transcribe(ctx context.Context, req task.TranscriptRequest) (*task.TranscriptResult, error)
	Translate(ctx context.Context, req task.TranslationRequest) (*task.TranscriptResult, error)
	SoundEffect(ctx context.Context, req task.SoundEffectRequest) (*task.AudioResult, error)
	ChangeVoice(ctx context.Context, req task.VoiceChangeRequest) (*task.AudioResult, error)
	IsolateAudio(ctx context.Context, req task.AudioIsolationRequest) (*task.AudioResult, error)

	CreateVideo(ctx context.Context, req task.VideoRequest) (*task.VideoResult, error)

	ListModels(ctx context.Context, req task.ListModelsRequest) ([]task.ModelInfo, error)
	ListVoices(ctx context.Context, req task.ListVoicesRequest) ([]task.VoiceInfo, error)
}
