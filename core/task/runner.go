package task

import (
	"context"

	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/providers/ai"
)

// Runner executes built requests. dispatch.Dispatcher is the production
// implementation; builders only depend on this interface so descriptors stay
// free of dispatch concerns.
//
// Every method blocks until the result is available or ctx is done. The
// streaming methods return once the handler has received its terminal event.
type Runner interface {
	Complete(ctx context.Context, req CompletionRequest) (*ai.ChatResponse, error)
	StreamCompletion(ctx context.Context, req CompletionRequest, h *stream.Handler) (*ai.ChatResponse, error)
	Chat(ctx context.Context, req ChatRequest) (*ai.ChatResponse, error)
	StreamChat(ctx context.Context, req ChatRequest, h *stream.Handler) (*ai.ChatResponse, error)

	CreateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
	EditImage(ctx context.Context, req ImageEditRequest) (*ImageResult, error)
	CreateImageVariation(ctx context.Context, req ImageVariationRequest) (*ImageResult, error)

	Speech(ctx context.Context, req SpeechRequest) (*AudioResult, error)
	Transcribe(ctx context.Context, req TranscriptRequest) (*TranscriptResult, error)
	Translate(ctx context.Context, req TranslationRequest) (*TranscriptResult, error)
	SoundEffect(ctx context.Context, req SoundEffectRequest) (*AudioResult, error)
	ChangeVoice(ctx context.Context, req VoiceChangeRequest) (*AudioResult, error)
	IsolateAudio(ctx context.Context, req AudioIsolationRequest) (*AudioResult, error)

	CreateVideo(ctx context.Context, req VideoRequest) (*VideoResult, error)

	ListModels(ctx context.Context, req ListModelsRequest) ([]ModelInfo, error)
	ListVoices(ctx context.Context, req ListVoicesRequest) ([]VoiceInfo, error)
}
