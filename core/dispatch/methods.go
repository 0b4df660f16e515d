package dispatch

import (
	"context"
	"errors"

	"github.com/leofalp/aitask/core/executor"
	"github.com/leofalp/aitask/core/record"
	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

/*
	##### TEXT #####
*/

// Complete runs a single-prompt completion on the resolved provider and
// records it in history. Executor errors are returned unchanged.
func (d *Dispatcher) Complete(ctx context.Context, req task.CompletionRequest) (*ai.ChatResponse, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*ai.ChatResponse, error) {
			return exec.Complete(ctx, req)
		},
		func(meta record.Meta, resp *ai.ChatResponse) (record.Record, error) {
			return record.FromCompletion(meta, req, resp)
		})
}

// StreamCompletion delivers deltas to h in order, then exactly one terminal
// event. The accumulated response is also returned.
func (d *Dispatcher) StreamCompletion(ctx context.Context, req task.CompletionRequest, h *stream.Handler) (*ai.ChatResponse, error) {
	return runStream(ctx, d, req.Kind(), &req.Common, h,
		func(ctx context.Context, exec executor.Executor, h *stream.Handler) error {
			return exec.CompleteStream(ctx, req, h)
		},
		func(meta record.Meta, resp *ai.ChatResponse) (record.Record, error) {
			return record.FromCompletion(meta, req, resp)
		})
}

// Chat runs a multi-turn conversation and records it. Attachments are passed
// to the executor as they are; executors reject modalities they cannot send.
func (d *Dispatcher) Chat(ctx context.Context, req task.ChatRequest) (*ai.ChatResponse, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*ai.ChatResponse, error) {
			return exec.Chat(ctx, req)
		},
		func(meta record.Meta, resp *ai.ChatResponse) (record.Record, error) {
			return record.FromChat(meta, req, resp)
		})
}

// StreamChat is the streaming form of Chat.
func (d *Dispatcher) StreamChat(ctx context.Context, req task.ChatRequest, h *stream.Handler) (*ai.ChatResponse, error) {
	return runStream(ctx, d, req.Kind(), &req.Common, h,
		func(ctx context.Context, exec executor.Executor, h *stream.Handler) error {
			return exec.ChatStream(ctx, req, h)
		},
		func(meta record.Meta, resp *ai.ChatResponse) (record.Record, error) {
			return record.FromChat(meta, req, resp)
		})
}

/*
	##### IMAGE #####
*/

// CreateImage generates req.Count images. When persistence is on, the
// executor writes them at the resolved output path.
func (d *Dispatcher) CreateImage(ctx context.Context, req task.ImageRequest) (*task.ImageResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.ImageResult, error) {
			return exec.CreateImage(ctx, req)
		},
		func(meta record.Meta, res *task.ImageResult) (record.Record, error) {
			return record.FromImage(meta, req, res)
		})
}

// EditImage rewrites the source image following the prompt, optionally
// limited to the transparent area of the mask.
func (d *Dispatcher) EditImage(ctx context.Context, req task.ImageEditRequest) (*task.ImageResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.ImageResult, error) {
			return exec.EditImage(ctx, req)
		},
		func(meta record.Meta, res *task.ImageResult) (record.Record, error) {
			return record.FromImageEdit(meta, req, res)
		})
}

// CreateImageVariation generates variations of the source image.
func (d *Dispatcher) CreateImageVariation(ctx context.Context, req task.ImageVariationRequest) (*task.ImageResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.ImageResult, error) {
			return exec.CreateImageVariation(ctx, req)
		},
		func(meta record.Meta, res *task.ImageResult) (record.Record, error) {
			return record.FromImageVariation(meta, req, res)
		})
}

/*
	##### AUDIO #####
*/

// Speech synthesizes req.Prompt. Without persistence the audio stays in memory
// on the result; with it the file lands at the resolved output path.
func (d *Dispatcher) Speech(ctx context.Context, req task.SpeechRequest) (*task.AudioResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.AudioResult, error) {
			return exec.Speech(ctx, req)
		},
		func(meta record.Meta, res *task.AudioResult) (record.Record, error) {
			return record.FromSpeech(meta, req, res)
		})
}

// Transcribe turns the audio into text in its spoken language.
func (d *Dispatcher) Transcribe(ctx context.Context, req task.TranscriptRequest) (*task.TranscriptResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.TranscriptResult, error) {
			return exec.Transcribe(ctx, req)
		},
		func(meta record.Meta, res *task.TranscriptResult) (record.Record, error) {
			return record.FromTranscript(meta, req, res)
		})
}

// Translate transcribes the audio into req.TargetLanguage, or English when
// the vendor has no target option.
func (d *Dispatcher) Translate(ctx context.Context, req task.TranslationRequest) (*task.TranscriptResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.TranscriptResult, error) {
			return exec.Translate(ctx, req)
		},
		func(meta record.Meta, res *task.TranscriptResult) (record.Record, error) {
			return record.FromTranslation(meta, req, res)
		})
}

// SoundEffect generates a sound effect from a text description.
func (d *Dispatcher) SoundEffect(ctx context.Context, req task.SoundEffectRequest) (*task.AudioResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.AudioResult, error) {
			return exec.SoundEffect(ctx, req)
		},
		func(meta record.Meta, res *task.AudioResult) (record.Record, error) {
			return record.FromSoundEffect(meta, req, res)
		})
}

// ChangeVoice re-voices the source audio with the requested voice.
func (d *Dispatcher) ChangeVoice(ctx context.Context, req task.VoiceChangeRequest) (*task.AudioResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.AudioResult, error) {
			return exec.ChangeVoice(ctx, req)
		},
		func(meta record.Meta, res *task.AudioResult) (record.Record, error) {
			return record.FromVoiceChange(meta, req, res)
		})
}

// IsolateAudio strips background noise and music from the source audio.
func (d *Dispatcher) IsolateAudio(ctx context.Context, req task.AudioIsolationRequest) (*task.AudioResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.AudioResult, error) {
			return exec.IsolateAudio(ctx, req)
		},
		func(meta record.Meta, res *task.AudioResult) (record.Record, error) {
			return record.FromAudioIsolation(meta, req, res)
		})
}

/*
	##### VIDEO #####
*/

// CreateVideo generates a clip from the prompt and an optional first frame.
func (d *Dispatcher) CreateVideo(ctx context.Context, req task.VideoRequest) (*task.VideoResult, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) (*task.VideoResult, error) {
			return exec.CreateVideo(ctx, req)
		},
		func(meta record.Meta, res *task.VideoResult) (record.Record, error) {
			return record.FromVideo(meta, req, res)
		})
}

/*
	##### LISTINGS #####
*/

// modelLister is implemented by catalogs that can list their own entries.
type modelLister interface {
	Models(provider ai.ProviderID, kind task.Kind) []task.ModelInfo
}

// ListModels asks the provider for its models. Providers without a listing
// endpoint fall back to the catalog entries for that provider. Listings are
// never recorded.
func (d *Dispatcher) ListModels(ctx context.Context, req task.ListModelsRequest) ([]task.ModelInfo, error) {
	var provider ai.ProviderID
	models, err := run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) ([]task.ModelInfo, error) {
			provider = exec.Provider()
			return exec.ListModels(ctx, req)
		}, nil)
	if err != nil && errors.Is(err, executor.ErrUnsupported) {
		if lister, ok := d.models.(modelLister); ok {
			return lister.Models(provider, req.Filter), nil
		}
	}
	return models, err
}

// ListVoices asks the provider for its voices. Listings are never recorded.
func (d *Dispatcher) ListVoices(ctx context.Context, req task.ListVoicesRequest) ([]task.VoiceInfo, error) {
	return run(ctx, d, req.Kind(), &req.Common,
		func(ctx context.Context, exec executor.Executor) ([]task.VoiceInfo, error) {
			return exec.ListVoices(ctx, req)
		}, nil)
}
