package openai

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/leofalp/aitask/core/executor"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/internal/utils"
	"github.com/leofalp/aitask/providers/ai"
	"github.com/leofalp/aitask/providers/observability"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	chatCompletionsEndpoint = "/chat/completions"
	imagesEndpoint          = "/images/generations"
	speechEndpoint          = "/audio/speech"
	transcriptionsEndpoint  = "/audio/transcriptions"
	translationsEndpoint    = "/audio/translations"
	modelsEndpoint          = "/models"
)

// Default models used when a request names none.
const (
	DefaultChatModel       = "gpt-4o-mini"
	DefaultImageModel      = "dall-e-3"
	DefaultSpeechModel     = "tts-1"
	DefaultTranscribeModel = "whisper-1"
	DefaultVoice           = "alloy"
)

// ErrNoAPIKey is returned by every call when no API key is configured.
var ErrNoAPIKey = errors.New("openai: API key is not set")

// Executor implements executor.Executor for the OpenAI API.
type Executor struct {
	executor.Unsupported

	apiKey  string
	baseURL string
	client  *http.Client
	retry   utils.RetryConfig
}

var _ executor.Executor = (*Executor)(nil)

// Option configures an Executor.
type Option func(*Executor)

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(e *Executor) { e.apiKey = apiKey }
}

// WithBaseURL sets the base URL of an OpenAI-compatible API.
func WithBaseURL(baseURL string) Option {
	return func(e *Executor) { e.baseURL = baseURL }
}

// WithHTTPClient sets a custom HTTP client. It replaces the default client
// and its retry policy.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Executor) { e.client = client }
}

// WithMaxRetries sets how many times rate-limited or failed requests are
// retried by the default client. Zero keeps the default of 3.
func WithMaxRetries(n int) Option {
	return func(e *Executor) { e.retry.MaxRetries = n }
}

// New creates an executor with values from the environment, overridden by
// opts.
func New(opts ...Option) *Executor {
	e := &Executor{
		Unsupported: executor.Unsupported{ID: ai.ProviderOpenAI},
		apiKey:      os.Getenv("OPENAI_API_KEY"),
		baseURL:     os.Getenv("OPENAI_API_BASE_URL"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = &http.Client{Transport: utils.NewRetryTransport(nil, e.retry)}
	}
	if e.baseURL == "" {
		e.baseURL = defaultBaseURL
	}
	return e
}

// prepare checks the key and annotates the dispatch span.
func (e *Executor) prepare(ctx context.Context, kind task.Kind, model string) error {
	if e.apiKey == "" {
		return ErrNoAPIKey
	}
	if observer := observability.ObserverFromContext(ctx); observer != nil {
		observer.Trace(ctx, "OpenAI executor preparing request",
			observability.Kind(kind.String()),
			observability.Model(model),
			observability.String(observability.AttrHTTPURL, e.baseURL),
		)
	}
	return nil
}

func modelOr(common task.Common, fallback string) string {
	if id := common.ModelID(); id != "" {
		return id
	}
	return fallback
}
