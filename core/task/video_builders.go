package task

import (
	"context"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/providers/ai"
)

// VideoBuilder describes a text-to-video task, optionally seeded with a
// first frame.
type VideoBuilder struct {
	builder[*VideoBuilder]
	req VideoRequest
}

// NewVideo starts a text-to-video request. Attach an image to seed the first
// frame.
func NewVideo(prompt string) *VideoBuilder {
	b := &VideoBuilder{req: VideoRequest{Prompt: prompt}}
	b.init(b, KindVideo)
	return b
}

// AttachFile seeds the first frame from an image file.
func (b *VideoBuilder) AttachFile(path string) *VideoBuilder {
	if c := b.loadFile("image", path, ai.ModalityImage); c != nil {
		b.req.Image = c
	}
	return b
}

// Attach seeds the first frame from an in-memory image.
func (b *VideoBuilder) Attach(c content.Content) *VideoBuilder {
	if accepted := b.accept("image", c, ai.ModalityImage); accepted != nil {
		b.req.Image = accepted
	}
	return b
}

// Duration sets the clip length in seconds.
func (b *VideoBuilder) Duration(seconds float64) *VideoBuilder {
	if seconds < 0 {
		b.fail(inputError(b.kind, "duration", "must not be negative"))
		return b
	}
	b.req.Duration = seconds
	return b
}

// Resolution sets the output resolution, e.g. "720p".
func (b *VideoBuilder) Resolution(resolution string) *VideoBuilder {
	b.req.Resolution = resolution
	return b
}

// AspectRatio sets the frame shape, e.g. "16:9".
func (b *VideoBuilder) AspectRatio(ratio string) *VideoBuilder {
	b.req.AspectRatio = ratio
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *VideoBuilder) Build() (VideoRequest, error) {
	if err := b.consume(); err != nil {
		return VideoRequest{}, err
	}
	return b.build()
}

func (b *VideoBuilder) build() (VideoRequest, error) {
	b.require("prompt", b.req.Prompt)
	common, err := b.shared()
	if err != nil {
		return VideoRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *VideoBuilder) Execute(ctx context.Context, r Runner) (*VideoResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.CreateVideo(ctx, req)
}

/*
	##### LISTINGS #####
*/

// ListModelsBuilder asks a provider for its models.
type ListModelsBuilder struct {
	builder[*ListModelsBuilder]
	req ListModelsRequest
}

// NewListModels lists the models a provider offers.
func NewListModels() *ListModelsBuilder {
	b := &ListModelsBuilder{}
	b.init(b, KindListModels)
	return b
}

// Filter limits the listing to models serving kind.
func (b *ListModelsBuilder) Filter(kind Kind) *ListModelsBuilder {
	b.req.Filter = kind
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *ListModelsBuilder) Build() (ListModelsRequest, error) {
	if err := b.consume(); err != nil {
		return ListModelsRequest{}, err
	}
	return b.build()
}

func (b *ListModelsBuilder) build() (ListModelsRequest, error) {
	common, err := b.shared()
	if err != nil {
		return ListModelsRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *ListModelsBuilder) Execute(ctx context.Context, r Runner) ([]ModelInfo, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.ListModels(ctx, req)
}

// ListVoicesBuilder asks a provider for its voices.
type ListVoicesBuilder struct {
	builder[*ListVoicesBuilder]
	req ListVoicesRequest
}

// NewListVoices lists the voices a provider offers.
func NewListVoices() *ListVoicesBuilder {
	b := &ListVoicesBuilder{}
	b.init(b, KindListVoices)
	return b
}

// Language keeps voices that speak the given language code.
func (b *ListVoicesBuilder) Language(code string) *ListVoicesBuilder {
	b.req.Language = code
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *ListVoicesBuilder) Build() (ListVoicesRequest, error) {
	if err := b.consume(); err != nil {
		return ListVoicesRequest{}, err
	}
	return b.build()
}

func (b *ListVoicesBuilder) build() (ListVoicesRequest, error) {
	common, err := b.shared()
	if err != nil {
		return ListVoicesRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *ListVoicesBuilder) Execute(ctx context.Context, r Runner) ([]VoiceInfo, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.ListVoices(ctx, req)
}
