package task

import (
	"context"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/providers/ai"
)

/*
	##### IMAGE CREATE #####
*/

// ImageBuilder describes a text-to-image task. Create one with NewImage.
type ImageBuilder struct {
	builder[*ImageBuilder]
	req ImageRequest
}

// NewImage starts a text-to-image request.
func NewImage(prompt string) *ImageBuilder {
	b := &ImageBuilder{req: ImageRequest{Prompt: prompt}}
	b.init(b, KindImageCreate)
	return b
}

// Size sets the output dimensions, e.g. "1024x1024".
func (b *ImageBuilder) Size(size string) *ImageBuilder {
	b.req.Size = size
	return b
}

// Quality is passed through to the vendor, e.g. "hd".
func (b *ImageBuilder) Quality(quality string) *ImageBuilder {
	b.req.Quality = quality
	return b
}

// Style is passed through to the vendor, e.g. "vivid".
func (b *ImageBuilder) Style(style string) *ImageBuilder {
	b.req.Style = style
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *ImageBuilder) Build() (ImageRequest, error) {
	if err := b.consume(); err != nil {
		return ImageRequest{}, err
	}
	return b.build()
}

func (b *ImageBuilder) build() (ImageRequest, error) {
	b.require("prompt", b.req.Prompt)
	common, err := b.shared()
	if err != nil {
		return ImageRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *ImageBuilder) Execute(ctx context.Context, r Runner) (*ImageResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.CreateImage(ctx, req)
}

/*
	##### IMAGE EDIT #####
*/

// ImageEditBuilder describes an edit of an existing image, optionally
// restricted by a mask.
type ImageEditBuilder struct {
	builder[*ImageEditBuilder]
	req ImageEditRequest
}

// NewImageEdit starts an edit of a source image described by prompt. Attach
// the source with AttachFile or Attach.
func NewImageEdit(prompt string) *ImageEditBuilder {
	b := &ImageEditBuilder{req: ImageEditRequest{Prompt: prompt}}
	b.init(b, KindImageEdit)
	return b
}

// AttachFile sets the source image from a file.
func (b *ImageEditBuilder) AttachFile(path string) *ImageEditBuilder {
	if c := b.loadFile("image", path, ai.ModalityImage); c != nil {
		b.req.Image = c
	}
	return b
}

// Attach sets the source image.
func (b *ImageEditBuilder) Attach(c content.Content) *ImageEditBuilder {
	if accepted := b.accept("image", c, ai.ModalityImage); accepted != nil {
		b.req.Image = accepted
	}
	return b
}

// MaskFile sets the edit mask from a file. Transparent pixels mark the area
// to change.
func (b *ImageEditBuilder) MaskFile(path string) *ImageEditBuilder {
	if c := b.loadFile("mask", path, ai.ModalityImage); c != nil {
		b.req.Mask = c
	}
	return b
}

// Mask limits the edit to the transparent area of c.
func (b *ImageEditBuilder) Mask(c content.Content) *ImageEditBuilder {
	if accepted := b.accept("mask", c, ai.ModalityImage); accepted != nil {
		b.req.Mask = accepted
	}
	return b
}

// Size sets the output dimensions, e.g. "1024x1024".
func (b *ImageEditBuilder) Size(size string) *ImageEditBuilder {
	b.req.Size = size
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *ImageEditBuilder) Build() (ImageEditRequest, error) {
	if err := b.consume(); err != nil {
		return ImageEditRequest{}, err
	}
	return b.build()
}

func (b *ImageEditBuilder) build() (ImageEditRequest, error) {
	b.require("prompt", b.req.Prompt)
	b.requireContent("image", b.req.Image)
	common, err := b.shared()
	if err != nil {
		return ImageEditRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *ImageEditBuilder) Execute(ctx context.Context, r Runner) (*ImageResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.EditImage(ctx, req)
}

/*
	##### IMAGE VARIATION #####
*/

// ImageVariationBuilder describes variations of an existing image.
type ImageVariationBuilder struct {
	builder[*ImageVariationBuilder]
	req ImageVariationRequest
}

// NewImageVariation starts a variation of an attached image.
func NewImageVariation() *ImageVariationBuilder {
	b := &ImageVariationBuilder{}
	b.init(b, KindImageVariation)
	return b
}

// AttachFile sets the source image from a file.
func (b *ImageVariationBuilder) AttachFile(path string) *ImageVariationBuilder {
	if c := b.loadFile("image", path, ai.ModalityImage); c != nil {
		b.req.Image = c
	}
	return b
}

// Attach sets an in-memory source image.
func (b *ImageVariationBuilder) Attach(c content.Content) *ImageVariationBuilder {
	if accepted := b.accept("image", c, ai.ModalityImage); accepted != nil {
		b.req.Image = accepted
	}
	return b
}

// Size sets the output dimensions, e.g. "1024x1024".
func (b *ImageVariationBuilder) Size(size string) *ImageVariationBuilder {
	b.req.Size = size
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *ImageVariationBuilder) Build() (ImageVariationRequest, error) {
	if err := b.consume(); err != nil {
		return ImageVariationRequest{}, err
	}
	return b.build()
}

func (b *ImageVariationBuilder) build() (ImageVariationRequest, error) {
	b.requireContent("image", b.req.Image)
	common, err := b.shared()
	if err != nil {
		return ImageVariationRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *ImageVariationBuilder) Execute(ctx context.Context, r Runner) (*ImageResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.CreateImageVariation(ctx, req)
}
