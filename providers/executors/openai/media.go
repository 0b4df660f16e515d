package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/internal/utils"
	"github.com/leofalp/aitask/providers/ai"
)

/*
	IMAGES
*/

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	Style          string `json:"style,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
	User           string `json:"user,omitempty"`
}

type imageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

func (e *Executor) CreateImage(ctx context.Context, req task.ImageRequest) (*task.ImageResult, error) {
	body := imageRequest{
		Model:          modelOr(req.Common, DefaultImageModel),
		Prompt:         req.Prompt,
		Size:           req.Size,
		Quality:        req.Quality,
		Style:          req.Style,
		ResponseFormat: "b64_json",
		User:           req.Sender,
	}
	if req.Count > 1 {
		body.N = req.Count
	}
	if err := e.prepare(ctx, req.Kind(), body.Model); err != nil {
		return nil, err
	}

	_, resp, err := utils.DoPostSync[imageResponse](ctx, e.client, e.baseURL+imagesEndpoint, e.apiKey, body)
	if err != nil {
		return nil, fmt.Errorf("openai: images: %w", err)
	}

	res := &task.ImageResult{Model: body.Model, Usage: &ai.Usage{Images: len(resp.Data)}}
	for i, image := range resp.Data {
		data, err := base64.StdEncoding.DecodeString(image.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("openai: decode image %d: %w", i, err)
		}
		saved, err := save(ai.ModalityImage, numbered(req.OutputPath, i), req.OutputMime, data)
		if err != nil {
			return nil, err
		}
		res.Images = append(res.Images, saved)
		if res.RevisedPrompt == "" {
			res.RevisedPrompt = image.RevisedPrompt
		}
	}
	return res, nil
}

/*
	SPEECH
*/

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	Instructions   string  `json:"instructions,omitempty"`
	ResponseFormat string  `json:"response_format,omitempty"`
}

func (e *Executor) Speech(ctx context.Context, req task.SpeechRequest) (*task.AudioResult, error) {
	body := speechRequest{
		Model:          modelOr(req.Common, DefaultSpeechModel),
		Input:          req.Prompt,
		Voice:          req.Voice,
		Speed:          req.Speed,
		Instructions:   req.Instructions,
		ResponseFormat: speechFormat(req.OutputMime),
	}
	if body.Voice == "" {
		body.Voice = DefaultVoice
	}
	if err := e.prepare(ctx, req.Kind(), body.Model); err != nil {
		return nil, err
	}

	data, contentType, err := utils.DoPostBinary(ctx, e.client, e.baseURL+speechEndpoint, e.apiKey, body)
	if err != nil {
		return nil, fmt.Errorf("openai: speech: %w", err)
	}
	mimeType := req.OutputMime
	if mimeType == "" {
		mimeType = contentType
	}
	audio, err := save(ai.ModalityAudio, req.OutputPath, mimeType, data)
	if err != nil {
		return nil, err
	}
	return &task.AudioResult{
		Model: body.Model,
		Audio: audio,
		Usage: &ai.Usage{Characters: len([]rune(req.Prompt))},
	}, nil
}

// speechFormat maps a mime type to the response_format values of
// /audio/speech. Unknown types fall back to the API default.
func speechFormat(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	case "audio/ogg", "audio/opus":
		return "opus"
	case "audio/aac":
		return "aac"
	case "audio/flac":
		return "flac"
	case "audio/pcm", "audio/l16":
		return "pcm"
	}
	return ""
}

/*
	TRANSCRIPTION
*/

type transcriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

func (e *Executor) Transcribe(ctx context.Context, req task.TranscriptRequest) (*task.TranscriptResult, error) {
	fields := map[string]string{"response_format": "verbose_json"}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	if req.Timestamps {
		fields["timestamp_granularities[]"] = "segment"
	}
	return e.transcribe(ctx, req.Kind(), req.Common, transcriptionsEndpoint, req.Audio, fields)
}

// Translate always produces English text; TargetLanguage is ignored by the
// OpenAI endpoint.
func (e *Executor) Translate(ctx context.Context, req task.TranslationRequest) (*task.TranscriptResult, error) {
	fields := map[string]string{"response_format": "verbose_json"}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	return e.transcribe(ctx, req.Kind(), req.Common, translationsEndpoint, req.Audio, fields)
}

func (e *Executor) transcribe(ctx context.Context, kind task.Kind, common task.Common, endpoint string, audio content.Content, fields map[string]string) (*task.TranscriptResult, error) {
	model := modelOr(common, DefaultTranscribeModel)
	if err := e.prepare(ctx, kind, model); err != nil {
		return nil, err
	}
	data, err := audio.Bytes()
	if err != nil {
		return nil, fmt.Errorf("openai: read audio %s: %w", audio.Name(), err)
	}
	fields["model"] = model

	_, resp, err := utils.DoPostMultipart[transcriptionResponse](ctx, e.client, e.baseURL+endpoint, e.apiKey, fields,
		[]utils.FilePart{{Field: "file", Filename: audioFilename(audio), Data: data}})
	if err != nil {
		return nil, fmt.Errorf("openai: %s: %w", kind, err)
	}
	return &task.TranscriptResult{
		Model:    model,
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
		Usage:    &ai.Usage{Seconds: resp.Duration},
	}, nil
}

// audioFilename gives the upload an extension the API can sniff.
func audioFilename(audio content.Content) string {
	if name := audio.Name(); filepath.Ext(name) != "" {
		return name
	}
	if ext := content.ExtensionForMime(audio.MimeType()); ext != "" {
		return "audio." + ext
	}
	return "audio.wav"
}

/*
	MODELS
*/

type modelsResponse struct {
	Data []struct {
		ID      string `json:"id"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}

func (e *Executor) ListModels(ctx context.Context, req task.ListModelsRequest) ([]task.ModelInfo, error) {
	if err := e.prepare(ctx, req.Kind(), ""); err != nil {
		return nil, err
	}
	_, resp, err := utils.DoGet[modelsResponse](ctx, e.client, e.baseURL+modelsEndpoint, e.apiKey)
	if err != nil {
		return nil, fmt.Errorf("openai: models: %w", err)
	}

	models := make([]task.ModelInfo, 0, len(resp.Data))
	for _, model := range resp.Data {
		kinds := kindsForModel(model.ID)
		if req.Filter != task.KindUnknown && !slices.Contains(kinds, req.Filter) {
			continue
		}
		models = append(models, task.ModelInfo{
			ID:       model.ID,
			Provider: e.Provider(),
			Kinds:    kinds,
			OwnedBy:  model.OwnedBy,
		})
	}
	return models, nil
}

// kindsForModel guesses the kinds a model serves from its id family.
func kindsForModel(id string) []task.Kind {
	switch {
	case strings.HasPrefix(id, "dall-e"), strings.HasPrefix(id, "gpt-image"):
		return []task.Kind{task.KindImageCreate}
	case strings.HasPrefix(id, "tts"), strings.Contains(id, "-tts"):
		return []task.Kind{task.KindSpeech}
	case strings.HasPrefix(id, "whisper"), strings.Contains(id, "transcribe"):
		return []task.Kind{task.KindTranscript, task.KindTranslation}
	case strings.HasPrefix(id, "gpt-"), strings.HasPrefix(id, "o1"), strings.HasPrefix(id, "o3"), strings.HasPrefix(id, "o4"), strings.HasPrefix(id, "chatgpt"):
		return []task.Kind{task.KindCompletion, task.KindChat}
	}
	return nil
}

/*
	OUTPUT
*/

// save writes data to path when one was resolved, otherwise keeps it in
// memory.
func save(kind ai.Modality, path, mimeType string, data []byte) (content.Content, error) {
	if path == "" {
		media, err := content.FromBytes(string(kind), mimeType, data)
		if err != nil {
			return nil, fmt.Errorf("openai: wrap %s: %w", kind, err)
		}
		return media, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("openai: write %s: %w", kind, err)
	}
	return content.NewOutput(kind, path, mimeType), nil
}

// numbered returns path for the first output and path_<n> for later ones.
func numbered(path string, index int) string {
	if path == "" || index == 0 {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + strconv.Itoa(index+1) + ext
}
