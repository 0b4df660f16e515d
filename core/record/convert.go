package record

import (
	"time"
	"unicode/utf8"

	"github.com/leofalp/aitask/core/cost"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// RoleToolCall marks output items that describe a tool call.
const RoleToolCall = "tool_call"

// Meta carries what the dispatcher resolved for a call.
type Meta struct {
	Provider ai.ProviderID
	// Model is the resolved model; its Provider field is ignored.
	Model task.ModelRef
	// CreatedAt defaults to the current time.
	CreatedAt time.Time
	// Pricer estimates the cost; nil leaves it at zero.
	Pricer cost.Pricer
}

// start fills the fields every conversion shares.
func (m Meta) start(kind task.Kind, common task.Common, resultModel string) *Builder {
	modelID := m.Model.ID
	if modelID == "" {
		modelID = resultModel
	}
	b := NewBuilder(kind).
		Sender(common.Sender).
		Provider(m.Provider).
		Model(modelID, m.Model.Name).
		Options(common.Options)
	if !m.CreatedAt.IsZero() {
		b.CreatedAt(m.CreatedAt)
	}
	return b
}

// finish applies usage and cost and builds the record.
func (m Meta) finish(b *Builder, usage *ai.Usage) (Record, error) {
	b.Usage(usage)
	if m.Pricer != nil {
		if usd, ok := m.Pricer.Estimate(m.Provider, b.rec.ModelID, usage); ok {
			b.Cost(usd)
		}
	}
	return b.Build()
}

func chatOutput(b *Builder, resp *ai.ChatResponse) {
	if resp == nil {
		return
	}
	b.Output(TextItem(ai.RoleAssistant, resp.Content))
	for _, call := range resp.ToolCalls {
		b.Output(Item{
			Type: ai.ModalityText,
			Role: RoleToolCall,
			Name: call.Function.Name,
			Text: call.Function.Arguments,
		})
	}
}

func chatUsage(resp *ai.ChatResponse) *ai.Usage {
	if resp == nil {
		return nil
	}
	return resp.Usage
}

func chatModel(resp *ai.ChatResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Model
}

// characterUsage falls back to counting prompt characters when a speech-like
// executor reports no usage.
func characterUsage(usage *ai.Usage, prompt string) *ai.Usage {
	if !usage.IsZero() {
		return usage
	}
	return &ai.Usage{Characters: utf8.RuneCountInString(prompt)}
}

func FromCompletion(m Meta, req task.CompletionRequest, resp *ai.ChatResponse) (Record, error) {
	b := m.start(req.Kind(), req.Common, chatModel(resp)).
		Input(TextItem(ai.RoleSystem, req.System), TextItem(ai.RoleUser, req.Prompt))
	chatOutput(b, resp)
	return m.finish(b, chatUsage(resp))
}

// FromChat splits every message into a text item and one item per
// attachment, all tagged with the message role.
func FromChat(m Meta, req task.ChatRequest, resp *ai.ChatResponse) (Record, error) {
	b := m.start(req.Kind(), req.Common, chatModel(resp)).
		Input(TextItem(ai.RoleSystem, req.System))
	for _, msg := range req.Messages {
		b.Input(TextItem(msg.Role, msg.Text))
		for _, attachment := range contentItems(msg.Attachments) {
			attachment.Role = string(msg.Role)
			b.Input(attachment)
		}
	}
	chatOutput(b, resp)
	return m.finish(b, chatUsage(resp))
}

func imageRecord(m Meta, b *Builder, res *task.ImageResult) (Record, error) {
	if res == nil {
		return m.finish(b, nil)
	}
	b.OutputContent(res.Images...)
	if res.RevisedPrompt != "" {
		b.Output(Item{Type: ai.ModalityText, Role: "revised_prompt", Text: res.RevisedPrompt})
	}
	usage := res.Usage
	if usage.IsZero() && len(res.Images) > 0 {
		usage = &ai.Usage{Images: len(res.Images)}
	}
	return m.finish(b, usage)
}

func resultModel[T any](res *T, model func(*T) string) string {
	if res == nil {
		return ""
	}
	return model(res)
}

func imageModel(res *task.ImageResult) string           { return res.Model }
func audioModel(res *task.AudioResult) string           { return res.Model }
func transcriptModel(res *task.TranscriptResult) string { return res.Model }
func videoModel(res *task.VideoResult) string           { return res.Model }

func FromImage(m Meta, req task.ImageRequest, res *task.ImageResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, imageModel)).
		Input(TextItem(ai.RoleUser, req.Prompt))
	return imageRecord(m, b, res)
}

func FromImageEdit(m Meta, req task.ImageEditRequest, res *task.ImageResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, imageModel)).
		Input(TextItem(ai.RoleUser, req.Prompt)).
		InputContent(req.Image, req.Mask)
	return imageRecord(m, b, res)
}

func FromImageVariation(m Meta, req task.ImageVariationRequest, res *task.ImageResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, imageModel)).
		InputContent(req.Image)
	return imageRecord(m, b, res)
}

func audioRecord(m Meta, b *Builder, res *task.AudioResult, usage *ai.Usage) (Record, error) {
	if res != nil {
		b.OutputContent(res.Audio)
	}
	return m.finish(b, usage)
}

func audioUsage(res *task.AudioResult) *ai.Usage {
	if res == nil {
		return nil
	}
	return res.Usage
}

func FromSpeech(m Meta, req task.SpeechRequest, res *task.AudioResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, audioModel)).
		Input(TextItem(ai.RoleUser, req.Prompt))
	return audioRecord(m, b, res, characterUsage(audioUsage(res), req.Prompt))
}

func FromSoundEffect(m Meta, req task.SoundEffectRequest, res *task.AudioResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, audioModel)).
		Input(TextItem(ai.RoleUser, req.Prompt))
	usage := audioUsage(res)
	if usage.IsZero() && req.Duration > 0 {
		usage = &ai.Usage{Seconds: req.Duration}
	}
	return audioRecord(m, b, res, usage)
}

func FromVoiceChange(m Meta, req task.VoiceChangeRequest, res *task.AudioResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, audioModel)).
		InputContent(req.Audio)
	return audioRecord(m, b, res, audioUsage(res))
}

func FromAudioIsolation(m Meta, req task.AudioIsolationRequest, res *task.AudioResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, audioModel)).
		InputContent(req.Audio)
	return audioRecord(m, b, res, audioUsage(res))
}

func transcriptRecord(m Meta, b *Builder, res *task.TranscriptResult) (Record, error) {
	if res == nil {
		return m.finish(b, nil)
	}
	b.Output(Item{Type: ai.ModalityText, Role: string(ai.RoleAssistant), Text: res.Text, Name: res.Language})
	usage := res.Usage
	if usage.IsZero() && res.Duration > 0 {
		usage = &ai.Usage{Seconds: res.Duration}
	}
	return m.finish(b, usage)
}

func FromTranscript(m Meta, req task.TranscriptRequest, res *task.TranscriptResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, transcriptModel)).
		InputContent(req.Audio).
		Input(TextItem(ai.RoleUser, req.Prompt))
	return transcriptRecord(m, b, res)
}

func FromTranslation(m Meta, req task.TranslationRequest, res *task.TranscriptResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, transcriptModel)).
		InputContent(req.Audio).
		Input(TextItem(ai.RoleUser, req.Prompt))
	return transcriptRecord(m, b, res)
}

func FromVideo(m Meta, req task.VideoRequest, res *task.VideoResult) (Record, error) {
	b := m.start(req.Kind(), req.Common, resultModel(res, videoModel)).
		Input(TextItem(ai.RoleUser, req.Prompt)).
		InputContent(req.Image)
	var usage *ai.Usage
	if res != nil {
		b.OutputContent(res.Video)
		usage = res.Usage
	}
	if usage.IsZero() && req.Duration > 0 {
		usage = &ai.Usage{Seconds: req.Duration}
	}
	return m.finish(b, usage)
}
