package task

import (
	"context"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/providers/ai"
)

/*
	##### SPEECH #####
*/

// SpeechBuilder describes a text-to-speech task. Create one with NewSpeech.
type SpeechBuilder struct {
	builder[*SpeechBuilder]
	req SpeechRequest
}

// NewSpeech starts a text-to-speech request for prompt.
func NewSpeech(prompt string) *SpeechBuilder {
	b := &SpeechBuilder{req: SpeechRequest{Prompt: prompt}}
	b.init(b, KindSpeech)
	return b
}

// Voice selects a voice id from ListVoices.
func (b *SpeechBuilder) Voice(voice string) *SpeechBuilder {
	b.req.Voice = voice
	return b
}

// Speed sets the playback rate, 1 being normal speed.
func (b *SpeechBuilder) Speed(speed float64) *SpeechBuilder {
	if speed < 0.25 || speed > 4 {
		b.fail(inputError(b.kind, "speed", "must be within [0.25, 4]"))
		return b
	}
	b.req.Speed = speed
	return b
}

// Instructions steers tone and delivery on models that accept them.
func (b *SpeechBuilder) Instructions(text string) *SpeechBuilder {
	b.req.Instructions = text
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *SpeechBuilder) Build() (SpeechRequest, error) {
	if err := b.consume(); err != nil {
		return SpeechRequest{}, err
	}
	return b.build()
}

func (b *SpeechBuilder) build() (SpeechRequest, error) {
	b.require("prompt", b.req.Prompt)
	common, err := b.shared()
	if err != nil {
		return SpeechRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *SpeechBuilder) Execute(ctx context.Context, r Runner) (*AudioResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.Speech(ctx, req)
}

/*
	##### TRANSCRIPT #####
*/

// TranscriptBuilder describes a speech-to-text task in the spoken language.
type TranscriptBuilder struct {
	builder[*TranscriptBuilder]
	req TranscriptRequest
}

// NewTranscript starts a speech-to-text request. Attach the audio with
// AttachFile or Attach.
func NewTranscript() *TranscriptBuilder {
	b := &TranscriptBuilder{}
	b.init(b, KindTranscript)
	return b
}

// AttachFile sets the audio from a file.
func (b *TranscriptBuilder) AttachFile(path string) *TranscriptBuilder {
	if c := b.loadFile("audio", path, ai.ModalityAudio); c != nil {
		b.req.Audio = c
	}
	return b
}

// Attach sets in-memory audio.
func (b *TranscriptBuilder) Attach(c content.Content) *TranscriptBuilder {
	if accepted := b.accept("audio", c, ai.ModalityAudio); accepted != nil {
		b.req.Audio = accepted
	}
	return b
}

// Language hints the spoken language as an ISO-639-1 code.
func (b *TranscriptBuilder) Language(code string) *TranscriptBuilder {
	b.req.Language = code
	return b
}

// Prompt guides spelling and style of the transcript.
func (b *TranscriptBuilder) Prompt(prompt string) *TranscriptBuilder {
	b.req.Prompt = prompt
	return b
}

// Timestamps asks for segment timings when the vendor supports them.
func (b *TranscriptBuilder) Timestamps(enabled bool) *TranscriptBuilder {
	b.req.Timestamps = enabled
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *TranscriptBuilder) Build() (TranscriptRequest, error) {
	if err := b.consume(); err != nil {
		return TranscriptRequest{}, err
	}
	return b.build()
}

func (b *TranscriptBuilder) build() (TranscriptRequest, error) {
	b.requireContent("audio", b.req.Audio)
	common, err := b.shared()
	if err != nil {
		return TranscriptRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *TranscriptBuilder) Execute(ctx context.Context, r Runner) (*TranscriptResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.Transcribe(ctx, req)
}

/*
	##### TRANSLATION #####
*/

// TranslationBuilder describes a speech-to-text task that translates while
// transcribing.
type TranslationBuilder struct {
	builder[*TranslationBuilder]
	req TranslationRequest
}

// NewTranslation starts a translation of spoken audio into text.
func NewTranslation() *TranslationBuilder {
	b := &TranslationBuilder{}
	b.init(b, KindTranslation)
	return b
}

// AttachFile sets the audio from a file.
func (b *TranslationBuilder) AttachFile(path string) *TranslationBuilder {
	if c := b.loadFile("audio", path, ai.ModalityAudio); c != nil {
		b.req.Audio = c
	}
	return b
}

// Attach sets in-memory audio.
func (b *TranslationBuilder) Attach(c content.Content) *TranslationBuilder {
	if accepted := b.accept("audio", c, ai.ModalityAudio); accepted != nil {
		b.req.Audio = accepted
	}
	return b
}

// Prompt guides the style or vocabulary of the transcript.
func (b *TranslationBuilder) Prompt(prompt string) *TranslationBuilder {
	b.req.Prompt = prompt
	return b
}

// TargetLanguage sets the output language; vendors default to English.
func (b *TranslationBuilder) TargetLanguage(code string) *TranslationBuilder {
	b.req.TargetLanguage = code
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *TranslationBuilder) Build() (TranslationRequest, error) {
	if err := b.consume(); err != nil {
		return TranslationRequest{}, err
	}
	return b.build()
}

func (b *TranslationBuilder) build() (TranslationRequest, error) {
	b.requireContent("audio", b.req.Audio)
	common, err := b.shared()
	if err != nil {
		return TranslationRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *TranslationBuilder) Execute(ctx context.Context, r Runner) (*TranscriptResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.Translate(ctx, req)
}

/*
	##### SOUND EFFECT #####
*/

// SoundEffectBuilder describes a sound effect generated from a description.
type SoundEffectBuilder struct {
	builder[*SoundEffectBuilder]
	req SoundEffectRequest
}

// NewSoundEffect starts a sound effect described by prompt.
func NewSoundEffect(prompt string) *SoundEffectBuilder {
	b := &SoundEffectBuilder{req: SoundEffectRequest{Prompt: prompt}}
	b.init(b, KindSoundEffect)
	return b
}

// Duration sets the length in seconds.
func (b *SoundEffectBuilder) Duration(seconds float64) *SoundEffectBuilder {
	if seconds < 0 {
		b.fail(inputError(b.kind, "duration", "must not be negative"))
		return b
	}
	b.req.Duration = seconds
	return b
}

// PromptInfluence sets how closely the output follows the prompt, in [0, 1].
func (b *SoundEffectBuilder) PromptInfluence(influence float64) *SoundEffectBuilder {
	if influence < 0 || influence > 1 {
		b.fail(inputError(b.kind, "prompt influence", "must be within [0, 1]"))
		return b
	}
	b.req.PromptInfluence = influence
	return b
}

// Loop asks for a seamlessly looping effect.
func (b *SoundEffectBuilder) Loop(loop bool) *SoundEffectBuilder {
	b.req.Loop = loop
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *SoundEffectBuilder) Build() (SoundEffectRequest, error) {
	if err := b.consume(); err != nil {
		return SoundEffectRequest{}, err
	}
	return b.build()
}

func (b *SoundEffectBuilder) build() (SoundEffectRequest, error) {
	b.require("prompt", b.req.Prompt)
	common, err := b.shared()
	if err != nil {
		return SoundEffectRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *SoundEffectBuilder) Execute(ctx context.Context, r Runner) (*AudioResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.SoundEffect(ctx, req)
}

/*
	##### VOICE CHANGE #####
*/

// VoiceChangeBuilder re-voices recorded speech.
type VoiceChangeBuilder struct {
	builder[*VoiceChangeBuilder]
	req VoiceChangeRequest
}

// NewVoiceChange starts a speech-to-speech conversion into voice.
func NewVoiceChange(voice string) *VoiceChangeBuilder {
	b := &VoiceChangeBuilder{req: VoiceChangeRequest{Voice: voice}}
	b.init(b, KindVoiceChange)
	return b
}

// AttachFile sets the source audio from a file.
func (b *VoiceChangeBuilder) AttachFile(path string) *VoiceChangeBuilder {
	if c := b.loadFile("audio", path, ai.ModalityAudio); c != nil {
		b.req.Audio = c
	}
	return b
}

// Attach sets in-memory source audio.
func (b *VoiceChangeBuilder) Attach(c content.Content) *VoiceChangeBuilder {
	if accepted := b.accept("audio", c, ai.ModalityAudio); accepted != nil {
		b.req.Audio = accepted
	}
	return b
}

// RemoveNoise strips background noise before re-voicing.
func (b *VoiceChangeBuilder) RemoveNoise(remove bool) *VoiceChangeBuilder {
	b.req.RemoveNoise = remove
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *VoiceChangeBuilder) Build() (VoiceChangeRequest, error) {
	if err := b.consume(); err != nil {
		return VoiceChangeRequest{}, err
	}
	return b.build()
}

func (b *VoiceChangeBuilder) build() (VoiceChangeRequest, error) {
	b.requireContent("audio", b.req.Audio)
	b.require("voice", b.req.Voice)
	common, err := b.shared()
	if err != nil {
		return VoiceChangeRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *VoiceChangeBuilder) Execute(ctx context.Context, r Runner) (*AudioResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.ChangeVoice(ctx, req)
}

/*
	##### AUDIO ISOLATION #####
*/

// AudioIsolationBuilder removes background sound from a recording.
type AudioIsolationBuilder struct {
	builder[*AudioIsolationBuilder]
	req AudioIsolationRequest
}

// NewAudioIsolation starts a background-noise removal request.
func NewAudioIsolation() *AudioIsolationBuilder {
	b := &AudioIsolationBuilder{}
	b.init(b, KindAudioIsolation)
	return b
}

// AttachFile sets the recording from a file.
func (b *AudioIsolationBuilder) AttachFile(path string) *AudioIsolationBuilder {
	if c := b.loadFile("audio", path, ai.ModalityAudio); c != nil {
		b.req.Audio = c
	}
	return b
}

// Attach sets an in-memory recording.
func (b *AudioIsolationBuilder) Attach(c content.Content) *AudioIsolationBuilder {
	if accepted := b.accept("audio", c, ai.ModalityAudio); accepted != nil {
		b.req.Audio = accepted
	}
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *AudioIsolationBuilder) Build() (AudioIsolationRequest, error) {
	if err := b.consume(); err != nil {
		return AudioIsolationRequest{}, err
	}
	return b.build()
}

func (b *AudioIsolationBuilder) build() (AudioIsolationRequest, error) {
	b.requireContent("audio", b.req.Audio)
	common, err := b.shared()
	if err != nil {
		return AudioIsolationRequest{}, err
	}
	req := b.req
	req.Common = common
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *AudioIsolationBuilder) Execute(ctx context.Context, r Runner) (*AudioResult, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.IsolateAudio(ctx, req)
}
