package task

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leofalp/aitask/providers/ai"
)

// Kind enumerates every operation the dispatcher can route.
type Kind int

const (
	KindUnknown Kind = iota
	KindCompletion
	KindChat
	KindImageCreate
	KindImageEdit
	KindImageVariation
	KindSpeech
	KindTranscript
	KindTranslation
	KindSoundEffect
	KindVoiceChange
	KindAudioIsolation
	KindVideo
	KindListModels
	KindListVoices
)

// KindInfo is the static metadata attached to a Kind.
type KindInfo struct {
	Name    string
	Inputs  []ai.Modality
	Outputs []ai.Modality
	// Keyword is the default filename keyword for persisted outputs.
	Keyword string
	// HistoryEligible marks kinds whose successful calls produce a record.
	HistoryEligible bool
	// Streaming marks kinds with a streaming terminal operation.
	Streaming bool
	// MediaOutput marks kinds whose result can be persisted to a file.
	MediaOutput bool
	// DefaultMime is the output mime type used when the caller sets none.
	DefaultMime string
	// Internal marks list operations that never reach history.
	Internal bool
}

var (
	textOnly  = []ai.Modality{ai.ModalityText}
	imageOnly = []ai.Modality{ai.ModalityImage}
	audioOnly = []ai.Modality{ai.ModalityAudio}
	videoOnly = []ai.Modality{ai.ModalityVideo}
)

var kindTable = map[Kind]KindInfo{
	KindCompletion: {
		Name: "completion", Inputs: textOnly, Outputs: textOnly, Keyword: "completion",
		HistoryEligible: true, Streaming: true, DefaultMime: "text/plain",
	},
	KindChat: {
		Name: "chat", Inputs: []ai.Modality{ai.ModalityText, ai.ModalityImage, ai.ModalityFile}, Outputs: textOnly,
		Keyword: "chat", HistoryEligible: true, Streaming: true, DefaultMime: "text/plain",
	},
	KindImageCreate: {
		Name: "image_create", Inputs: textOnly, Outputs: imageOnly, Keyword: "image",
		HistoryEligible: true, MediaOutput: true, DefaultMime: "image/png",
	},
	KindImageEdit: {
		Name: "image_edit", Inputs: []ai.Modality{ai.ModalityText, ai.ModalityImage}, Outputs: imageOnly, Keyword: "image_edit",
		HistoryEligible: true, MediaOutput: true, DefaultMime: "image/png",
	},
	KindImageVariation: {
		Name: "image_variation", Inputs: imageOnly, Outputs: imageOnly, Keyword: "image_variation",
		HistoryEligible: true, MediaOutput: true, DefaultMime: "image/png",
	},
	KindSpeech: {
		Name: "speech", Inputs: textOnly, Outputs: audioOnly, Keyword: "tts",
		HistoryEligible: true, MediaOutput: true, DefaultMime: "audio/mpeg",
	},
	KindTranscript: {
		Name: "transcript", Inputs: audioOnly, Outputs: textOnly, Keyword: "stt",
		HistoryEligible: true, DefaultMime: "text/plain",
	},
	KindTranslation: {
		Name: "translation", Inputs: audioOnly, Outputs: textOnly, Keyword: "translation",
		HistoryEligible: true, DefaultMime: "text/plain",
	},
	KindSoundEffect: {
		Name: "sound_effect", Inputs: textOnly, Outputs: audioOnly, Keyword: "sfx",
		HistoryEligible: true, MediaOutput: true, DefaultMime: "audio/mpeg",
	},
	KindVoiceChange: {
		Name: "voice_change", Inputs: audioOnly, Outputs: audioOnly, Keyword: "voice",
		HistoryEligible: true, MediaOutput: true, DefaultMime: "audio/mpeg",
	},
	KindAudioIsolation: {
		Name: "audio_isolation", Inputs: audioOnly, Outputs: audioOnly, Keyword: "isolation",
		HistoryEligible: true, MediaOutput: true, DefaultMime: "audio/mpeg",
	},
	KindVideo: {
		Name: "video", Inputs: []ai.Modality{ai.ModalityText, ai.ModalityImage}, Outputs: videoOnly, Keyword: "video",
		HistoryEligible: true, MediaOutput: true, DefaultMime: "video/mp4",
	},
	KindListModels: {Name: "list_models", Outputs: textOnly, Keyword: "models", Internal: true},
	KindListVoices: {Name: "list_voices", Outputs: textOnly, Keyword: "voices", Internal: true},
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindTable))
	for k := KindCompletion; k <= KindListVoices; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Info returns a copy of the metadata for k. Unknown kinds get a zero
// KindInfo named "unknown".
func (k Kind) Info() KindInfo {
	info, ok := kindTable[k]
	if !ok {
		return KindInfo{Name: "unknown"}
	}
	info.Inputs = slices.Clone(info.Inputs)
	info.Outputs = slices.Clone(info.Outputs)
	return info
}

func (k Kind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.Name
	}
	return "unknown"
}

// HistoryEligible is shorthand for k.Info().HistoryEligible.
func (k Kind) HistoryEligible() bool { return kindTable[k].HistoryEligible }

// MediaOutput is shorthand for k.Info().MediaOutput.
func (k Kind) MediaOutput() bool { return kindTable[k].MediaOutput }

// ParseKind is the inverse of Kind.String. Dashes are accepted in place of
// underscores.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, k := range Kinds() {
		if k.String() == normalized {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("aitask: unknown task kind %q", name)
}

// UnmarshalText decodes a kind name; used for map keys in configuration.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText encodes the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
