package content

import (
	"mime"
	"strings"

	"github.com/leofalp/aitask/providers/ai"
)

// extensionByMime pins the extension for the mime types generative APIs
// actually return. mime.ExtensionsByType depends on the host's mime database
// and may list several candidates, so it is only a fallback.
var extensionByMime = map[string]string{
	"audio/mpeg":       "mp3",
	"audio/mp3":        "mp3",
	"audio/wav":        "wav",
	"audio/x-wav":      "wav",
	"audio/ogg":        "ogg",
	"audio/opus":       "opus",
	"audio/flac":       "flac",
	"audio/aac":        "aac",
	"audio/pcm":        "pcm",
	"audio/l16":        "pcm",
	"image/png":        "png",
	"image/jpeg":       "jpg",
	"image/webp":       "webp",
	"image/gif":        "gif",
	"video/mp4":        "mp4",
	"video/webm":       "webm",
	"video/quicktime":  "mov",
	"text/plain":       "txt",
	"text/markdown":    "md",
	"text/html":        "html",
	"application/json": "json",
	"application/pdf":  "pdf",
}

var mimeByExtension = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"opus": "audio/opus",
	"flac": "audio/flac",
	"aac":  "audio/aac",
	"pcm":  "audio/pcm",
	"m4a":  "audio/mp4",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"txt":  "text/plain",
	"md":   "text/markdown",
	"html": "text/html",
	"htm":  "text/html",
	"json": "application/json",
	"pdf":  "application/pdf",
}

// ExtensionForMime returns the file extension (without dot) for a mime type,
// or "" when none is known. Parameters such as "; codecs=opus" are ignored.
func ExtensionForMime(mimeType string) string {
	base := normalizeMime(mimeType)
	if base == "" {
		return ""
	}
	if ext, ok := extensionByMime[base]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return ""
}

// MimeTypeForExtension returns the mime type for an extension given with or
// without its leading dot. Unknown extensions map to application/octet-stream.
func MimeTypeForExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return "application/octet-stream"
	}
	if mimeType, ok := mimeByExtension[ext]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension("." + ext); mimeType != "" {
		return normalizeMime(mimeType)
	}
	return "application/octet-stream"
}

// ModalityForMime classifies a mime type by its top-level type.
func ModalityForMime(mimeType string) ai.Modality {
	base := normalizeMime(mimeType)
	switch {
	case strings.HasPrefix(base, "image/"):
		return ai.ModalityImage
	case strings.HasPrefix(base, "audio/"):
		return ai.ModalityAudio
	case strings.HasPrefix(base, "video/"):
		return ai.ModalityVideo
	case strings.HasPrefix(base, "text/"):
		return ai.ModalityText
	}
	return ai.ModalityFile
}

func normalizeMime(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return strings.ToLower(mimeType)
}
