package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/aitask/providers/ai"
)

var (
	// ErrMissingFile is returned when a file-backed content points at a path
	// that does not exist or is a directory.
	ErrMissingFile = errors.New("aitask: content file does not exist")
	// ErrNilData is returned when in-memory content is created without data.
	ErrNilData = errors.New("aitask: content data is nil")
)

// Content is a typed piece of task input or output. Implementations expose
// enough metadata for a task record to serialize them.
type Content interface {
	Type() ai.Modality
	Name() string
	MimeType() string
	// Path is the file-system location backing the content, or "" when the
	// content lives in memory.
	Path() string
	// Bytes returns the raw payload, reading it from Path when needed.
	Bytes() ([]byte, error)
	// Size is the payload length in bytes, or -1 when unknown.
	Size() int64
}

// Text is inline textual content.
type Text struct {
	Value string
	Label string
}

var _ Content = Text{}

// NewText wraps a string as Content.
func NewText(value string) Text {
	return Text{Value: value}
}

func (t Text) Type() ai.Modality      { return ai.ModalityText }
func (t Text) Name() string           { return t.Label }
func (t Text) MimeType() string       { return "text/plain" }
func (t Text) Path() string           { return "" }
func (t Text) Bytes() ([]byte, error) { return []byte(t.Value), nil }
func (t Text) Size() int64            { return int64(len(t.Value)) }
func (t Text) String() string         { return t.Value }

// TextFromHTML converts an HTML document to Markdown so web pages can be used
// as prompt text without their markup.
func TextFromHTML(html string) (Text, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return Text{}, fmt.Errorf("content: convert html: %w", err)
	}
	return Text{Value: strings.TrimSpace(markdown), Label: "page.md"}, nil
}

// Open loads the file at path as prompt content. HTML pages are converted to
// Markdown Text labelled after the file; anything else is referenced as Media
// and read lazily.
func Open(path string) (Content, error) {
	media, err := FromFile(path)
	if err != nil {
		return nil, err
	}
	if media.MimeType() != "text/html" {
		return media, nil
	}
	raw, err := media.Bytes()
	if err != nil {
		return nil, err
	}
	text, err := TextFromHTML(string(raw))
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", media.Name(), err)
	}
	text.Label = strings.TrimSuffix(media.Name(), filepath.Ext(media.Name())) + ".md"
	return text, nil
}

// Media is binary content (image, audio, video, or a generic file) backed
// either by a file path or by an in-memory buffer.
type Media struct {
	kind ai.Modality
	name string
	mime string
	path string
	data []byte
	size int64
}

var _ Content = (*Media)(nil)

// FromFile references a file on disk. The file must exist; its modality and
// mime-type are inferred from the extension.
func FromFile(path string) (*Media, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMissingFile)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("content: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrMissingFile, path)
	}

	mimeType := MimeTypeForExtension(filepath.Ext(path))
	return &Media{
		kind: ModalityForMime(mimeType),
		name: filepath.Base(path),
		mime: mimeType,
		path: path,
		size: info.Size(),
	}, nil
}

// FromBytes wraps an in-memory payload. Data must be non-nil; an empty mime
// type is inferred from the name's extension.
func FromBytes(name, mimeType string, data []byte) (*Media, error) {
	if data == nil {
		return nil, ErrNilData
	}
	if mimeType == "" {
		mimeType = MimeTypeForExtension(filepath.Ext(name))
	}
	return &Media{
		kind: ModalityForMime(mimeType),
		name: name,
		mime: mimeType,
		data: data,
		size: int64(len(data)),
	}, nil
}

// NewOutput describes a file an executor produced at path. The file is not
// required to exist yet; executors create it after the call.
func NewOutput(kind ai.Modality, path, mimeType string) *Media {
	if mimeType == "" {
		mimeType = MimeTypeForExtension(filepath.Ext(path))
	}
	return &Media{kind: kind, name: filepath.Base(path), mime: mimeType, path: path, size: -1}
}

func (m *Media) Type() ai.Modality { return m.kind }
func (m *Media) Name() string      { return m.name }
func (m *Media) MimeType() string  { return m.mime }
func (m *Media) Path() string      { return m.path }

func (m *Media) Size() int64 {
	if m.data != nil {
		return int64(len(m.data))
	}
	if m.size >= 0 {
		return m.size
	}
	if info, err := os.Stat(m.path); err == nil {
		return info.Size()
	}
	return -1
}

// Bytes returns the in-memory payload or reads the backing file.
func (m *Media) Bytes() ([]byte, error) {
	if m.data != nil {
		return m.data, nil
	}
	if m.path == "" {
		return nil, ErrNilData
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", m.path, err)
	}
	return data, nil
}

// IsZero reports whether c carries nothing: nil, empty text, or media with
// neither a path nor data.
func IsZero(c Content) bool {
	switch v := c.(type) {
	case nil:
		return true
	case Text:
		return v.Value == ""
	case *Text:
		return v == nil || v.Value == ""
	case *Media:
		return v == nil || (v.path == "" && len(v.data) == 0)
	}
	return false
}

// Equal reports whether two contents describe the same payload. File-backed
// contents compare by path; in-memory contents compare by bytes.
func Equal(a, b Content) bool {
	if IsZero(a) || IsZero(b) {
		return IsZero(a) && IsZero(b)
	}
	if a.Type() != b.Type() || a.MimeType() != b.MimeType() {
		return false
	}
	if a.Path() != "" || b.Path() != "" {
		return a.Path() == b.Path()
	}
	left, errA := a.Bytes()
	right, errB := b.Bytes()
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(left, right)
}
