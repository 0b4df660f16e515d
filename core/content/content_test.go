package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leofalp/aitask/providers/ai"
)

// TestFromFile_Existing verifies that an existing file is wrapped with its
// inferred modality, mime type, and size.
func TestFromFile_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	media, err := FromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if media.Type() != ai.ModalityAudio {
		t.Errorf("expected audio modality, got %q", media.Type())
	}
	if media.MimeType() != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %q", media.MimeType())
	}
	if media.Name() != "clip.mp3" || media.Size() != 3 {
		t.Errorf("unexpected name/size: %q/%d", media.Name(), media.Size())
	}
	data, err := media.Bytes()
	if err != nil || string(data) != "ID3" {
		t.Errorf("unexpected bytes %q (err %v)", data, err)
	}
}

// TestFromFile_Missing verifies that missing files and directories are
// rejected with ErrMissingFile.
func TestFromFile_Missing(t *testing.T) {
	dir := t.TempDir()
	for _, path := range []string{"", filepath.Join(dir, "nope.png"), dir} {
		if _, err := FromFile(path); !errors.Is(err, ErrMissingFile) {
			t.Errorf("FromFile(%q): expected ErrMissingFile, got %v", path, err)
		}
	}
}

// TestFromBytes verifies nil rejection and mime inference from the name.
func TestFromBytes(t *testing.T) {
	if _, err := FromBytes("a.png", "", nil); !errors.Is(err, ErrNilData) {
		t.Fatalf("expected ErrNilData, got %v", err)
	}

	media, err := FromBytes("a.png", "", []byte{0x89})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if media.Type() != ai.ModalityImage || media.MimeType() != "image/png" {
		t.Errorf("unexpected type/mime: %q/%q", media.Type(), media.MimeType())
	}
}

// TestEqualAndIsZero verifies the two comparisons the core relies on.
func TestEqualAndIsZero(t *testing.T) {
	a, _ := FromBytes("a.png", "image/png", []byte("x"))
	b, _ := FromBytes("b.png", "image/png", []byte("x"))
	c, _ := FromBytes("c.png", "image/png", []byte("y"))

	if !Equal(a, b) {
		t.Error("expected equal payloads to compare equal")
	}
	if Equal(a, c) {
		t.Error("expected different payloads to differ")
	}
	if !Equal(NewText("hi"), NewText("hi")) {
		t.Error("expected equal text")
	}
	if !IsZero(nil) || !IsZero(NewText("")) || IsZero(NewText("x")) {
		t.Error("IsZero mismatch for text/nil")
	}
	if !Equal(nil, NewText("")) {
		t.Error("expected two zero contents to compare equal")
	}
}

// TestExtensionForMime verifies the pinned table, parameter stripping, and
// the unknown case.
func TestExtensionForMime(t *testing.T) {
	tests := map[string]string{
		"audio/mpeg":              "mp3",
		"audio/ogg; codecs=opus":  "ogg",
		"image/jpeg":              "jpg",
		"video/mp4":               "mp4",
		"":                        "",
		"application/x-made-up-1": "",
	}
	for input, expected := range tests {
		if got := ExtensionForMime(input); got != expected {
			t.Errorf("ExtensionForMime(%q): expected %q, got %q", input, expected, got)
		}
	}
}

// TestTextFromHTML verifies that markup is converted to Markdown.
func TestTextFromHTML(t *testing.T) {
	text, err := TextFromHTML("<h1>Title</h1><p>Some <strong>bold</strong> text</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text.Value, "# Title") {
		t.Errorf("expected markdown heading, got %q", text.Value)
	}
	if !strings.Contains(text.Value, "**bold**") {
		t.Errorf("expected markdown bold, got %q", text.Value)
	}
	if strings.Contains(text.Value, "<p>") {
		t.Errorf("expected markup to be stripped, got %q", text.Value)
	}
}

// TestOpen verifies that HTML files are converted and other files are
// referenced untouched.
func TestOpen(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "news.htm")
	if err := os.WriteFile(page, []byte("<ul><li>one</li><li>two</li></ul>"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	audio := filepath.Join(dir, "clip.mp3")
	if err := os.WriteFile(audio, []byte("ID3"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Open(page)
	if err != nil {
		t.Fatalf("Open(html): %v", err)
	}
	text, ok := c.(Text)
	if !ok {
		t.Fatalf("expected Text, got %T", c)
	}
	if text.Label != "news.md" || !strings.Contains(text.Value, "- one") {
		t.Errorf("unexpected text: label=%q value=%q", text.Label, text.Value)
	}

	c, err = Open(audio)
	if err != nil {
		t.Fatalf("Open(mp3): %v", err)
	}
	if c.Path() != audio || c.Type() != ai.ModalityAudio {
		t.Errorf("unexpected media: path=%q type=%q", c.Path(), c.Type())
	}

	if _, err := Open(filepath.Join(dir, "missing.html")); !errors.Is(err, ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}
