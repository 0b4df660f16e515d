// Package output turns a persistence request into a concrete file path.
//
// Callers may name a file, name a directory, or name nothing. A path with an
// extension is used verbatim; otherwise a filename is synthesized from the
// provider display name, the task keyword and the output mime type and joined
// to the directory, or to Root when no path was supplied:
//
//	r := output.Resolver{Root: "generated"}
//	path, ok, err := r.Resolve(true, "", "audio/mpeg", "Stability AI", "tts")
//	// path == "generated/StabilityAI_tts.mp3"
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/internal/utils"
)

// ErrNoFilename is returned when provider, keyword or mime type cannot
// produce a filename.
var ErrNoFilename = errors.New("aitask: cannot synthesize output filename")

// Resolver computes output destinations. The zero value resolves relative to
// the working directory.
type Resolver struct {
	// Root is the directory used when the caller supplies no path.
	Root string
}

// Resolve returns the destination for a persisted output. When persist is
// false it returns ("", false, nil) and no file should be produced.
func (r Resolver) Resolve(persist bool, path, mimeType, provider, keyword string) (string, bool, error) {
	if !persist {
		return "", false, nil
	}
	if path != "" && filepath.Ext(path) != "" {
		return path, true, nil
	}

	name, err := Filename(provider, keyword, mimeType)
	if err != nil {
		return "", false, err
	}
	dir := path
	if dir == "" {
		dir = r.Root
	}
	return filepath.Join(dir, name), true, nil
}

// Filename synthesizes "<provider>_<keyword>.<ext>" with whitespace removed
// from the provider name. The result is deterministic for identical inputs.
func Filename(provider, keyword, mimeType string) (string, error) {
	provider = utils.CompactName(provider)
	keyword = utils.CompactName(keyword)
	ext := content.ExtensionForMime(mimeType)
	switch {
	case provider == "":
		return "", fmt.Errorf("%w: empty provider", ErrNoFilename)
	case keyword == "":
		return "", fmt.Errorf("%w: empty keyword", ErrNoFilename)
	case ext == "":
		return "", fmt.Errorf("%w: no extension for mime type %q", ErrNoFilename, mimeType)
	}
	return provider + "_" + keyword + "." + ext, nil
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: create directory %s: %w", dir, err)
	}
	return nil
}
