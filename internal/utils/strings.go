package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxStringLength is the truncation length used when none is given.
const DefaultMaxStringLength = 500

// JSONToString renders object as JSON for logs and CLI output. Pass true to
// indent. Marshal failures are rendered as a JSON error object so the result
// is always printable.
func JSONToString(object any, indent ...bool) string {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "failed to marshal to JSON: "+err.Error())
	}
	return string(encoded)
}

// TruncateString shortens s to maxLen bytes and records the original length.
// A non-positive maxLen means DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// CompactName strips whitespace from s so it can be used inside a filename.
func CompactName(s string) string {
	return strings.Join(strings.Fields(s), "")
}
