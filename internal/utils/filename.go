package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// ConversationIDFromFilename derives a stable conversation id for export
// formats that carry no native thread id. The extension is dropped and the
// remainder sanitized so the id is safe to round-trip through URLs and
// JSON keys.
func ConversationIDFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	base = invalidFilenameChars.ReplaceAllString(base, "")
	base = whitespaceChars.ReplaceAllString(base, " ")
	base = multipleSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 200 {
		base = strings.TrimSpace(base[:200])
	}
	if base == "" {
		return "untitled"
	}
	return base
}
