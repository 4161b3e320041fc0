package chatfmt

import (
	"encoding/json"
	"strings"
)

// Format classifies a raw export file. Detection never fails; files that
// cannot be classified come back as FormatUnknown and the router turns
// that into a parse error.
type Format string

const (
	FormatJSON       Format = "json"
	FormatLine       Format = "line"
	FormatWhatsApp   Format = "whatsapp"
	FormatUnknownTXT Format = "unknown-txt"
	FormatUnknown    Format = "unknown"
)

const lineHeaderMarker = "Chat history with"

// Detect classifies a file by extension first, then by content sniffing.
//
// Priority order: a .json extension wins outright; a .txt extension is
// split into Line exports (recognizable first line) and everything else;
// extensionless content is probed for a JSON prefix or the Line header.
func Detect(filename, content string) Format {
	lower := strings.ToLower(filename)

	if strings.HasSuffix(lower, ".json") {
		return FormatJSON
	}

	if strings.HasSuffix(lower, ".txt") {
		if strings.Contains(firstLine(content), lineHeaderMarker) {
			return FormatLine
		}
		return FormatUnknownTXT
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}
	if strings.Contains(content, lineHeaderMarker) {
		return FormatLine
	}
	return FormatUnknown
}

// firstLine returns the first line of content with a possible UTF-8 BOM
// stripped.
func firstLine(content string) string {
	content = StripBOM(content)
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		return strings.TrimRight(content[:idx], "\r")
	}
	return content
}

// StripBOM removes a leading UTF-8 byte-order marker if present.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// JSONSchema identifies which platform produced a JSON export.
type JSONSchema string

const (
	SchemaFacebook  JSONSchema = "facebook"
	SchemaInstagram JSONSchema = "instagram"
)

type jsonEnvelope struct {
	Messages []json.RawMessage `json:"messages"`
}

// DetectJSONSchema probes a JSON export for its platform of origin by
// inspecting the first message record: Instagram exports use camelCase
// senderName, Facebook exports use snake_case sender_name. The probe is
// the only place structural dispatch happens; each adapter then parses a
// single declared shape.
func DetectJSONSchema(content []byte) (JSONSchema, error) {
	var envelope jsonEnvelope
	if err := json.Unmarshal(content, &envelope); err != nil {
		return "", ErrMalformedJSON
	}
	if len(envelope.Messages) == 0 {
		return "", ErrMissingMessages
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Messages[0], &first); err != nil {
		return "", ErrMalformedJSON
	}
	if _, ok := first["senderName"]; ok {
		return SchemaInstagram, nil
	}
	if _, ok := first["sender_name"]; ok {
		return SchemaFacebook, nil
	}
	return "", ErrUnknownJSONSchema
}
