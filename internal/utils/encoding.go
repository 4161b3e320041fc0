package utils

import "unicode/utf8"

// FixMojibake repairs text that Facebook exports store as UTF-8 bytes
// re-interpreted as Latin-1: each rune in the input is really one byte of
// the original UTF-8 encoding. Re-emitting those byte values and decoding
// the result as UTF-8 recovers the original text ("cafÃ©" -> "café").
//
// Strings that contain runes above U+00FF, or whose re-encoded bytes are
// not valid UTF-8, were never mojibake and are returned unchanged.
func FixMojibake(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return s
		}
		b = append(b, byte(r))
	}
	if !utf8.Valid(b) {
		return s
	}
	return string(b)
}
