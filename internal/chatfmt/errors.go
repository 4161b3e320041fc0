package chatfmt

import "errors"

// Parse error kinds surfaced per file by the adapter router. Individual
// malformed messages inside an otherwise valid file are filtered silently
// and never produce one of these.
var (
	ErrUnrecognizedFormat = errors.New("unrecognized file format")
	ErrMalformedJSON      = errors.New("malformed JSON")
	ErrMissingMessages    = errors.New("no messages array found")
	ErrUnknownJSONSchema  = errors.New("unknown JSON chat schema")
	ErrInvalidTimeFormat  = errors.New("invalid time format")
	ErrEmptyResultSet     = errors.New("file contained no usable messages")
)
