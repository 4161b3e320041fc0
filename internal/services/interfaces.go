package services

import "github.com/mkarpov/rapport/internal/entities"

// InputFile is one raw uploaded export: a filename plus its full decoded
// content. Facebook exports need the raw bytes intact for the byte-level
// encoding repair, so content is never re-decoded upstream.
type InputFile struct {
	Name    string
	Content []byte
}

// ParseError is the per-file failure entry of a batch result.
type ParseError struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// ParseResult is the outcome of parsing one upload batch. Every input file
// contributes exactly one conversation or exactly one error, never both.
type ParseResult struct {
	Conversations []entities.Conversation `json:"conversations"`
	Errors        []ParseError            `json:"errors"`
}

// BatchParser turns a batch of raw export files into normalized
// conversations. Use this interface when handling uploads.
type BatchParser interface {
	ParseBatch(files []InputFile) ParseResult
}

// ConversationMerger folds conversations that denote the same real-world
// relationship into one, driven by user-declared identity mappings.
type ConversationMerger interface {
	Merge(conversations []entities.Conversation, mappings []entities.IdentityMapping) []entities.Conversation
}
