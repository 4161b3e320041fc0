package services

import (
	"github.com/mkarpov/rapport/internal/chatfmt"
	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/facebook"
	"github.com/mkarpov/rapport/internal/instagram"
	"github.com/mkarpov/rapport/internal/line"
	"github.com/mkarpov/rapport/internal/logger"
	"github.com/mkarpov/rapport/internal/whatsapp"
)

// ParseService is the adapter router: it detects each file's format,
// dispatches to the matching adapter, and isolates per-file failures so a
// broken export never aborts the rest of the batch.
type ParseService struct{}

func NewParseService() *ParseService {
	return &ParseService{}
}

// ParseBatch processes a whole upload batch. Failures are collected as
// {fileName, error} entries; processing always runs to the end of the
// batch. A batch where every file failed is a valid result with an empty
// conversation list.
func (s *ParseService) ParseBatch(files []InputFile) ParseResult {
	result := ParseResult{
		Conversations: []entities.Conversation{},
		Errors:        []ParseError{},
	}

	for _, file := range files {
		conv, err := s.parseFile(file)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"fileName": file.Name,
			}).WithError(err).Warn("failed to parse export file")
			result.Errors = append(result.Errors, ParseError{
				FileName: file.Name,
				Error:    err.Error(),
			})
			continue
		}
		result.Conversations = append(result.Conversations, *conv)
	}

	logger.WithFields(map[string]interface{}{
		"files":         len(files),
		"conversations": len(result.Conversations),
		"errors":        len(result.Errors),
	}).Info("parsed upload batch")

	return result
}

// parseFile classifies and converts a single file. Unclassifiable .txt
// files are handed to the WhatsApp adapter as the best-effort default;
// whatever still cannot produce messages surfaces as an empty-result error.
func (s *ParseService) parseFile(file InputFile) (*entities.Conversation, error) {
	content := string(file.Content)

	var (
		conv *entities.Conversation
		err  error
	)

	switch chatfmt.Detect(file.Name, content) {
	case chatfmt.FormatJSON:
		conv, err = s.parseJSON(file)
	case chatfmt.FormatLine:
		conv, err = line.Parse(file.Name, content)
	case chatfmt.FormatWhatsApp, chatfmt.FormatUnknownTXT:
		conv, err = whatsapp.Parse(file.Name, content)
	default:
		return nil, chatfmt.ErrUnrecognizedFormat
	}
	if err != nil {
		return nil, err
	}

	if len(conv.Messages) == 0 || len(conv.Participants) == 0 {
		return nil, chatfmt.ErrEmptyResultSet
	}
	return conv, nil
}

// parseJSON probes the export for its platform schema, then calls the
// adapter for that one declared shape.
func (s *ParseService) parseJSON(file InputFile) (*entities.Conversation, error) {
	schema, err := chatfmt.DetectJSONSchema(file.Content)
	if err != nil {
		return nil, err
	}

	switch schema {
	case chatfmt.SchemaFacebook:
		return facebook.Parse(file.Name, file.Content)
	case chatfmt.SchemaInstagram:
		return instagram.Parse(file.Name, file.Content)
	default:
		return nil, chatfmt.ErrUnknownJSONSchema
	}
}
