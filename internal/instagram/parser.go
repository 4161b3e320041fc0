package instagram

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/mkarpov/rapport/internal/chatfmt"
	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/utils"
)

// export mirrors the Instagram thread export wire shape. Unlike Facebook
// exports, the text arrives correctly encoded.
type export struct {
	Participants []string        `json:"participants"`
	Messages     []exportMessage `json:"messages"`
	ThreadName   string          `json:"threadName"`
}

type exportMessage struct {
	SenderName string            `json:"senderName"`
	Timestamp  int64             `json:"timestamp"`
	Text       string            `json:"text"`
	Media      []json.RawMessage `json:"media"`
	IsUnsent   bool              `json:"isUnsent"`
	Reactions  []exportReaction  `json:"reactions"`
}

type exportReaction struct {
	Reaction string `json:"reaction"`
	Actor    string `json:"actor"`
}

// Parse converts one Instagram JSON export into a normalized conversation.
func Parse(filename string, content []byte) (*entities.Conversation, error) {
	var raw export
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, chatfmt.ErrMalformedJSON
	}
	if len(raw.Messages) == 0 {
		return nil, chatfmt.ErrMissingMessages
	}

	messages := make([]entities.Message, 0, len(raw.Messages))
	for _, m := range raw.Messages {
		msg, ok := convertMessage(m)
		if !ok {
			continue
		}
		messages = append(messages, msg)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	participants := make([]entities.Participant, 0, len(raw.Participants))
	seen := make(map[string]bool)
	for _, name := range raw.Participants {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		participants = append(participants, entities.Participant{
			Name:          name,
			Platform:      entities.PlatformInstagram,
			RawIdentifier: name,
		})
	}

	title := raw.ThreadName
	if title == "" {
		title = utils.ConversationIDFromFilename(filename)
	}

	return &entities.Conversation{
		Source:         string(entities.PlatformInstagram),
		ConversationID: utils.ConversationIDFromFilename(filename),
		Title:          title,
		Participants:   participants,
		Messages:       messages,
		DateRange:      entities.NewDateRange(messages),
		TotalMessages:  len(messages),
	}, nil
}

func convertMessage(m exportMessage) (entities.Message, bool) {
	// Unsent messages leave an empty husk in the export
	if m.IsUnsent {
		return entities.Message{}, false
	}

	content := strings.TrimSpace(m.Text)
	msgType := entities.MessageTypeText
	var mediaType entities.MediaType

	if content == "" {
		if len(m.Media) == 0 {
			return entities.Message{}, false
		}
		content = "[Media]"
		msgType = entities.MessageTypeMedia
		mediaType = entities.MediaTypeOther
	}

	if m.Timestamp <= 0 || m.SenderName == "" {
		return entities.Message{}, false
	}

	var reactions []entities.Reaction
	for _, r := range m.Reactions {
		reactions = append(reactions, entities.Reaction{Reaction: r.Reaction, Actor: r.Actor})
	}

	return entities.Message{
		Sender:    m.SenderName,
		Content:   content,
		Timestamp: m.Timestamp,
		Date:      time.UnixMilli(m.Timestamp).UTC(),
		Type:      msgType,
		Metadata: entities.MessageMetadata{
			Reactions: reactions,
			MediaType: mediaType,
		},
	}, true
}
