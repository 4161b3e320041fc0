package facebook

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/mkarpov/rapport/internal/chatfmt"
	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/utils"
)

// export mirrors the Facebook message_N.json wire shape. All text fields
// arrive mojibake-encoded (UTF-8 bytes stored as Latin-1) and must go
// through utils.FixMojibake before use.
type export struct {
	Participants []participant   `json:"participants"`
	Messages     []exportMessage `json:"messages"`
	Title        string          `json:"title"`
	ThreadPath   string          `json:"thread_path"`
}

type participant struct {
	Name string `json:"name"`
}

type exportMessage struct {
	SenderName  string            `json:"sender_name"`
	TimestampMS int64             `json:"timestamp_ms"`
	Content     string            `json:"content"`
	Photos      []json.RawMessage `json:"photos"`
	Videos      []json.RawMessage `json:"videos"`
	AudioFiles  []json.RawMessage `json:"audio_files"`
	Files       []json.RawMessage `json:"files"`
	Share       json.RawMessage   `json:"share"`
	Sticker     json.RawMessage   `json:"sticker"`
	GIFs        []json.RawMessage `json:"gifs"`
	Reactions   []exportReaction  `json:"reactions"`
	IsUnsent    bool              `json:"is_unsent"`
}

type exportReaction struct {
	Reaction string `json:"reaction"`
	Actor    string `json:"actor"`
}

// Parse converts one Facebook JSON export into a normalized conversation.
// The conversation id is derived from the source filename since Facebook
// exports carry no usable thread id.
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
	for _, p := range raw.Participants {
		name := utils.FixMojibake(p.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		participants = append(participants, entities.Participant{
			Name:          name,
			Platform:      entities.PlatformFacebook,
			RawIdentifier: name,
		})
	}

	title := utils.FixMojibake(raw.Title)
	if title == "" {
		title = utils.ConversationIDFromFilename(filename)
	}

	return &entities.Conversation{
		Source:         string(entities.PlatformFacebook),
		ConversationID: utils.ConversationIDFromFilename(filename),
		Title:          title,
		Participants:   participants,
		Messages:       messages,
		DateRange:      entities.NewDateRange(messages),
		TotalMessages:  len(messages),
	}, nil
}

// convertMessage normalizes a single export record. The second return is
// false when the record is unusable (no timestamp, no sender, or neither
// text content nor a media attachment).
func convertMessage(m exportMessage) (entities.Message, bool) {
	sender := utils.FixMojibake(m.SenderName)

	content := utils.FixMojibake(strings.TrimSpace(m.Content))
	msgType := entities.MessageTypeText
	var mediaType entities.MediaType

	if content == "" {
		content, mediaType = mediaTag(m)
		if content == "" {
			return entities.Message{}, false
		}
		msgType = entities.MessageTypeMedia
	}

	if m.TimestampMS <= 0 || sender == "" || content == "" {
		return entities.Message{}, false
	}

	var reactions []entities.Reaction
	for _, r := range m.Reactions {
		reactions = append(reactions, entities.Reaction{
			Reaction: utils.FixMojibake(r.Reaction),
			Actor:    utils.FixMojibake(r.Actor),
		})
	}

	return entities.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: m.TimestampMS,
		Date:      time.UnixMilli(m.TimestampMS).UTC(),
		Type:      msgType,
		Metadata: entities.MessageMetadata{
			IsUnsent:  m.IsUnsent,
			Reactions: reactions,
			MediaType: mediaType,
		},
	}, true
}

// mediaTag maps the attachment fields to a fixed content tag, in the
// export's precedence order. Attachments with no dedicated tag (stickers,
// GIFs) collapse into the generic [Media] tag. Returns empty when the
// record has no attachment at all.
func mediaTag(m exportMessage) (string, entities.MediaType) {
	switch {
	case len(m.Photos) > 0:
		return "[Photo]", entities.MediaTypePhoto
	case len(m.Videos) > 0:
		return "[Video]", entities.MediaTypeVideo
	case len(m.AudioFiles) > 0:
		return "[Audio]", entities.MediaTypeAudio
	case len(m.Files) > 0:
		return "[File]", entities.MediaTypeFile
	case len(m.Share) > 0:
		return "[Shared link]", entities.MediaTypeLink
	case len(m.Sticker) > 0 || len(m.GIFs) > 0:
		return "[Media]", entities.MediaTypeOther
	default:
		return "", ""
	}
}
