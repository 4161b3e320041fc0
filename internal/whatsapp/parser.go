package whatsapp

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mkarpov/rapport/internal/chatfmt"
	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/utils"
)

// WhatsApp exports are a line stream where a full-pattern line starts a
// message, unmatched non-blank lines continue the previous message's body,
// and system lines (same prefix, no "Sender:" segment) carry no message.
// The parser tracks a single nullable in-progress message and flushes it
// whenever a new prefixed line arrives or the input ends.

var (
	// Matches: "2021-06-21, 4:23 a.m. - Tom: Hello"
	messagePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2}), (\d{1,2}):(\d{2}) ([ap])\.m\. - ([^:]+): (.*)$`)

	// Matches system/info lines: "2021-06-21, 4:23 a.m. - Messages are encrypted"
	systemPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2}), (\d{1,2}):(\d{2}) ([ap])\.m\. - `)
)

// pending is the message under construction while continuation lines are
// still possible.
type pending struct {
	sender    string
	timestamp time.Time
	lines     []string
}

// Parse converts one WhatsApp TXT export into a normalized conversation.
func Parse(filename, content string) (*entities.Conversation, error) {
	scanner := bufio.NewScanner(strings.NewReader(chatfmt.StripBOM(content)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		messages []entities.Message
		current  *pending
	)

	flush := func() {
		if current == nil {
			return
		}
		if msg, ok := finalize(*current); ok {
			messages = append(messages, msg)
		}
		current = nil
	}

	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), "\r")

		if m := messagePattern.FindStringSubmatch(text); m != nil {
			flush()
			ts, err := parseTimestamp(m[1], m[2], m[3], m[4], m[5], m[6])
			if err != nil {
				return nil, err
			}
			current = &pending{
				sender:    strings.TrimSpace(m[7]),
				timestamp: ts,
				lines:     []string{m[8]},
			}
			continue
		}

		if systemPattern.MatchString(text) {
			// System lines end the previous message but start none
			flush()
			continue
		}

		if current != nil && strings.TrimSpace(text) != "" {
			current.lines = append(current.lines, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	return &entities.Conversation{
		Source:         string(entities.PlatformWhatsApp),
		ConversationID: utils.ConversationIDFromFilename(filename),
		Title:          utils.ConversationIDFromFilename(filename),
		Participants:   collectParticipants(messages),
		Messages:       messages,
		DateRange:      entities.NewDateRange(messages),
		TotalMessages:  len(messages),
	}, nil
}

// parseTimestamp combines the date fields with a 12-hour clock reading.
// 12 a.m. is midnight, 12 p.m. is noon, any other p.m. hour gains twelve.
func parseTimestamp(year, month, day, hour, minute, meridiem string) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	h, _ := strconv.Atoi(hour)
	mi, _ := strconv.Atoi(minute)

	if h < 1 || h > 12 || mi > 59 {
		return time.Time{}, fmt.Errorf("%w: %s:%s %s.m.", chatfmt.ErrInvalidTimeFormat, hour, minute, meridiem)
	}
	if meridiem == "a" && h == 12 {
		h = 0
	} else if meridiem == "p" && h != 12 {
		h += 12
	}

	return time.Date(y, time.Month(mo), d, h, mi, 0, 0, time.UTC), nil
}

func finalize(p pending) (entities.Message, bool) {
	body := strings.Join(p.lines, "\n")
	content, msgType, mediaType := normalizeContent(body)
	if p.sender == "" || content == "" {
		return entities.Message{}, false
	}
	return entities.Message{
		Sender:    p.sender,
		Content:   content,
		Timestamp: p.timestamp.UnixMilli(),
		Date:      p.timestamp,
		Type:      msgType,
		Metadata:  entities.MessageMetadata{MediaType: mediaType},
	}, true
}

// normalizeContent maps WhatsApp's literal media placeholders to the fixed
// content tags; anything unrecognized is plain text.
func normalizeContent(body string) (string, entities.MessageType, entities.MediaType) {
	trimmed := strings.TrimSpace(body)

	if idx := strings.Index(trimmed, "(file attached)"); idx >= 0 {
		filename := strings.TrimSpace(trimmed[:idx])
		tag, mediaType := tagForAttachment(filename)
		return tag, entities.MessageTypeMedia, mediaType
	}

	switch {
	case strings.Contains(trimmed, "<Media omitted>"):
		return "[Media]", entities.MessageTypeMedia, entities.MediaTypeOther
	case strings.Contains(trimmed, "image omitted"):
		return "[Photo]", entities.MessageTypeMedia, entities.MediaTypePhoto
	case strings.Contains(trimmed, "video omitted"):
		return "[Video]", entities.MessageTypeMedia, entities.MediaTypeVideo
	case strings.Contains(trimmed, "audio omitted"):
		return "[Audio]", entities.MessageTypeMedia, entities.MediaTypeAudio
	case strings.Contains(trimmed, "sticker omitted"):
		return "[Sticker]", entities.MessageTypeSticker, entities.MediaTypeSticker
	case strings.Contains(trimmed, "GIF omitted"):
		return "[Media]", entities.MessageTypeMedia, entities.MediaTypeOther
	case strings.Contains(trimmed, "Contact card omitted"):
		return "[Contact]", entities.MessageTypeMedia, entities.MediaTypeContact
	case strings.HasPrefix(trimmed, "Location:"):
		return "[Location]", entities.MessageTypeMedia, entities.MediaTypeLocation
	}

	return body, entities.MessageTypeText, ""
}

// tagForAttachment sniffs an attached filename's extension to pick the
// media tag; unknown extensions fall back to the generic file tag.
func tagForAttachment(filename string) (string, entities.MediaType) {
	lower := strings.ToLower(filename)
	dot := strings.LastIndex(lower, ".")
	if dot < 0 {
		return "[File]", entities.MediaTypeFile
	}
	switch lower[dot+1:] {
	case "jpg", "jpeg", "png", "gif", "webp", "heic":
		return "[Photo]", entities.MediaTypePhoto
	case "mp4", "mov", "avi", "3gp", "mkv":
		return "[Video]", entities.MediaTypeVideo
	case "opus", "mp3", "m4a", "ogg", "wav", "aac":
		return "[Audio]", entities.MediaTypeAudio
	case "pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt":
		return "[File]", entities.MediaTypeFile
	default:
		return "[File]", entities.MediaTypeFile
	}
}

func collectParticipants(messages []entities.Message) []entities.Participant {
	var participants []entities.Participant
	seen := make(map[string]bool)
	for _, msg := range messages {
		if seen[msg.Sender] {
			continue
		}
		seen[msg.Sender] = true
		participants = append(participants, entities.Participant{
			Name:          msg.Sender,
			Platform:      entities.PlatformWhatsApp,
			RawIdentifier: msg.Sender,
		})
	}
	return participants
}
