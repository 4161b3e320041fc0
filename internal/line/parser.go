package line

import (
	"bufio"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mkarpov/rapport/internal/chatfmt"
	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/utils"
)

// Line exports interleave date header lines with tab-separated message
// lines. The parser is a two-state machine: it waits for a date header,
// then attributes every following message line to that date until the next
// header replaces it. Message lines seen before any header are dropped.

type phase int

const (
	awaitingDate phase = iota
	haveDate
)

// state is the loop-carried parser state: the current phase plus the date
// governing subsequent message lines.
type state struct {
	phase phase
	date  time.Time
}

const titlePrefix = "Chat history with "

var (
	// Matches: "Mon, 21/06/2021"
	datePattern = regexp.MustCompile(`^[A-Za-z]{3}\.?, ?(\d{1,2})/(\d{1,2})/(\d{4})$`)

	// Matches: "04:23<TAB>Yuki<TAB>hello"
	messagePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\t([^\t]+)\t(.*)$`)
)

// Literal markers Line substitutes for non-text payloads, mapped to the
// normalized content tags.
var markerTags = map[string]struct {
	content   string
	msgType   entities.MessageType
	mediaType entities.MediaType
}{
	"[Sticker]":       {"[Sticker]", entities.MessageTypeSticker, entities.MediaTypeSticker},
	"[Photo]":         {"[Photo]", entities.MessageTypeMedia, entities.MediaTypePhoto},
	"[Video]":         {"[Video]", entities.MessageTypeMedia, entities.MediaTypeVideo},
	"[Voice message]": {"[Audio]", entities.MessageTypeMedia, entities.MediaTypeAudio},
	"[Audio]":         {"[Audio]", entities.MessageTypeMedia, entities.MediaTypeAudio},
	"[File]":          {"[File]", entities.MessageTypeMedia, entities.MediaTypeFile},
}

// Parse converts one Line TXT export into a normalized conversation.
func Parse(filename, content string) (*entities.Conversation, error) {
	scanner := bufio.NewScanner(strings.NewReader(chatfmt.StripBOM(content)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		title    string
		messages []entities.Message
		lineNo   int
		st       = state{phase: awaitingDate}
	)

	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), "\r")
		lineNo++

		// Line 1 is the title header; lines 2-3 are fixed export
		// metadata (save date, disclaimer) and carry no messages.
		if lineNo == 1 {
			title = strings.TrimSpace(strings.TrimPrefix(text, titlePrefix))
			continue
		}
		if lineNo <= 3 {
			continue
		}

		var msg *entities.Message
		st, msg = step(st, text)
		if msg != nil {
			messages = append(messages, *msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	return &entities.Conversation{
		Source:         string(entities.PlatformLine),
		ConversationID: utils.ConversationIDFromFilename(filename),
		Title:          title,
		Participants:   collectParticipants(messages),
		Messages:       messages,
		DateRange:      entities.NewDateRange(messages),
		TotalMessages:  len(messages),
	}, nil
}

// step is the transition function: given the current state and one input
// line it returns the next state and an optional emitted message. Keeping
// it pure makes the parser testable line by line.
func step(st state, text string) (state, *entities.Message) {
	if m := datePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return state{
			phase: haveDate,
			date:  time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		}, nil
	}

	if st.phase != haveDate {
		// Message lines before the first date header have no
		// anchoring date and are dropped, as are blanks and noise.
		return st, nil
	}

	m := messagePattern.FindStringSubmatch(text)
	if m == nil {
		return st, nil
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	sender := m[3]
	body := m[4]

	ts := st.date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

	content := body
	msgType := entities.MessageTypeText
	var mediaType entities.MediaType
	if tag, ok := markerTags[strings.TrimSpace(body)]; ok {
		content = tag.content
		msgType = tag.msgType
		mediaType = tag.mediaType
	}

	return st, &entities.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: ts.UnixMilli(),
		Date:      ts,
		Type:      msgType,
		Metadata:  entities.MessageMetadata{MediaType: mediaType},
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
			Platform:      entities.PlatformLine,
			RawIdentifier: msg.Sender,
		})
	}
	return participants
}
