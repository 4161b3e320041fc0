package entities

import "time"

type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformLine      Platform = "line"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformMultiple  Platform = "multiple"

	// SourceMerged marks a conversation assembled from several
	// platform-specific conversations.
	SourceMerged = "merged"
)

type MessageType string

const (
	MessageTypeText    MessageType = "text"
	MessageTypeMedia   MessageType = "media"
	MessageTypeSticker MessageType = "sticker"
)

type MediaType string

const (
	MediaTypePhoto    MediaType = "photo"
	MediaTypeVideo    MediaType = "video"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeFile     MediaType = "file"
	MediaTypeLink     MediaType = "link"
	MediaTypeSticker  MediaType = "sticker"
	MediaTypeContact  MediaType = "contact"
	MediaTypeLocation MediaType = "location"
	MediaTypeOther    MediaType = "other"
)

// Reaction is a per-message reaction as exported by Facebook/Instagram.
type Reaction struct {
	Reaction string `json:"reaction"`
	Actor    string `json:"actor"`
}

// MessageMetadata carries source-specific flags that survive normalization.
type MessageMetadata struct {
	IsUnsent  bool       `json:"isUnsent"`
	Reactions []Reaction `json:"reactions,omitempty"`
	MediaType MediaType  `json:"mediaType,omitempty"`
}

// Message is the normalized message shape every adapter produces.
// Timestamp is epoch milliseconds and must be positive; Date is derived
// from it. OriginalSender is set only on merged conversations, when the
// sender was rewritten to a canonical name.
type Message struct {
	Sender         string          `json:"sender"`
	OriginalSender string          `json:"originalSender,omitempty"`
	Content        string          `json:"content"`
	Timestamp      int64           `json:"timestamp"`
	Date           time.Time       `json:"date"`
	Type           MessageType     `json:"type"`
	Metadata       MessageMetadata `json:"metadata"`
}

// Participant is a conversation member as recorded by its source.
// RawIdentifier is the source-native identifier and may equal Name.
type Participant struct {
	Name           string   `json:"name"`
	Platform       Platform `json:"platform"`
	RawIdentifier  string   `json:"rawIdentifier"`
	AlternateNames []string `json:"alternateNames,omitempty"`
}

// DateRange spans the first and last message of a conversation.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SourceConversation records the provenance of one member of a merged
// conversation.
type SourceConversation struct {
	Title        string     `json:"title"`
	Source       string     `json:"source"`
	MessageCount int        `json:"messageCount"`
	DateRange    *DateRange `json:"dateRange"`
}

// Conversation is the canonical conversation shape shared by all adapters
// and consumed by the UI and analysis collaborators. Messages are kept
// sorted non-decreasing by timestamp.
type Conversation struct {
	Source              string               `json:"source"`
	ConversationID      string               `json:"conversationId"`
	Title               string               `json:"title"`
	Participants        []Participant        `json:"participants"`
	Messages            []Message            `json:"messages"`
	DateRange           *DateRange           `json:"dateRange"`
	TotalMessages       int                  `json:"totalMessages"`
	IsMerged            bool                 `json:"isMerged"`
	SourceConversations []SourceConversation `json:"sourceConversations,omitempty"`
}

// NewDateRange derives the conversation date range from an already-sorted
// message sequence. Returns nil for an empty sequence.
func NewDateRange(messages []Message) *DateRange {
	if len(messages) == 0 {
		return nil
	}
	return &DateRange{
		Start: messages[0].Date,
		End:   messages[len(messages)-1].Date,
	}
}
