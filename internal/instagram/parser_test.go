package instagram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpov/rapport/internal/chatfmt"
	"github.com/mkarpov/rapport/internal/entities"
)

func TestParse_BasicConversation(t *testing.T) {
	input := `{
		"participants": ["alice_ig", "Bob"],
		"threadName": "alice_ig",
		"messages": [
			{"senderName": "Bob", "timestamp": 1624249520000, "text": "sounds good"},
			{"senderName": "alice_ig", "timestamp": 1624249400000, "text": "usual place?"}
		]
	}`

	conv, err := Parse("alice_thread.json", []byte(input))
	require.NoError(t, err)

	assert.Equal(t, "instagram", conv.Source)
	assert.Equal(t, "alice_thread", conv.ConversationID)
	assert.Equal(t, "alice_ig", conv.Title)
	assert.Len(t, conv.Participants, 2)
	require.Len(t, conv.Messages, 2)

	assert.Equal(t, "alice_ig", conv.Messages[0].Sender)
	assert.Equal(t, "Bob", conv.Messages[1].Sender)
	assert.LessOrEqual(t, conv.Messages[0].Timestamp, conv.Messages[1].Timestamp)
}

func TestParse_DropsUnsent(t *testing.T) {
	input := `{
		"participants": ["alice_ig"],
		"messages": [
			{"senderName": "alice_ig", "timestamp": 100, "text": "kept"},
			{"senderName": "alice_ig", "timestamp": 200, "text": "you never saw this", "isUnsent": true}
		]
	}`

	conv, err := Parse("t.json", []byte(input))
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "kept", conv.Messages[0].Content)
}

func TestParse_MediaOnlyMessage(t *testing.T) {
	input := `{
		"participants": ["alice_ig"],
		"messages": [
			{"senderName": "alice_ig", "timestamp": 100, "media": [{"uri": "photo.jpg"}]}
		]
	}`

	conv, err := Parse("t.json", []byte(input))
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "[Media]", conv.Messages[0].Content)
	assert.Equal(t, entities.MessageTypeMedia, conv.Messages[0].Type)
	assert.Equal(t, entities.MediaTypeOther, conv.Messages[0].Metadata.MediaType)
}

func TestParse_FinalFilter(t *testing.T) {
	input := `{
		"participants": ["alice_ig"],
		"messages": [
			{"senderName": "alice_ig", "text": "no timestamp"},
			{"senderName": "", "timestamp": 100, "text": "no sender"},
			{"senderName": "alice_ig", "timestamp": 100}
		]
	}`

	conv, err := Parse("t.json", []byte(input))
	require.NoError(t, err)
	assert.Empty(t, conv.Messages)
	assert.Nil(t, conv.DateRange)
	assert.Equal(t, 0, conv.TotalMessages)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("broken.json", []byte(`not json`))
	assert.True(t, errors.Is(err, chatfmt.ErrMalformedJSON))

	_, err = Parse("empty.json", []byte(`{"participants": ["a"], "messages": []}`))
	assert.True(t, errors.Is(err, chatfmt.ErrMissingMessages))
}
