package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatch_MixedFormats(t *testing.T) {
	files := []InputFile{
		{
			Name: "message_1.json",
			Content: []byte(`{
				"participants": [{"name": "Alice"}, {"name": "Bob"}],
				"messages": [{"sender_name": "Alice", "timestamp_ms": 1000, "content": "hi"}]
			}`),
		},
		{
			Name: "alice_thread.json",
			Content: []byte(`{
				"participants": ["alice_ig", "Bob"],
				"messages": [{"senderName": "alice_ig", "timestamp": 2000, "text": "hello"}]
			}`),
		},
		{
			Name: "WhatsApp Chat with Tom.txt",
			Content: []byte("2021-06-21, 4:23 a.m. - Tom: up?\n" +
				"2021-06-21, 4:25 a.m. - Anna: no\n"),
		},
		{
			Name: "line_chat.txt",
			Content: []byte("Chat history with Yuki\nSaved on: 2021/06/23\n\n" +
				"Mon, 21/06/2021\n09:15\tYuki\tmorning\n"),
		},
	}

	result := NewParseService().ParseBatch(files)

	require.Len(t, result.Conversations, 4)
	assert.Empty(t, result.Errors)

	sources := []string{}
	for _, conv := range result.Conversations {
		sources = append(sources, conv.Source)
	}
	assert.Equal(t, []string{"facebook", "instagram", "whatsapp", "line"}, sources)
}

func TestParseBatch_PerFileErrorIsolation(t *testing.T) {
	files := []InputFile{
		{Name: "broken.json", Content: []byte(`{"messages": [`)},
		{
			Name:    "good.txt",
			Content: []byte("2021-06-21, 4:23 a.m. - Tom: hi\n"),
		},
		{Name: "mystery.bin", Content: []byte("\x00\x01\x02")},
	}

	result := NewParseService().ParseBatch(files)

	require.Len(t, result.Conversations, 1)
	assert.Equal(t, "whatsapp", result.Conversations[0].Source)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "broken.json", result.Errors[0].FileName)
	assert.Equal(t, "mystery.bin", result.Errors[1].FileName)
}

func TestParseBatch_EmptyResultIsError(t *testing.T) {
	files := []InputFile{
		// Valid WhatsApp-ish txt that yields zero messages
		{Name: "nothing.txt", Content: []byte("just some prose\nwith no chat lines\n")},
	}

	result := NewParseService().ParseBatch(files)

	assert.Empty(t, result.Conversations)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, "no usable messages")
}

func TestParseBatch_AllFilesFailedIsStillAResult(t *testing.T) {
	files := []InputFile{
		{Name: "a.json", Content: []byte(`not json`)},
		{Name: "b.json", Content: []byte(`{"messages": [{"from": "x"}]}`)},
	}

	result := NewParseService().ParseBatch(files)

	assert.NotNil(t, result.Conversations)
	assert.Empty(t, result.Conversations)
	assert.Len(t, result.Errors, 2)
}

func TestParseBatch_SortedTimestamps(t *testing.T) {
	files := []InputFile{
		{
			Name: "message_1.json",
			Content: []byte(`{
				"participants": [{"name": "Alice"}],
				"messages": [
					{"sender_name": "Alice", "timestamp_ms": 300, "content": "third"},
					{"sender_name": "Alice", "timestamp_ms": 100, "content": "first"},
					{"sender_name": "Alice", "timestamp_ms": 200, "content": "second"}
				]
			}`),
		},
	}

	result := NewParseService().ParseBatch(files)
	require.Len(t, result.Conversations, 1)

	msgs := result.Conversations[0].Messages
	for i := 1; i < len(msgs); i++ {
		assert.LessOrEqual(t, msgs[i-1].Timestamp, msgs[i].Timestamp)
	}
	for _, m := range msgs {
		assert.NotEmpty(t, m.Sender)
		assert.NotEmpty(t, m.Content)
		assert.Positive(t, m.Timestamp)
	}
}
