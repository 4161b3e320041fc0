package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/services"
	"github.com/mkarpov/rapport/internal/sessions"
)

func seededSession(store *sessions.Store) *sessions.Session {
	conv := func(id, source, name string, ts int64) entities.Conversation {
		return entities.Conversation{
			Source:         source,
			ConversationID: id,
			Title:          name,
			Participants:   []entities.Participant{{Name: name, Platform: entities.Platform(source), RawIdentifier: name}},
			Messages:       []entities.Message{{Sender: name, Content: "hello", Timestamp: ts, Type: entities.MessageTypeText}},
			DateRange:      &entities.DateRange{},
			TotalMessages:  1,
		}
	}
	return store.Create(services.ParseResult{
		Conversations: []entities.Conversation{
			conv("fb_alice", "facebook", "Alice", 1000),
			conv("ig_alice", "instagram", "alice_ig", 2000),
		},
	})
}

func TestMergeEndpoint_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)
	session := seededSession(store)

	reqBody, err := json.Marshal(MergeRequest{
		SessionID: session.ID,
		Mappings: []entities.IdentityMapping{{
			Person1: &entities.PersonRef{Name: "Alice", Platform: entities.PlatformFacebook, ConversationID: "fb_alice"},
			Person2: &entities.PersonRef{Name: "alice_ig", Platform: entities.PlatformInstagram, ConversationID: "ig_alice"},
		}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/merge", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp MergeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 1)
	assert.True(t, resp.Conversations[0].IsMerged)
	assert.Len(t, resp.Conversations[0].Messages, 2)

	// Copy-on-merge: the stored batch still holds the raw sender names
	stored, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice_ig", stored.Result.Conversations[1].Messages[0].Sender)
	assert.False(t, stored.Result.Conversations[1].IsMerged)
}

func TestMergeEndpoint_EmptyMappings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)
	session := seededSession(store)

	reqBody, err := json.Marshal(MergeRequest{SessionID: session.ID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/merge", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp MergeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Conversations, 2, "no mappings means pass-through")
}

func TestMergeEndpoint_UnknownSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)

	reqBody := []byte(`{"sessionId": "nope", "mappings": []}`)
	req := httptest.NewRequest(http.MethodPost, "/api/merge", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMergeEndpoint_MissingSessionID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/merge", bytes.NewReader([]byte(`{"mappings": []}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
