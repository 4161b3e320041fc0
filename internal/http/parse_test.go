package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpov/rapport/internal/config"
	"github.com/mkarpov/rapport/internal/services"
	"github.com/mkarpov/rapport/internal/sessions"
)

func testRouter(store *sessions.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Parser: services.NewParseService(),
		Merger: services.NewMergeService(),
		Store:  store,
		Upload: config.Upload{
			MaxFileSizeBytes: 1024 * 1024,
			MaxFilesPerBatch: 3,
		},
		Version: "test",
	})
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestParseEndpoint_Success(t *testing.T) {
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)

	body, contentType := multipartBody(t, map[string]string{
		"chat.txt": "2021-06-21, 4:23 a.m. - Tom: hi\n2021-06-21, 4:25 a.m. - Anna: hey\n",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, "whatsapp", resp.Conversations[0].Source)
	assert.Empty(t, resp.Errors)

	// The batch is retrievable under its session id
	req = httptest.NewRequest(http.MethodGet, "/api/sessions/"+resp.SessionID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseEndpoint_PartialFailure(t *testing.T) {
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)

	body, contentType := multipartBody(t, map[string]string{
		"good.txt":    "2021-06-21, 4:23 a.m. - Tom: hi\n",
		"broken.json": "{\"messages\": [",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Conversations, 1)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "broken.json", resp.Errors[0].FileName)
}

func TestParseEndpoint_NoFiles(t *testing.T) {
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)

	body, contentType := multipartBody(t, map[string]string{})
	req := httptest.NewRequest(http.MethodPost, "/api/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseEndpoint_TooManyFiles(t *testing.T) {
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)

	files := map[string]string{
		"a.txt": "x", "b.txt": "x", "c.txt": "x", "d.txt": "x",
	}
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/api/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionEndpoint_NotFound(t *testing.T) {
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	store := sessions.NewStore(time.Hour)
	router := testRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
}
