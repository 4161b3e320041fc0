package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/services"
	"github.com/mkarpov/rapport/internal/sessions"
)

// ParseController accepts an upload batch of chat exports, runs the
// adapter router over it, and parks the result in a session so identity
// mappings can be applied without re-uploading.
type ParseController struct {
	parser      services.BatchParser
	store       *sessions.Store
	maxFileSize int64
	maxFiles    int
}

func NewParseController(parser services.BatchParser, store *sessions.Store, maxFileSize int64, maxFiles int) *ParseController {
	return &ParseController{
		parser:      parser,
		store:       store,
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
	}
}

type ParseResponse struct {
	SessionID     string                  `json:"sessionId"`
	Conversations []entities.Conversation `json:"conversations"`
	Errors        []services.ParseError   `json:"errors"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Parse handles POST /api/parse with multipart form files under "files".
func (c *ParseController) Parse(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart form expected"})
		return
	}

	uploads := form.File["files"]
	if len(uploads) == 0 {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files provided"})
		return
	}
	if len(uploads) > c.maxFiles {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("too many files (max %d per batch)", c.maxFiles),
		})
		return
	}

	files := make([]services.InputFile, 0, len(uploads))
	for _, upload := range uploads {
		if upload.Size > c.maxFileSize {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error: fmt.Sprintf("%s is too large (max %d MB)", upload.Filename, c.maxFileSize/(1024*1024)),
			})
			return
		}

		f, err := upload.Open()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: fmt.Sprintf("failed to read %s", upload.Filename),
			})
			return
		}
		content, err := io.ReadAll(io.LimitReader(f, c.maxFileSize+1))
		f.Close()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: fmt.Sprintf("failed to read %s", upload.Filename),
			})
			return
		}

		files = append(files, services.InputFile{Name: upload.Filename, Content: content})
	}

	result := c.parser.ParseBatch(files)
	session := c.store.Create(result)

	ctx.JSON(http.StatusOK, ParseResponse{
		SessionID:     session.ID,
		Conversations: result.Conversations,
		Errors:        result.Errors,
	})
}

// Get handles GET /api/sessions/:id, returning the stored batch result.
func (c *ParseController) Get(ctx *gin.Context) {
	session, err := c.store.Get(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		return
	}

	ctx.JSON(http.StatusOK, ParseResponse{
		SessionID:     session.ID,
		Conversations: session.Result.Conversations,
		Errors:        session.Result.Errors,
	})
}
