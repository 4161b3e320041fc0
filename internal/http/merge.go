package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/services"
	"github.com/mkarpov/rapport/internal/sessions"
)

// MergeController applies user-declared identity mappings to a stored
// parse session. The session's conversations are read, never modified, so
// the same session can be re-merged with a different mapping list.
type MergeController struct {
	merger services.ConversationMerger
	store  *sessions.Store
}

func NewMergeController(merger services.ConversationMerger, store *sessions.Store) *MergeController {
	return &MergeController{merger: merger, store: store}
}

type MergeRequest struct {
	SessionID string                     `json:"sessionId"`
	Mappings  []entities.IdentityMapping `json:"mappings"`
}

type MergeResponse struct {
	Conversations []entities.Conversation `json:"conversations"`
}

// Merge handles POST /api/merge.
func (c *MergeController) Merge(ctx *gin.Context) {
	var req MergeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid merge request"})
		return
	}
	if req.SessionID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "sessionId is required"})
		return
	}

	session, err := c.store.Get(req.SessionID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		return
	}

	merged := c.merger.Merge(session.Result.Conversations, req.Mappings)
	ctx.JSON(http.StatusOK, MergeResponse{Conversations: merged})
}
