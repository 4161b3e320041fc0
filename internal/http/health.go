package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkarpov/rapport/internal/sessions"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	store   *sessions.Store
	version string
}

func NewHealthController(store *sessions.Store, version string) *HealthController {
	return &HealthController{store: store, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)

	if h.store != nil {
		checks["sessions"] = strconv.Itoa(h.store.Len()) + " active"
	} else {
		checks["sessions"] = "not configured"
	}

	c.IndentedJSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}
