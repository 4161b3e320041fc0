package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mkarpov/rapport/internal/config"
	"github.com/mkarpov/rapport/internal/services"
	"github.com/mkarpov/rapport/internal/sessions"
)

// RouterConfig carries the router's dependencies in one place, keeping the
// constructor signature stable as endpoints are added.
type RouterConfig struct {
	Parser  services.BatchParser
	Merger  services.ConversationMerger
	Store   *sessions.Store
	Upload  config.Upload
	Version string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	parseController := NewParseController(cfg.Parser, cfg.Store, cfg.Upload.MaxFileSizeBytes, cfg.Upload.MaxFilesPerBatch)
	mergeController := NewMergeController(cfg.Merger, cfg.Store)
	healthController := NewHealthController(cfg.Store, cfg.Version)

	api := router.Group("/api")
	{
		api.POST("/parse", parseController.Parse)
		api.GET("/sessions/:id", parseController.Get)
		api.POST("/merge", mergeController.Merge)
		api.GET("/health", healthController.Status)
	}

	return router
}
