package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/mkarpov/rapport/internal/config"
	http_controllers "github.com/mkarpov/rapport/internal/http"
	"github.com/mkarpov/rapport/internal/logger"
	"github.com/mkarpov/rapport/internal/services"
	"github.com/mkarpov/rapport/internal/sessions"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	log := logger.GetLogger()
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("Shutdown requested, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown: %v", err)
	}

	log.Info("Server exiting")
}

// Run wires the whole service together and serves it.
func Run(cfg *config.Config, version string) {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.GetLogger()
	log.Infof("Starting rapport v%s", version)

	store := sessions.NewStore(cfg.Sessions.TTL)

	// Sweep expired parse sessions on a schedule
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Sessions.CleanupSchedule, func() {
		store.Cleanup()
	}); err != nil {
		log.Fatalf("Invalid session cleanup schedule %q: %v", cfg.Sessions.CleanupSchedule, err)
	}
	scheduler.Start()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Parser:  services.NewParseService(),
		Merger:  services.NewMergeService(),
		Store:   store,
		Upload:  cfg.Upload,
		Version: version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	})
}
