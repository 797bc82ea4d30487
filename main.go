package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"wordle-results/internal/logging"
	"wordle-results/internal/service"
	"wordle-results/internal/store"
)

// App holds the server's dependencies and per-client state.
type App struct {
	Config       Config
	Store        *store.FileStore
	Service      *service.Service
	LimiterMap   map[string]*clientLimiter
	LimiterMutex sync.Mutex
	StartTime    time.Time
}

// newApp wires the store and service for cfg.
func newApp(cfg Config, opts ...service.Option) (*App, error) {
	fs, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:     cfg,
		Store:      fs,
		Service:    service.New(fs, opts...),
		LimiterMap: make(map[string]*clientLimiter),
		StartTime:  time.Now(),
	}, nil
}

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	logging.Info("Starting wordle results service in %s mode", envName(cfg.IsProduction))

	app, err := newApp(cfg)
	if err != nil {
		logging.Fatal("Failed to open data store: %v", err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go app.runLimiterSweeper(sweepCtx, cfg.LimiterSweepInterval, cfg.LimiterIdleTTL)

	router := app.setupRouter()
	app.startServer(router)
}

// setupRouter builds the gin engine with middleware and routes.
func (app *App) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(corsMiddleware(app.Config.CORSOrigins))
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression))
	router.Use(noStoreMiddleware())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logging.Warn("Failed to set trusted proxies: %v", err)
	}

	router.POST(RouteSubmit, app.rateLimitMiddleware(), app.submitHandler)
	router.GET(RouteResults, app.resultsHandler)
	router.POST(RouteClear, app.rateLimitMiddleware(), app.clearHandler)
	router.GET(RouteHealthz, app.healthzHandler)
	if app.Config.EnableDebug {
		logging.Warn("Debug endpoint enabled at %s", RouteDebug)
		router.GET(RouteDebug, app.debugHandler)
	}
	return router
}

func (app *App) startServer(router *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + app.Config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logging.Info("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logging.Info("Server starting on http://localhost:%s (data file: %s)", app.Config.Port, app.Store.Path())
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logging.Info("Server shutdown complete")
}

func envName(production bool) string {
	return map[bool]string{true: "production", false: "development"}[production]
}
