package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/cache"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/queue"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/tracing"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/transcoder"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	_, tracerCloser, err := tracing.Init(cfg.Tracing)
	if err != nil {
		logger.WithError(err).Warn("Tracing disabled")
	} else {
		defer tracerCloser.Close()
	}

	// Database
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to apply schema")
	}
	repo := database.NewRepository(db)

	// Media store
	stor, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage")
	}

	receiver, err := upload.NewReceiver(cfg.Upload)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize upload directory")
	}

	deps := Deps{
		Config:    cfg,
		Repo:      repo,
		Tokens:    auth.NewTokenManager(cfg.Auth),
		Media:     stor,
		Processor: transcoder.NewFFmpeg(cfg.Upload.FFmpegPath, cfg.Upload.FFprobePath),
		Receiver:  receiver,
		Logger:    logger,
	}

	// Redis backs logout revocation and the credential rate limit; the API runs without it
	if redisCache, err := cache.NewCache(cfg.Redis); err != nil {
		logger.WithError(err).Warn("Redis unavailable, token revocation and auth rate limiting disabled")
	} else {
		defer redisCache.Close()
		deps.Sessions = redisCache
	}

	// RabbitMQ carries orphaned media to the cleanup worker; the API runs without it
	if q, err := queue.New(cfg.Queue); err != nil {
		logger.WithError(err).Warn("Queue unavailable, orphaned media will only be logged")
	} else {
		defer q.Close()
		deps.Orphans = q
	}

	api := NewAPI(deps)

	limiter := middleware.NewRateLimiter(float64(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx, time.Minute)

	router := setupRouter(api, cfg, limiter)

	// Metrics server
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port, repo.Health)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      http.MaxBytesHandler(router, maxRequestBytes(cfg.Upload)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("addr", addr).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Metrics server forced to shutdown")
		}
	}

	logger.Info("Server stopped")
}

// maxRequestBytes bounds a whole request: one video, two images and form fields
func maxRequestBytes(cfg config.UploadConfig) int64 {
	return cfg.MaxVideoBytes + 2*cfg.MaxImageBytes + 1<<20
}
