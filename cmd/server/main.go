package main

import (
	// Standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	// External dependencies
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/meetscribe/meetscribe/cmd/server/internal/api"
	"github.com/meetscribe/meetscribe/cmd/server/internal/audit"
	"github.com/meetscribe/meetscribe/cmd/server/internal/config"
	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/cmd/server/internal/middleware"
	"github.com/meetscribe/meetscribe/cmd/server/internal/recall"
	"github.com/meetscribe/meetscribe/cmd/server/internal/summarize"
	"github.com/meetscribe/meetscribe/pkg/logger"
)

func main() {
	logInstance, err := logger.Init(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: os.Getenv("ENV"),
		WithSource:  !strings.EqualFold(os.Getenv("ENV"), "production"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	appLogger := logInstance.With("component", "web-server")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	appLogger.Info("configuration loaded", "env", cfg.Server.Env, "port", cfg.Server.Port)
	appLogger.Debug("effective configuration", "config", cfg.PrintConfig())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize meeting record store
	store, err := meetings.NewStore(cfg.Data.MeetingsDir)
	if err != nil {
		appLogger.Error("meeting store init failed", "dir", cfg.Data.MeetingsDir, "error", err)
		os.Exit(1)
	}
	service := meetings.NewService(store)
	appLogger.Info("meeting store ready", "dir", cfg.Data.MeetingsDir, "records", len(service.List()))

	// Initialize bot provider client
	dispatcher := recall.NewClient(cfg.Recall.APIURL, cfg.Recall.APIKey,
		time.Duration(cfg.Recall.TimeoutSeconds)*time.Second)
	appLogger.Info("bot provider client ready", "url", cfg.Recall.APIURL)

	// Initialize summarization
	summarizer := summarize.NewGeminiSummarizer(cfg.Gemini.APIKeys, cfg.Gemini.Model,
		time.Duration(cfg.Summarize.TimeoutSeconds)*time.Second)
	worker := summarize.NewWorker(service, summarizer, summarize.WorkerConfig{
		MaxConcurrent: cfg.Summarize.MaxConcurrent,
		MaxAttempts:   cfg.Summarize.MaxAttempts,
	}, logInstance.With("component", "summarize-worker"))
	appLogger.Info("summarization ready",
		"model", cfg.Gemini.Model,
		"keys", len(cfg.Gemini.APIKeys),
		"max_concurrent", cfg.Summarize.MaxConcurrent,
	)

	// Initialize webhook audit logger
	auditLogger, err := audit.NewLogger(cfg.Data.AuditLogPath)
	if err != nil {
		appLogger.Error("audit logger init failed", "path", cfg.Data.AuditLogPath, "error", err)
		os.Exit(1)
	}
	appLogger.Info("audit logger ready", "path", cfg.Data.AuditLogPath)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// Health check endpoints
	startTime := time.Now()
	r.GET("/health", healthCheckHandler(cfg, startTime))
	r.GET("/api/v1/health", healthCheckHandler(cfg, startTime)) // Alternative API path
	r.GET("/readiness", readinessCheckHandler(cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupRoutes(r, service, dispatcher, summarizer, worker, auditLogger, cfg)

	// Create HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.GetServerAddr(),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	appLogger.Info("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight summarizations finish so their results land on disk.
	if err := worker.Shutdown(ctx); err != nil {
		appLogger.Warn("summarization worker drain timed out", "error", err)
	}
	appLogger.Info("server shutdown complete")
}

func setupRoutes(r *gin.Engine, service *meetings.Service, dispatcher recall.Dispatcher, summarizer summarize.Summarizer, worker *summarize.Worker, auditLogger *audit.Logger, cfg *config.Config) {
	// ========== Meetings API ==========
	r.POST("/api/v1/meetings", api.HandleJoinMeeting(service, dispatcher, cfg.Server.PublicURL, cfg.Recall.BotName))
	r.POST("/api/v1/meetings/:id/leave", api.HandleLeaveMeeting(service, dispatcher))
	r.GET("/api/v1/meetings", api.HandleListMeetings(service))
	r.GET("/api/v1/meetings/:id", api.HandleGetMeeting(service))

	// ========== Provider Webhook ==========
	r.POST("/api/v1/webhook", api.HandleBotWebhook(service, worker, auditLogger))

	// ========== On-Demand Summarization ==========
	r.POST("/api/v1/summarize", api.HandleSummarize(service, summarizer, cfg.Summarize.MinTranscriptChars))
}

type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
	Env       string    `json:"env"`
}

type ReadinessCheckResponse struct {
	Ready     bool             `json:"ready"`
	Checks    []ReadinessCheck `json:"checks"`
	Timestamp time.Time        `json:"timestamp"`
}

type ReadinessCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok" or "fail"
	Error  string `json:"error,omitempty"`
}

// healthCheckHandler returns the liveness probe handler
func healthCheckHandler(cfg *config.Config, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthCheckResponse{
			Status:    "healthy",
			Service:   "meetscribe-server",
			Version:   "1.0.0",
			Uptime:    time.Since(startTime).String(),
			Timestamp: time.Now(),
			Env:       cfg.Server.Env,
		}
		c.JSON(http.StatusOK, response)
	}
}

// readinessCheckHandler returns the readiness probe handler
func readinessCheckHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := []ReadinessCheck{}
		allReady := true

		meetingsCheck := ReadinessCheck{Name: "meetings_dir", Status: "ok"}
		if !checkDataDirAccessible(cfg.Data.MeetingsDir) {
			meetingsCheck.Status = "fail"
			meetingsCheck.Error = "meetings directory not accessible"
			allReady = false
		}
		checks = append(checks, meetingsCheck)

		response := ReadinessCheckResponse{
			Ready:     allReady,
			Checks:    checks,
			Timestamp: time.Now(),
		}

		httpStatus := http.StatusOK
		if !allReady {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, response)
	}
}

// checkDataDirAccessible checks if a directory is accessible
func checkDataDirAccessible(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil {
		return false
	}
	return info.IsDir()
}
