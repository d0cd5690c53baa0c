package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DF-ANLZ/internal"
	"DF-ANLZ/internal/analyzer"
	"DF-ANLZ/internal/config"
	"DF-ANLZ/internal/converter"
	"DF-ANLZ/internal/handlers"
	"DF-ANLZ/internal/resolver"
	"DF-ANLZ/internal/services"
	"DF-ANLZ/internal/storage"
	"DF-ANLZ/internal/vision"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := internal.InitDB(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer internal.CloseDB()

	ctx := context.Background()
	gcsClient, err := storage.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.ProjectID, cfg.GCS.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to create GCS client: %v", err)
	}
	defer gcsClient.Close()

	// Conversion backends in fallback order: Gotenberg (when configured),
	// a local LibreOffice binary, then plain text rendering.
	var backends []converter.Backend
	if cfg.Converter.GotenbergURL != "" {
		gotenbergBackend, err := converter.NewGotenbergBackend(cfg.Converter.GotenbergURL, cfg.Converter.GotenbergTimeout)
		if err != nil {
			log.Printf("Gotenberg backend unavailable: %v", err)
		} else {
			backends = append(backends, gotenbergBackend)
		}
	}
	backends = append(backends,
		converter.NewSofficeBackend(cfg.Converter.SofficePaths, cfg.Converter.ConvertTimeout),
		converter.NewTextPDFBackend(),
	)
	chain := converter.NewChain(logger, backends...)

	var visionClient vision.Client
	if cfg.AI.APIKey != "" {
		visionClient = vision.NewHTTPClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout, logger)
	} else {
		log.Println("AI_API_KEY not set, analysis will use pattern fallback only")
	}

	analysisService := services.NewAnalysisService(
		chain,
		analyzer.New(visionClient, logger),
		resolver.New(logger),
		gcsClient,
		services.NewGormTemplateRepository(),
		cfg.Upload.MinParagraphs,
		logger,
	)
	activityLogService := services.NewActivityLogService()

	templatesHandler := handlers.NewTemplatesHandler(analysisService, cfg.Upload)
	logsHandler := handlers.NewLogsHandler(activityLogService)

	// Stale conversion work directories older than 24 hours are removed.
	cleanupService := handlers.NewFileCleanupService(os.TempDir(), "df-anlz-", 24*time.Hour)
	cleanupService.Start()

	// Graceful shutdown handling
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("Shutting down server...")
		cleanupService.Stop()
		internal.CloseDB()
		os.Exit(0)
	}()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(activityLogService.LoggingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Template analysis
		v1.POST("/templates/analyze", templatesHandler.AnalyzeTemplate)
		v1.POST("/templates/analyze/user", templatesHandler.AnalyzeUserTemplate)

		// Template management and download
		v1.GET("/templates/:templateId", templatesHandler.GetTemplate)
		v1.GET("/templates/:templateId/download", templatesHandler.DownloadTemplate)
		v1.DELETE("/templates/:templateId", templatesHandler.DeleteTemplate)

		// Activity logs
		v1.GET("/logs", logsHandler.GetAllLogs)
		v1.GET("/logs/stats", logsHandler.GetLogStats)
	}

	log.Printf("Starting server on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
