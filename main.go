package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auditpro/document-auditor/client"
	"github.com/auditpro/document-auditor/config"
	"github.com/auditpro/document-auditor/handler"
	"github.com/auditpro/document-auditor/logger"
	"github.com/auditpro/document-auditor/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	log := logger.New(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout"})
	defer log.Sync()

	if err := cfg.RequireAPIKey(); err != nil {
		// the server still starts; audits will be refused until the key is set
		log.Warn("Extraction service credential not configured", zap.Error(err))
	}

	// Initialize collaborator client
	gemini := client.NewGeminiClient(client.GeminiConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.GeminiBaseURL,
		Model:       cfg.GeminiModel,
		Timeout:     cfg.RequestTimeout,
		MaxAttempts: cfg.MaxAttempts,
	})

	// Initialize service layer
	store := service.NewSessionStore()
	ledgerService := service.NewLedgerService(log)
	documentService := service.NewDocumentService(service.NewPDFProcessor(), service.NewBarcodeReader(), log)
	auditService := service.NewAuditService(gemini, cfg, log)

	// Initialize handler layer
	handlers := handler.Handlers{
		Sessions: handler.NewSessionHandler(store, log),
		Uploads:  handler.NewUploadHandler(store, ledgerService, documentService, log),
		Audits:   handler.NewAuditHandler(store, auditService, log),
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(logger.Recovery(log), logger.GinMiddleware(log))
	router.Use(cors.New(corsConfig(cfg.CORSAllowOrigins)))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	handler.RegisterRoutes(router.Group("/api/v1"), handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting Document Audit service",
			zap.String("port", cfg.ServerPort),
			zap.String("model", gemini.Model()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	c.ExposeHeaders = []string{"Content-Type"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
