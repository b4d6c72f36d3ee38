package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chart-analyze-service/config"
	"chart-analyze-service/database"
	"chart-analyze-service/gemini"
	"chart-analyze-service/handlers"
	"chart-analyze-service/llm"
	"chart-analyze-service/metrics"
	"chart-analyze-service/middleware"
	"chart-analyze-service/openai"
	"chart-analyze-service/service"
	"chart-analyze-service/stubllm"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown LOG_LEVEL %q, keeping the default level", cfg.LogLevel)
	}

	// Pick the LLM provider
	var llmClient llm.Client
	switch cfg.LLMProvider {
	case "stub":
		llmClient = stubllm.NewClient()
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required")
		}
		llmClient = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RequestTimeout)
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required")
		}
		llmClient = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.MaxTokens, cfg.Temperature, cfg.RequestTimeout)
	}

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize service
	analysisService := service.NewService(cfg, db, llmClient)
	if err := analysisService.Start(); err != nil {
		log.Fatalf("Failed to start analysis service: %v", err)
	}

	// Initialize handlers and metrics
	h := handlers.NewHandlers(analysisService)
	metrics.Register()

	// Setup HTTP server
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	if cfg.APIAuthToken != "" {
		api.Use(middleware.AuthMiddleware(cfg.APIAuthToken))
	}
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/analyze", h.AnalyzeChart)
		api.GET("/history", h.GetHistory)
		api.GET("/analysis/:id", h.GetAnalysis)
		api.GET("/analysis/:id/technical", h.GetTechnicalAnalysis)
		api.DELETE("/analysis/:id", h.DeleteAnalysis)
		api.GET("/stats", h.GetStats)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
