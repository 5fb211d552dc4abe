package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OpenCCS/ccs/internal/approval/router"
	"github.com/OpenCCS/ccs/internal/approval/service"
	"github.com/OpenCCS/ccs/internal/attachments"
	"github.com/OpenCCS/ccs/internal/auth"
	"github.com/OpenCCS/ccs/internal/config"
	"github.com/OpenCCS/ccs/internal/database"
	"github.com/OpenCCS/ccs/internal/hazard"
	"github.com/OpenCCS/ccs/internal/middleware"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"db_sslmode", cfg.Database.SSLMode,
	)

	slog.Info("CORS configuration",
		"allowed_origins", cfg.CORS.AllowedOrigins,
		"allowed_methods", cfg.CORS.AllowedMethods,
		"allowed_headers", cfg.CORS.AllowedHeaders,
		"allow_credentials", cfg.CORS.AllowCredentials,
		"max_age", cfg.CORS.MaxAge,
	)

	slog.Info("rule configuration",
		"same_class_min_distance", cfg.Rules.SameClassMinDistance,
		"default_min_distance", cfg.Rules.DefaultMinDistance,
		"caution_factor", cfg.Rules.CautionFactor,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Migrate schema and seed the GHS reference data
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	if err := database.SeedHazardCategories(db); err != nil {
		log.Fatalf("failed to seed hazard categories: %v", err)
	}

	// Perform health check
	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	// Build the compatibility evaluator from the configured rule fallbacks
	evaluator := hazard.NewEvaluator(hazard.DefaultRuleTable(hazard.TableConfig{
		SameClassMinDistance: cfg.Rules.SameClassMinDistance,
		DefaultMinDistance:   cfg.Rules.DefaultMinDistance,
		CautionFactor:        cfg.Rules.CautionFactor,
	}))

	// Wire repositories and services
	containerRepo := service.NewGormContainerRepository(db)
	categoryRepo := service.NewGormCategoryRepository(db)
	deletionRepo := service.NewGormDeletionRequestRepository(db)

	// Attachment storage
	blobStore, err := attachments.NewBlobStoreFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize blob store: %v", err)
	}
	attachmentService := attachments.NewService(db, blobStore)

	containerService := service.NewContainerService(db, evaluator, containerRepo, categoryRepo)
	deletionService := service.NewDeletionService(db, containerRepo, deletionRepo, attachmentService)

	// Set up HTTP routes
	mux := http.NewServeMux()
	router.NewCatalogRouter(db, evaluator, categoryRepo).Register(mux)
	router.NewContainerRouter(containerService).Register(mux)
	router.NewDeletionRouter(deletionService).Register(mux)
	attachments.NewHTTPHandler(attachmentService).Register(mux)

	// Set up graceful shutdown
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Wrap handler with auth and CORS middleware
	authService := auth.NewAuthService(db)
	handler := middleware.CORS(&cfg.CORS)(auth.Middleware(authService)(mux))

	server := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown of HTTP server
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
