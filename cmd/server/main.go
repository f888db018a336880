package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/handlers"
	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
	"github.com/Harivelu0/slack-pr-automation/internal/services"
	"github.com/Harivelu0/slack-pr-automation/pkg/config"
	"github.com/Harivelu0/slack-pr-automation/pkg/database"
	"github.com/Harivelu0/slack-pr-automation/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	// Initialize logger
	logger.Init()

	// Initialize database
	db, err := database.Init(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.RunSQLScripts(db, cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	repositoryRepo := repositories.NewRepositoryRepository(db)
	userRepo := repositories.NewUserRepository(db)
	pullRequestRepo := repositories.NewPullRequestRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	commentRepo := repositories.NewReviewCommentRepository(db)
	staleHistoryRepo := repositories.NewStaleHistoryRepository(db)
	metricsRepo := repositories.NewMetricsRepository(db)

	// Initialize services
	commandService := services.NewCommandService()
	activityService := services.NewActivityService(pullRequestRepo, staleHistoryRepo)
	notificationService := services.NewNotificationService(cfg.Slack.WebhookURL)
	metricsService := services.NewMetricsService(metricsRepo, repositoryRepo)
	eventService := services.NewEventService(
		repositoryRepo, userRepo, pullRequestRepo, reviewRepo, commentRepo,
		activityService, commandService, notificationService,
	)
	staleChecker := services.NewStaleCheckerService(
		activityService, staleHistoryRepo, notificationService,
		cfg.Stale.ThresholdDays,
		time.Duration(cfg.Stale.CheckIntervalHours)*time.Hour,
	)

	// Initialize router
	router := gin.Default()
	setupRoutes(router, eventService, metricsService, activityService, cfg.GitHub.WebhookSecret)

	// Start the stale PR checker
	staleChecker.Start()
	defer staleChecker.Stop()

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	eventService *services.EventService,
	metricsService *services.MetricsService,
	activityService *services.ActivityService,
	webhookSecret string,
) {
	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(eventService, webhookSecret)
	apiHandler := handlers.NewAPIHandler(metricsService, activityService)
	healthHandler := handlers.NewHealthHandler()

	// Webhook endpoint ("/" kept for deployments that point GitHub at the root)
	router.POST("/webhook", webhookHandler.Handle)
	router.POST("/", webhookHandler.Handle)

	// Dashboard API
	api := router.Group("/api")
	{
		api.GET("/metrics", apiHandler.GetMetrics)
		api.GET("/stale-prs", apiHandler.GetStalePRs)
		api.GET("/repositories", apiHandler.GetRepositories)
		api.GET("/contributors", apiHandler.GetContributors)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
