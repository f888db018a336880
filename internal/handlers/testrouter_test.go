package handlers

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
	"github.com/Harivelu0/slack-pr-automation/internal/services"
	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "test-secret"

// routerEnv is the handler stack wired over a fresh in-memory database, the
// way main wires it, minus the notifier and the background sweep
type routerEnv struct {
	db     *sql.DB
	router *gin.Engine

	eventService    *services.EventService
	activityService *services.ActivityService
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=ON")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_initial_schema.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	repositoryRepo := repositories.NewRepositoryRepository(db)
	userRepo := repositories.NewUserRepository(db)
	pullRequestRepo := repositories.NewPullRequestRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	commentRepo := repositories.NewReviewCommentRepository(db)
	staleHistoryRepo := repositories.NewStaleHistoryRepository(db)
	metricsRepo := repositories.NewMetricsRepository(db)

	activityService := services.NewActivityService(pullRequestRepo, staleHistoryRepo)
	metricsService := services.NewMetricsService(metricsRepo, repositoryRepo)
	eventService := services.NewEventService(
		repositoryRepo, userRepo, pullRequestRepo, reviewRepo, commentRepo,
		activityService, services.NewCommandService(), nil,
	)

	webhookHandler := NewWebhookHandler(eventService, testWebhookSecret)
	apiHandler := NewAPIHandler(metricsService, activityService)
	healthHandler := NewHealthHandler()

	router := gin.New()
	router.POST("/webhook", webhookHandler.Handle)
	api := router.Group("/api")
	{
		api.GET("/metrics", apiHandler.GetMetrics)
		api.GET("/stale-prs", apiHandler.GetStalePRs)
		api.GET("/repositories", apiHandler.GetRepositories)
		api.GET("/contributors", apiHandler.GetContributors)
	}
	router.GET("/health", healthHandler.HealthCheck)

	return &routerEnv{
		db:              db,
		router:          router,
		eventService:    eventService,
		activityService: activityService,
	}
}
