package handlers

import (
	"net/http"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/Harivelu0/slack-pr-automation/internal/services"
	"github.com/Harivelu0/slack-pr-automation/pkg/logger"
	"github.com/gin-gonic/gin"
)

// APIHandler serves the read-only dashboard endpoints
type APIHandler struct {
	metricsService  *services.MetricsService
	activityService *services.ActivityService
}

func NewAPIHandler(metricsService *services.MetricsService, activityService *services.ActivityService) *APIHandler {
	return &APIHandler{
		metricsService:  metricsService,
		activityService: activityService,
	}
}

// GetMetrics handles GET /api/metrics
func (h *APIHandler) GetMetrics(c *gin.Context) {
	metrics, err := h.metricsService.GetPRMetrics()
	if err != nil {
		logger.WithError(err).Errorf("Failed to load PR metrics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load metrics"})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetStalePRs handles GET /api/stale-prs
func (h *APIHandler) GetStalePRs(c *gin.Context) {
	stale, err := h.activityService.ListStalePRs()
	if err != nil {
		logger.WithError(err).Errorf("Failed to list stale pull requests")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stale pull requests"})
		return
	}

	if stale == nil {
		stale = []*models.StalePullRequest{}
	}
	c.JSON(http.StatusOK, stale)
}

// GetRepositories handles GET /api/repositories
func (h *APIHandler) GetRepositories(c *gin.Context) {
	repositories, err := h.metricsService.GetRepositories()
	if err != nil {
		logger.WithError(err).Errorf("Failed to list repositories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load repositories"})
		return
	}

	if repositories == nil {
		repositories = []*models.RepositorySummary{}
	}
	c.JSON(http.StatusOK, repositories)
}

// GetContributors handles GET /api/contributors
func (h *APIHandler) GetContributors(c *gin.Context) {
	contributors, err := h.metricsService.GetContributors()
	if err != nil {
		logger.WithError(err).Errorf("Failed to list contributors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contributors"})
		return
	}

	if contributors == nil {
		contributors = []*models.Contributor{}
	}
	c.JSON(http.StatusOK, contributors)
}
