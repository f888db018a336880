package services

import (
	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
)

// MetricsService assembles the read-only aggregates behind the dashboard API
type MetricsService struct {
	metricsRepo    *repositories.MetricsRepository
	repositoryRepo *repositories.RepositoryRepository
}

func NewMetricsService(
	metricsRepo *repositories.MetricsRepository,
	repositoryRepo *repositories.RepositoryRepository,
) *MetricsService {
	return &MetricsService{
		metricsRepo:    metricsRepo,
		repositoryRepo: repositoryRepo,
	}
}

func (s *MetricsService) GetPRMetrics() (*models.PRMetrics, error) {
	authors, err := s.metricsRepo.AuthorCounts()
	if err != nil {
		return nil, err
	}

	reviewers, err := s.metricsRepo.ReviewerCounts()
	if err != nil {
		return nil, err
	}

	commandUsers, err := s.metricsRepo.CommandUserCounts()
	if err != nil {
		return nil, err
	}

	staleCount, err := s.metricsRepo.StalePRCount()
	if err != nil {
		return nil, err
	}

	metrics := &models.PRMetrics{
		PRAuthors:       authors,
		ActiveReviewers: reviewers,
		CommandUsers:    commandUsers,
		StalePRCount:    staleCount,
	}
	if metrics.PRAuthors == nil {
		metrics.PRAuthors = []models.UserCount{}
	}
	if metrics.ActiveReviewers == nil {
		metrics.ActiveReviewers = []models.UserCount{}
	}
	if metrics.CommandUsers == nil {
		metrics.CommandUsers = []models.UserCount{}
	}

	return metrics, nil
}

func (s *MetricsService) GetRepositories() ([]*models.RepositorySummary, error) {
	return s.repositoryRepo.ListWithPRCounts()
}

func (s *MetricsService) GetContributors() ([]*models.Contributor, error) {
	return s.metricsRepo.Contributors()
}
