package services

import (
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
)

// ActivityService owns the last-activity/staleness state machine of open
// pull requests: reviews, comments, and pull request edits refresh activity
// and clear staleness; a periodic sweep marks inactive pull requests stale.
type ActivityService struct {
	pullRequestRepo  *repositories.PullRequestRepository
	staleHistoryRepo *repositories.StaleHistoryRepository
}

func NewActivityService(
	pullRequestRepo *repositories.PullRequestRepository,
	staleHistoryRepo *repositories.StaleHistoryRepository,
) *ActivityService {
	return &ActivityService{
		pullRequestRepo:  pullRequestRepo,
		staleHistoryRepo: staleHistoryRepo,
	}
}

// RefreshActivity records qualifying activity on an open pull request,
// advancing last_activity_at (never backwards) and clearing the stale flag.
// Any open stale-history period for the pull request is closed.
func (s *ActivityService) RefreshActivity(pullRequestID string, activityAt time.Time) error {
	if err := s.pullRequestRepo.RefreshActivity(pullRequestID, activityAt); err != nil {
		return err
	}
	return s.staleHistoryRepo.MarkActive(pullRequestID, activityAt)
}

// DetectStalePRs marks open pull requests with no activity for the given
// number of days as stale and returns only the newly transitioned ids, so
// the notifier alerts exactly once per transition.
func (s *ActivityService) DetectStalePRs(thresholdDays int) ([]string, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -thresholdDays)
	return s.pullRequestRepo.DetectStale(cutoff)
}

// ListStalePRs returns all currently stale pull requests with display
// fields, most stale first
func (s *ActivityService) ListStalePRs() ([]*models.StalePullRequest, error) {
	return s.pullRequestRepo.ListStale()
}
