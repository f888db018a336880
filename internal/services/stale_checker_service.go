package services

import (
	"sync"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
	"github.com/Harivelu0/slack-pr-automation/pkg/logger"
)

// StaleCheckerService runs the stale sweep on a fixed schedule. Sweeps are
// single-flight: if a run is still in progress when the next trigger fires,
// the trigger is skipped rather than queued.
type StaleCheckerService struct {
	activityService  *ActivityService
	staleHistoryRepo *repositories.StaleHistoryRepository
	notifier         Notifier

	thresholdDays int
	interval      time.Duration

	running  sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewStaleCheckerService(
	activityService *ActivityService,
	staleHistoryRepo *repositories.StaleHistoryRepository,
	notifier Notifier,
	thresholdDays int,
	interval time.Duration,
) *StaleCheckerService {
	return &StaleCheckerService{
		activityService:  activityService,
		staleHistoryRepo: staleHistoryRepo,
		notifier:         notifier,
		thresholdDays:    thresholdDays,
		interval:         interval,
		stopChan:         make(chan struct{}),
	}
}

// Start launches the periodic sweep loop
func (s *StaleCheckerService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		logger.Infof("Stale PR checker started (threshold %d days, every %s)", s.thresholdDays, s.interval)

		for {
			select {
			case <-ticker.C:
				if _, err := s.RunOnce(); err != nil {
					logger.WithError(err).Errorf("Stale PR sweep failed")
				}
			case <-s.stopChan:
				logger.Infof("Stale PR checker stopped")
				return
			}
		}
	}()
}

// Stop terminates the sweep loop
func (s *StaleCheckerService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// RunOnce performs one sweep: detect newly stale pull requests, alert the
// notifier, and mark the history rows as notified. Notification failures are
// logged and swallowed; the detection result stands either way.
func (s *StaleCheckerService) RunOnce() ([]string, error) {
	if !s.running.TryLock() {
		logger.Warnf("Stale PR sweep already in progress, skipping run")
		return nil, nil
	}
	defer s.running.Unlock()

	newlyStale, err := s.activityService.DetectStalePRs(s.thresholdDays)
	if err != nil {
		return nil, err
	}

	if len(newlyStale) == 0 {
		logger.Debugf("Stale PR sweep found no new stale pull requests")
		return nil, nil
	}

	logger.Infof("Stale PR sweep marked %d pull requests stale", len(newlyStale))

	if s.notifier == nil {
		return newlyStale, nil
	}

	stale, err := s.activityService.ListStalePRs()
	if err != nil {
		logger.WithError(err).Warnf("Failed to list stale pull requests for notification")
		return newlyStale, nil
	}

	if err := s.notifier.NotifyStalePRs(stale, s.thresholdDays); err != nil {
		logger.WithError(err).Warnf("Failed to send stale PR notification")
		return newlyStale, nil
	}

	if err := s.staleHistoryRepo.MarkNotified(newlyStale); err != nil {
		logger.WithError(err).Warnf("Failed to mark stale history rows as notified")
	}

	return newlyStale, nil
}
