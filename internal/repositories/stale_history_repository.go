package repositories

import (
	"database/sql"
	"strings"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
)

type StaleHistoryRepository struct {
	db *sql.DB
}

func NewStaleHistoryRepository(db *sql.DB) *StaleHistoryRepository {
	return &StaleHistoryRepository{db: db}
}

// GetByPullRequestID returns the stale transition log for a pull request,
// oldest first
func (r *StaleHistoryRepository) GetByPullRequestID(pullRequestID string) ([]*models.StaleHistory, error) {
	query := `
		SELECT id, pull_request_id, marked_stale_at, marked_active_at, notification_sent
		FROM stale_pr_history
		WHERE pull_request_id = ?
		ORDER BY marked_stale_at ASC
	`

	rows, err := r.db.Query(query, pullRequestID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var history []*models.StaleHistory
	for rows.Next() {
		var entry models.StaleHistory
		err := rows.Scan(
			&entry.ID, &entry.PullRequestID, &entry.MarkedStaleAt,
			&entry.MarkedActiveAt, &entry.NotificationSent,
		)
		if err != nil {
			return nil, mapError(err)
		}
		history = append(history, &entry)
	}

	return history, mapError(rows.Err())
}

// MarkActive closes the open stale period for a pull request when new
// activity arrives. Rows already closed are left untouched, keeping the log
// append-only.
func (r *StaleHistoryRepository) MarkActive(pullRequestID string, activeAt time.Time) error {
	query := `
		UPDATE stale_pr_history
		SET marked_active_at = ?
		WHERE pull_request_id = ? AND marked_active_at IS NULL
	`
	_, err := r.db.Exec(query, activeAt, pullRequestID)
	return mapError(err)
}

// MarkNotified records that the stale alert for the current open period of
// each pull request was delivered
func (r *StaleHistoryRepository) MarkNotified(pullRequestIDs []string) error {
	if len(pullRequestIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(pullRequestIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := `
		UPDATE stale_pr_history
		SET notification_sent = 1
		WHERE marked_active_at IS NULL
		AND pull_request_id IN (` + placeholders + `)`

	args := make([]interface{}, len(pullRequestIDs))
	for i, id := range pullRequestIDs {
		args[i] = id
	}

	_, err := r.db.Exec(query, args...)
	return mapError(err)
}
