package models

import (
	"time"
)

// StaleHistory is one row of the append-only log of stale transitions.
// A pull request that goes stale, becomes active, and goes stale again
// produces two rows.
type StaleHistory struct {
	ID               string     `json:"id" db:"id"`
	PullRequestID    string     `json:"pull_request_id" db:"pull_request_id"`
	MarkedStaleAt    time.Time  `json:"marked_stale_at" db:"marked_stale_at"`
	MarkedActiveAt   *time.Time `json:"marked_active_at" db:"marked_active_at"`
	NotificationSent bool       `json:"notification_sent" db:"notification_sent"`
}
