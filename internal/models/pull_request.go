package models

import (
	"time"
)

// Pull request states
const (
	PRStateOpen   = "open"
	PRStateClosed = "closed"
	PRStateMerged = "merged"
)

// PullRequest represents a GitHub pull request tracked for activity
type PullRequest struct {
	ID             string     `json:"id" db:"id"`
	GithubID       int64      `json:"github_id" db:"github_id"`
	RepositoryID   string     `json:"repository_id" db:"repository_id"`
	AuthorID       string     `json:"author_id" db:"author_id"`
	Title          string     `json:"title" db:"title"`
	Number         int        `json:"number" db:"number"`
	State          string     `json:"state" db:"state"`
	HTMLURL        string     `json:"html_url" db:"html_url"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at" db:"closed_at"`
	MergedAt       *time.Time `json:"merged_at" db:"merged_at"`
	IsStale        bool       `json:"is_stale" db:"is_stale"`
	LastActivityAt time.Time  `json:"last_activity_at" db:"last_activity_at"`
}

// StalePullRequest is the joined reporting view of a stale pull request,
// carrying the repository and author display fields needed for alerts.
type StalePullRequest struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Number         int       `json:"number"`
	HTMLURL        string    `json:"html_url"`
	RepositoryName string    `json:"repository_name"`
	AuthorName     string    `json:"author_name"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// DaysInactive returns whole days since the last qualifying activity
func (p *StalePullRequest) DaysInactive(now time.Time) int {
	return int(now.Sub(p.LastActivityAt).Hours() / 24)
}
