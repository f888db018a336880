package models

import (
	"time"
)

// Review states as delivered by GitHub, stored lowercased
const (
	ReviewStateApproved         = "approved"
	ReviewStateChangesRequested = "changes_requested"
	ReviewStateCommented        = "commented"
)

// Review represents a GitHub pull request review
type Review struct {
	ID            string    `json:"id" db:"id"`
	GithubID      int64     `json:"github_id" db:"github_id"`
	PullRequestID string    `json:"pull_request_id" db:"pull_request_id"`
	ReviewerID    string    `json:"reviewer_id" db:"reviewer_id"`
	State         string    `json:"state" db:"state"`
	SubmittedAt   time.Time `json:"submitted_at" db:"submitted_at"`
}
