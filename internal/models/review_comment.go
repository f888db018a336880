package models

import (
	"time"
)

// ReviewComment represents a review comment on a pull request. Review bodies
// are also stored as comments, linked to their review via ReviewID.
type ReviewComment struct {
	ID              string    `json:"id" db:"id"`
	GithubID        int64     `json:"github_id" db:"github_id"`
	ReviewID        *string   `json:"review_id" db:"review_id"`
	PullRequestID   string    `json:"pull_request_id" db:"pull_request_id"`
	AuthorID        string    `json:"author_id" db:"author_id"`
	Body            string    `json:"body" db:"body"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	ContainsCommand bool      `json:"contains_command" db:"contains_command"`
	CommandType     *string   `json:"command_type" db:"command_type"`
}
