package models

import (
	"time"

	"github.com/google/uuid"
)

// Repository represents a GitHub repository referenced by a webhook event
type Repository struct {
	ID        string    `json:"id" db:"id"`
	GithubID  int64     `json:"github_id" db:"github_id"`
	Name      string    `json:"name" db:"name"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewRepository creates a new Repository with a generated UUID.
// Name and full name fall back to placeholders when the payload omits them.
func NewRepository(githubID int64, name, fullName string) *Repository {
	if name == "" {
		name = "unknown"
	}
	if fullName == "" {
		fullName = "unknown/unknown"
	}
	return &Repository{
		ID:       uuid.New().String(),
		GithubID: githubID,
		Name:     name,
		FullName: fullName,
	}
}
