package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a GitHub user, bot, or organization
type User struct {
	ID        string    `json:"id" db:"id"`
	GithubID  int64     `json:"github_id" db:"github_id"`
	Username  string    `json:"username" db:"username"`
	AvatarURL string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewUser creates a new User with a generated UUID
func NewUser(githubID int64, username, avatarURL string) *User {
	if username == "" {
		username = "unknown"
	}
	return &User{
		ID:        uuid.New().String(),
		GithubID:  githubID,
		Username:  username,
		AvatarURL: avatarURL,
	}
}
