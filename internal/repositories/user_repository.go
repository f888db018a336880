package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the surrogate id for the user with the given github
// id, inserting a new row when none exists. Like repositories, user rows are
// immutable after creation.
func (r *UserRepository) GetOrCreate(user *models.User) (string, error) {
	if user == nil || user.GithubID == 0 {
		return "", fmt.Errorf("%w: user github id", ErrMissingField)
	}

	id, err := r.getIDByGithubID(user.GithubID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", mapError(err)
	}

	record := models.NewUser(user.GithubID, user.Username, user.AvatarURL)

	query := `INSERT INTO users (id, github_id, username, avatar_url) VALUES (?, ?, ?, ?)`
	_, err = r.db.Exec(query, record.ID, record.GithubID, record.Username, record.AvatarURL)
	if err != nil {
		if isUniqueConstraint(err) {
			id, err = r.getIDByGithubID(user.GithubID)
			if err != nil {
				return "", mapError(err)
			}
			return id, nil
		}
		return "", mapError(err)
	}

	return record.ID, nil
}

func (r *UserRepository) getIDByGithubID(githubID int64) (string, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM users WHERE github_id = ?`, githubID).Scan(&id)
	return id, err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	query := `SELECT id, github_id, username, avatar_url, created_at FROM users WHERE id = ?`

	var user models.User
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.GithubID, &user.Username, &user.AvatarURL, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &user, nil
}
