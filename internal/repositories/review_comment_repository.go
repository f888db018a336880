package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/google/uuid"
)

type ReviewCommentRepository struct {
	db *sql.DB
}

func NewReviewCommentRepository(db *sql.DB) *ReviewCommentRepository {
	return &ReviewCommentRepository{db: db}
}

// Upsert inserts the comment on first delivery and rewrites body and command
// classification on edits. The review linkage is best-effort and may be nil.
func (r *ReviewCommentRepository) Upsert(comment *models.ReviewComment, pullRequestID, authorID string, reviewID *string) (string, error) {
	if comment == nil || comment.GithubID == 0 {
		return "", fmt.Errorf("%w: comment github id", ErrMissingField)
	}
	if pullRequestID == "" || authorID == "" {
		return "", fmt.Errorf("%w: pull request or author id not resolved", ErrInvalidForeignKey)
	}

	id, err := r.upsert(comment, pullRequestID, authorID, reviewID)
	if err != nil && isUniqueConstraint(err) {
		id, err = r.upsert(comment, pullRequestID, authorID, reviewID)
	}
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

func (r *ReviewCommentRepository) upsert(comment *models.ReviewComment, pullRequestID, authorID string, reviewID *string) (string, error) {
	now := time.Now().UTC()
	createdAt := comment.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := comment.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow(`SELECT id FROM review_comments WHERE github_id = ?`, comment.GithubID).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	if err == nil {
		query := `
			UPDATE review_comments
			SET body = ?, updated_at = ?, contains_command = ?, command_type = ?
			WHERE id = ?
		`
		if _, err = tx.Exec(query, comment.Body, updatedAt,
			comment.ContainsCommand, comment.CommandType, id); err != nil {
			return "", err
		}
		return id, tx.Commit()
	}

	id = uuid.New().String()
	query := `
		INSERT INTO review_comments (
			id, github_id, review_id, pull_request_id, author_id, body,
			created_at, updated_at, contains_command, command_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err = tx.Exec(query, id, comment.GithubID, reviewID, pullRequestID, authorID,
		comment.Body, createdAt, updatedAt, comment.ContainsCommand, comment.CommandType); err != nil {
		return "", err
	}

	return id, tx.Commit()
}

func (r *ReviewCommentRepository) GetByGithubID(githubID int64) (*models.ReviewComment, error) {
	query := `
		SELECT id, github_id, review_id, pull_request_id, author_id, body,
		       created_at, updated_at, contains_command, command_type
		FROM review_comments WHERE github_id = ?
	`

	var comment models.ReviewComment
	err := r.db.QueryRow(query, githubID).Scan(
		&comment.ID, &comment.GithubID, &comment.ReviewID, &comment.PullRequestID,
		&comment.AuthorID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt,
		&comment.ContainsCommand, &comment.CommandType,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &comment, nil
}
