package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/google/uuid"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert inserts the review on first delivery; on re-delivery only the state
// is mutable. The caller refreshes the parent pull request's activity.
func (r *ReviewRepository) Upsert(review *models.Review, pullRequestID, reviewerID string) (string, error) {
	if review == nil || review.GithubID == 0 {
		return "", fmt.Errorf("%w: review github id", ErrMissingField)
	}
	if pullRequestID == "" || reviewerID == "" {
		return "", fmt.Errorf("%w: pull request or reviewer id not resolved", ErrInvalidForeignKey)
	}

	id, err := r.upsert(review, pullRequestID, reviewerID)
	if err != nil && isUniqueConstraint(err) {
		id, err = r.upsert(review, pullRequestID, reviewerID)
	}
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

func (r *ReviewRepository) upsert(review *models.Review, pullRequestID, reviewerID string) (string, error) {
	state := review.State
	if state == "" {
		state = models.ReviewStateCommented
	}
	submittedAt := review.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow(`SELECT id FROM pr_reviews WHERE github_id = ?`, review.GithubID).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	if err == nil {
		if _, err = tx.Exec(`UPDATE pr_reviews SET state = ? WHERE id = ?`, state, id); err != nil {
			return "", err
		}
		return id, tx.Commit()
	}

	id = uuid.New().String()
	query := `
		INSERT INTO pr_reviews (id, github_id, pull_request_id, reviewer_id, state, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err = tx.Exec(query, id, review.GithubID, pullRequestID, reviewerID, state, submittedAt); err != nil {
		return "", err
	}

	return id, tx.Commit()
}

func (r *ReviewRepository) GetByGithubID(githubID int64) (*models.Review, error) {
	query := `
		SELECT id, github_id, pull_request_id, reviewer_id, state, submitted_at
		FROM pr_reviews WHERE github_id = ?
	`

	var review models.Review
	err := r.db.QueryRow(query, githubID).Scan(
		&review.ID, &review.GithubID, &review.PullRequestID, &review.ReviewerID,
		&review.State, &review.SubmittedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &review, nil
}
