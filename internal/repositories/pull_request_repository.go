package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/google/uuid"
)

type PullRequestRepository struct {
	db *sql.DB
}

func NewPullRequestRepository(db *sql.DB) *PullRequestRepository {
	return &PullRequestRepository{db: db}
}

// Upsert inserts the pull request on first delivery and updates it in place
// on every re-delivery. Both foreign keys must already be resolved by the
// caller. On insert, last_activity_at starts at updated_at; on update it is
// advanced to the new updated_at and is_stale is cleared, because any
// pull-request-level event counts as activity.
func (r *PullRequestRepository) Upsert(pr *models.PullRequest, repositoryID, authorID string) (string, error) {
	if pr == nil || pr.GithubID == 0 {
		return "", fmt.Errorf("%w: pull request github id", ErrMissingField)
	}
	if repositoryID == "" || authorID == "" {
		return "", fmt.Errorf("%w: repository or author id not resolved", ErrInvalidForeignKey)
	}

	id, err := r.upsert(pr, repositoryID, authorID)
	if err != nil && isUniqueConstraint(err) {
		// Lost a concurrent insert race; the row exists now and the
		// second pass takes the update branch.
		id, err = r.upsert(pr, repositoryID, authorID)
	}
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

func (r *PullRequestRepository) upsert(pr *models.PullRequest, repositoryID, authorID string) (string, error) {
	title := pr.Title
	if title == "" {
		title = "Untitled PR"
	}
	state := pr.State
	if state == "" {
		state = models.PRStateOpen
	}
	now := time.Now().UTC()
	createdAt := pr.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := pr.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow(`SELECT id FROM pull_requests WHERE github_id = ?`, pr.GithubID).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	if err == nil {
		query := `
			UPDATE pull_requests SET
				title = ?, number = ?, state = ?, updated_at = ?,
				closed_at = ?, merged_at = ?, last_activity_at = ?, is_stale = 0
			WHERE id = ?
		`
		if _, err = tx.Exec(query, title, pr.Number, state, updatedAt,
			pr.ClosedAt, pr.MergedAt, updatedAt, id); err != nil {
			return "", err
		}
		return id, tx.Commit()
	}

	id = uuid.New().String()
	query := `
		INSERT INTO pull_requests (
			id, github_id, repository_id, author_id, title, number, state,
			html_url, created_at, updated_at, closed_at, merged_at,
			is_stale, last_activity_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
	`
	if _, err = tx.Exec(query, id, pr.GithubID, repositoryID, authorID, title,
		pr.Number, state, pr.HTMLURL, createdAt, updatedAt,
		pr.ClosedAt, pr.MergedAt, updatedAt); err != nil {
		return "", err
	}

	return id, tx.Commit()
}

func (r *PullRequestRepository) GetByID(id string) (*models.PullRequest, error) {
	return r.getOne(`SELECT `+pullRequestColumns+` FROM pull_requests WHERE id = ?`, id)
}

func (r *PullRequestRepository) GetByGithubID(githubID int64) (*models.PullRequest, error) {
	return r.getOne(`SELECT `+pullRequestColumns+` FROM pull_requests WHERE github_id = ?`, githubID)
}

const pullRequestColumns = `id, github_id, repository_id, author_id, title, number, state,
	html_url, created_at, updated_at, closed_at, merged_at, is_stale, last_activity_at`

func (r *PullRequestRepository) getOne(query string, arg interface{}) (*models.PullRequest, error) {
	var pr models.PullRequest
	err := r.db.QueryRow(query, arg).Scan(
		&pr.ID, &pr.GithubID, &pr.RepositoryID, &pr.AuthorID, &pr.Title, &pr.Number,
		&pr.State, &pr.HTMLURL, &pr.CreatedAt, &pr.UpdatedAt, &pr.ClosedAt,
		&pr.MergedAt, &pr.IsStale, &pr.LastActivityAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &pr, nil
}

// RefreshActivity advances last_activity_at to the given timestamp (never
// backwards) and clears the stale flag. Only open pull requests qualify.
func (r *PullRequestRepository) RefreshActivity(id string, activityAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	var state string
	var lastActivityAt time.Time
	err = tx.QueryRow(`SELECT state, last_activity_at FROM pull_requests WHERE id = ?`, id).
		Scan(&state, &lastActivityAt)
	if err != nil {
		return mapError(err)
	}

	if state != models.PRStateOpen {
		return nil
	}

	if activityAt.Before(lastActivityAt) {
		activityAt = lastActivityAt
	}

	query := `UPDATE pull_requests SET last_activity_at = ?, is_stale = 0 WHERE id = ?`
	if _, err = tx.Exec(query, activityAt, id); err != nil {
		return mapError(err)
	}

	return mapError(tx.Commit())
}

// DetectStale marks every open, non-stale pull request whose last activity
// predates the cutoff, appends one stale_pr_history row per transition, and
// returns only the newly transitioned ids. Already-stale rows are excluded,
// so repeated sweeps converge to an empty result.
func (r *PullRequestRepository) DetectStale(cutoff time.Time) ([]string, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback()

	query := `
		SELECT id FROM pull_requests
		WHERE state = 'open'
		AND is_stale = 0
		AND datetime(last_activity_at) < datetime(?)
		AND closed_at IS NULL AND merged_at IS NULL
	`
	rows, err := tx.Query(query, cutoff)
	if err != nil {
		return nil, mapError(err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, mapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, mapError(err)
	}
	rows.Close()

	markedAt := time.Now().UTC()
	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE pull_requests SET is_stale = 1 WHERE id = ?`, id); err != nil {
			return nil, mapError(err)
		}
		historyQuery := `
			INSERT INTO stale_pr_history (id, pull_request_id, marked_stale_at, notification_sent)
			VALUES (?, ?, ?, 0)
		`
		if _, err := tx.Exec(historyQuery, uuid.New().String(), id, markedAt); err != nil {
			return nil, mapError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}

	return ids, nil
}

// ListStale returns all currently stale open pull requests joined with
// repository and author display fields, most stale first
func (r *PullRequestRepository) ListStale() ([]*models.StalePullRequest, error) {
	query := `
		SELECT pr.id, pr.title, pr.number, pr.html_url, repo.full_name, u.username,
		       pr.created_at, pr.last_activity_at
		FROM pull_requests pr
		JOIN repositories repo ON pr.repository_id = repo.id
		JOIN users u ON pr.author_id = u.id
		WHERE pr.is_stale = 1
		AND pr.state = 'open'
		ORDER BY pr.last_activity_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var stale []*models.StalePullRequest
	for rows.Next() {
		var pr models.StalePullRequest
		err := rows.Scan(
			&pr.ID, &pr.Title, &pr.Number, &pr.HTMLURL, &pr.RepositoryName,
			&pr.AuthorName, &pr.CreatedAt, &pr.LastActivityAt,
		)
		if err != nil {
			return nil, mapError(err)
		}
		stale = append(stale, &pr)
	}

	return stale, mapError(rows.Err())
}
