package repositories

import (
	"database/sql"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
)

// MetricsRepository serves the read-only aggregate queries behind the
// dashboard API. No state mutation.
type MetricsRepository struct {
	db *sql.DB
}

func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// AuthorCounts returns pull request counts per author, most prolific first
func (r *MetricsRepository) AuthorCounts() ([]models.UserCount, error) {
	query := `
		SELECT u.username, COUNT(pr.id) as pr_count
		FROM users u
		JOIN pull_requests pr ON u.id = pr.author_id
		GROUP BY u.username
		ORDER BY pr_count DESC
	`
	return r.userCounts(query)
}

// ReviewerCounts returns review counts per reviewer
func (r *MetricsRepository) ReviewerCounts() ([]models.UserCount, error) {
	query := `
		SELECT u.username, COUNT(rv.id) as review_count
		FROM users u
		JOIN pr_reviews rv ON u.id = rv.reviewer_id
		GROUP BY u.username
		ORDER BY review_count DESC
	`
	return r.userCounts(query)
}

// CommandUserCounts returns counts of command-bearing comments per author
func (r *MetricsRepository) CommandUserCounts() ([]models.UserCount, error) {
	query := `
		SELECT u.username, COUNT(rc.id) as command_count
		FROM users u
		JOIN review_comments rc ON u.id = rc.author_id
		WHERE rc.contains_command = 1
		GROUP BY u.username
		ORDER BY command_count DESC
	`
	return r.userCounts(query)
}

func (r *MetricsRepository) userCounts(query string) ([]models.UserCount, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var counts []models.UserCount
	for rows.Next() {
		var count models.UserCount
		if err := rows.Scan(&count.Username, &count.Count); err != nil {
			return nil, mapError(err)
		}
		counts = append(counts, count)
	}

	return counts, mapError(rows.Err())
}

// StalePRCount returns the number of currently stale open pull requests
func (r *MetricsRepository) StalePRCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(id) FROM pull_requests WHERE is_stale = 1 AND state = 'open'`).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// Contributors aggregates per-user activity across pull requests, reviews,
// and comments
func (r *MetricsRepository) Contributors() ([]*models.Contributor, error) {
	query := `
		SELECT u.username, u.avatar_url,
		       (SELECT COUNT(id) FROM pull_requests WHERE author_id = u.id) as pr_count,
		       (SELECT COUNT(id) FROM pr_reviews WHERE reviewer_id = u.id) as review_count,
		       (SELECT COUNT(id) FROM review_comments WHERE author_id = u.id) as comment_count
		FROM users u
		ORDER BY pr_count DESC, review_count DESC, u.username ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var contributors []*models.Contributor
	for rows.Next() {
		var c models.Contributor
		if err := rows.Scan(&c.Username, &c.AvatarURL, &c.PullRequests, &c.Reviews, &c.Comments); err != nil {
			return nil, mapError(err)
		}
		contributors = append(contributors, &c)
	}

	return contributors, mapError(rows.Err())
}
