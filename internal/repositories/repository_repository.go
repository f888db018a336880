package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
)

type RepositoryRepository struct {
	db *sql.DB
}

func NewRepositoryRepository(db *sql.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

// GetOrCreate returns the surrogate id for the repository with the given
// github id, inserting a new row when none exists. Repositories are never
// updated after creation; upstream renames are accepted drift.
func (r *RepositoryRepository) GetOrCreate(repo *models.Repository) (string, error) {
	if repo == nil || repo.GithubID == 0 {
		return "", fmt.Errorf("%w: repository github id", ErrMissingField)
	}

	id, err := r.getIDByGithubID(repo.GithubID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", mapError(err)
	}

	record := models.NewRepository(repo.GithubID, repo.Name, repo.FullName)

	query := `INSERT INTO repositories (id, github_id, name, full_name) VALUES (?, ?, ?, ?)`
	_, err = r.db.Exec(query, record.ID, record.GithubID, record.Name, record.FullName)
	if err != nil {
		if isUniqueConstraint(err) {
			// Lost a concurrent insert race for the same github id;
			// the row exists now, so the lookup must succeed.
			id, err = r.getIDByGithubID(repo.GithubID)
			if err != nil {
				return "", mapError(err)
			}
			return id, nil
		}
		return "", mapError(err)
	}

	return record.ID, nil
}

func (r *RepositoryRepository) getIDByGithubID(githubID int64) (string, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM repositories WHERE github_id = ?`, githubID).Scan(&id)
	return id, err
}

func (r *RepositoryRepository) GetByID(id string) (*models.Repository, error) {
	query := `SELECT id, github_id, name, full_name, created_at FROM repositories WHERE id = ?`

	var repo models.Repository
	err := r.db.QueryRow(query, id).Scan(
		&repo.ID, &repo.GithubID, &repo.Name, &repo.FullName, &repo.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &repo, nil
}

// ListWithPRCounts returns all repositories with their pull request counts,
// busiest first
func (r *RepositoryRepository) ListWithPRCounts() ([]*models.RepositorySummary, error) {
	query := `
		SELECT repo.id, repo.name, repo.full_name, COUNT(pr.id) as pr_count
		FROM repositories repo
		LEFT JOIN pull_requests pr ON pr.repository_id = repo.id
		GROUP BY repo.id, repo.name, repo.full_name
		ORDER BY pr_count DESC, repo.full_name ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var summaries []*models.RepositorySummary
	for rows.Next() {
		var summary models.RepositorySummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.FullName, &summary.PullRequestCount); err != nil {
			return nil, mapError(err)
		}
		summaries = append(summaries, &summary)
	}

	return summaries, mapError(rows.Err())
}
