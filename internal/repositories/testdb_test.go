package repositories

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a fresh in-memory database with the real schema applied.
// A single connection keeps the in-memory database alive for the whole test.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=ON")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_initial_schema.sql"))
	require.NoError(t, err)

	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

func seedRepository(t *testing.T, db *sql.DB, githubID int64) string {
	t.Helper()

	id, err := NewRepositoryRepository(db).GetOrCreate(&models.Repository{
		GithubID: githubID,
		Name:     "widgets",
		FullName: "acme/widgets",
	})
	require.NoError(t, err)
	return id
}

func seedUser(t *testing.T, db *sql.DB, githubID int64, username string) string {
	t.Helper()

	id, err := NewUserRepository(db).GetOrCreate(&models.User{
		GithubID: githubID,
		Username: username,
	})
	require.NoError(t, err)
	return id
}

func seedPullRequest(t *testing.T, db *sql.DB, githubID int64, updatedAt time.Time) string {
	t.Helper()

	repoID := seedRepository(t, db, githubID+1000)
	authorID := seedUser(t, db, githubID+2000, "author")

	id, err := NewPullRequestRepository(db).Upsert(&models.PullRequest{
		GithubID:  githubID,
		Title:     "Add feature",
		Number:    42,
		State:     models.PRStateOpen,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}, repoID, authorID)
	require.NoError(t, err)
	return id
}
