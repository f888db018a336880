package services

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// testEnv wires the full service stack over a fresh in-memory database
type testEnv struct {
	db *sql.DB

	repositoryRepo   *repositories.RepositoryRepository
	userRepo         *repositories.UserRepository
	pullRequestRepo  *repositories.PullRequestRepository
	reviewRepo       *repositories.ReviewRepository
	commentRepo      *repositories.ReviewCommentRepository
	staleHistoryRepo *repositories.StaleHistoryRepository

	activityService *ActivityService
	eventService    *EventService
	notifier        *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=ON")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_initial_schema.sql"))
	require.NoError(t, err)

	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:               db,
		repositoryRepo:   repositories.NewRepositoryRepository(db),
		userRepo:         repositories.NewUserRepository(db),
		pullRequestRepo:  repositories.NewPullRequestRepository(db),
		reviewRepo:       repositories.NewReviewRepository(db),
		commentRepo:      repositories.NewReviewCommentRepository(db),
		staleHistoryRepo: repositories.NewStaleHistoryRepository(db),
		notifier:         &fakeNotifier{},
	}

	env.activityService = NewActivityService(env.pullRequestRepo, env.staleHistoryRepo)
	env.eventService = NewEventService(
		env.repositoryRepo,
		env.userRepo,
		env.pullRequestRepo,
		env.reviewRepo,
		env.commentRepo,
		env.activityService,
		NewCommandService(),
		env.notifier,
	)

	return env
}

type staleCall struct {
	count         int
	thresholdDays int
}

// fakeNotifier records outbound notifications instead of delivering them
type fakeNotifier struct {
	mu sync.Mutex

	err error

	newPullRequests  []string
	changesRequested []string
	staleCalls       []staleCall
}

func (f *fakeNotifier) NotifyNewPullRequest(title, body, repoFullName, author, htmlURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newPullRequests = append(f.newPullRequests, title)
	return f.err
}

func (f *fakeNotifier) NotifyChangesRequested(title, reviewBody, repoFullName, prAuthor, reviewer, reviewURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changesRequested = append(f.changesRequested, reviewer)
	return f.err
}

func (f *fakeNotifier) NotifyStalePRs(stale []*models.StalePullRequest, thresholdDays int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staleCalls = append(f.staleCalls, staleCall{count: len(stale), thresholdDays: thresholdDays})
	return f.err
}
