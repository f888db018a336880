package services

import (
	"testing"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepository() *github.Repository {
	return &github.Repository{
		ID:       github.Int64(100),
		Name:     github.String("widgets"),
		FullName: github.String("acme/widgets"),
	}
}

func testUser(id int64, login string) *github.User {
	return &github.User{
		ID:        github.Int64(id),
		Login:     github.String(login),
		AvatarURL: github.String("https://avatars.example.com/" + login),
	}
}

func testPullRequest(updatedAt time.Time) *github.PullRequest {
	return &github.PullRequest{
		ID:        github.Int64(300),
		Number:    github.Int(7),
		Title:     github.String("Add feature"),
		Body:      github.String("Implements the feature"),
		State:     github.String("open"),
		HTMLURL:   github.String("https://github.com/acme/widgets/pull/7"),
		User:      testUser(200, "octocat"),
		CreatedAt: &github.Timestamp{Time: updatedAt},
		UpdatedAt: &github.Timestamp{Time: updatedAt},
	}
}

func TestProcessPullRequestEvent(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("persists repository, author, and pull request", func(t *testing.T) {
		env := newTestEnv(t)

		event := &github.PullRequestEvent{
			Action:      github.String("opened"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(t0),
		}

		prID, err := env.eventService.ProcessPullRequestEvent(event)
		require.NoError(t, err)

		stored, err := env.pullRequestRepo.GetByID(prID)
		require.NoError(t, err)
		assert.Equal(t, "Add feature", stored.Title)
		assert.Equal(t, models.PRStateOpen, stored.State)
		assert.True(t, stored.LastActivityAt.Equal(t0))
	})

	t.Run("redelivery converges on the same row", func(t *testing.T) {
		env := newTestEnv(t)

		event := &github.PullRequestEvent{
			Action:      github.String("opened"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(t0),
		}

		first, err := env.eventService.ProcessPullRequestEvent(event)
		require.NoError(t, err)
		second, err := env.eventService.ProcessPullRequestEvent(event)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		var count int
		require.NoError(t, env.db.QueryRow(`SELECT COUNT(id) FROM pull_requests`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("notifies on opened only", func(t *testing.T) {
		env := newTestEnv(t)

		opened := &github.PullRequestEvent{
			Action:      github.String("opened"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(t0),
		}
		_, err := env.eventService.ProcessPullRequestEvent(opened)
		require.NoError(t, err)

		synchronize := &github.PullRequestEvent{
			Action:      github.String("synchronize"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(t0.Add(time.Hour)),
		}
		_, err = env.eventService.ProcessPullRequestEvent(synchronize)
		require.NoError(t, err)

		assert.Equal(t, []string{"Add feature"}, env.notifier.newPullRequests)
	})

	t.Run("notification failure does not fail the event", func(t *testing.T) {
		env := newTestEnv(t)
		env.notifier.err = assert.AnError

		event := &github.PullRequestEvent{
			Action:      github.String("opened"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(t0),
		}

		prID, err := env.eventService.ProcessPullRequestEvent(event)
		require.NoError(t, err)

		_, err = env.pullRequestRepo.GetByID(prID)
		require.NoError(t, err)
	})

	t.Run("edit on a stale pull request closes the open history period", func(t *testing.T) {
		env := newTestEnv(t)

		old := time.Now().UTC().AddDate(0, 0, -10)
		pr := testPullRequest(old)

		_, err := env.eventService.ProcessPullRequestEvent(&github.PullRequestEvent{
			Action:      github.String("opened"),
			Repo:        testRepository(),
			PullRequest: pr,
		})
		require.NoError(t, err)

		ids, err := env.activityService.DetectStalePRs(7)
		require.NoError(t, err)
		require.Len(t, ids, 1)

		edited := testPullRequest(old)
		edited.Title = github.String("Add feature (revised)")
		edited.UpdatedAt = &github.Timestamp{Time: time.Now().UTC()}

		_, err = env.eventService.ProcessPullRequestEvent(&github.PullRequestEvent{
			Action:      github.String("edited"),
			Repo:        testRepository(),
			PullRequest: edited,
		})
		require.NoError(t, err)

		stored, err := env.pullRequestRepo.GetByID(ids[0])
		require.NoError(t, err)
		assert.False(t, stored.IsStale)

		history, err := env.staleHistoryRepo.GetByPullRequestID(ids[0])
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.NotNil(t, history[0].MarkedActiveAt)
	})

	t.Run("closed periods are not cross-marked by later notifications", func(t *testing.T) {
		env := newTestEnv(t)

		old := time.Now().UTC().AddDate(0, 0, -10)
		_, err := env.eventService.ProcessPullRequestEvent(&github.PullRequestEvent{
			Action:      github.String("opened"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(old),
		})
		require.NoError(t, err)

		ids, err := env.activityService.DetectStalePRs(7)
		require.NoError(t, err)
		require.Len(t, ids, 1)

		// Activity closes the first period
		edited := testPullRequest(old)
		edited.UpdatedAt = &github.Timestamp{Time: time.Now().UTC()}
		_, err = env.eventService.ProcessPullRequestEvent(&github.PullRequestEvent{
			Action:      github.String("edited"),
			Repo:        testRepository(),
			PullRequest: edited,
		})
		require.NoError(t, err)

		// The PR goes quiet again and transitions a second time
		_, err = env.db.Exec(`UPDATE pull_requests SET last_activity_at = ?`, time.Now().UTC().AddDate(0, 0, -10))
		require.NoError(t, err)

		again, err := env.activityService.DetectStalePRs(7)
		require.NoError(t, err)
		require.Len(t, again, 1)

		require.NoError(t, env.staleHistoryRepo.MarkNotified(again))

		history, err := env.staleHistoryRepo.GetByPullRequestID(again[0])
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.False(t, history[0].NotificationSent)
		assert.True(t, history[1].NotificationSent)
	})

	t.Run("merged payload stores the merged state", func(t *testing.T) {
		env := newTestEnv(t)

		pr := testPullRequest(t0)
		pr.State = github.String("closed")
		pr.ClosedAt = &github.Timestamp{Time: t0.Add(time.Hour)}
		pr.MergedAt = &github.Timestamp{Time: t0.Add(time.Hour)}

		prID, err := env.eventService.ProcessPullRequestEvent(&github.PullRequestEvent{
			Action:      github.String("closed"),
			Repo:        testRepository(),
			PullRequest: pr,
		})
		require.NoError(t, err)

		stored, err := env.pullRequestRepo.GetByID(prID)
		require.NoError(t, err)
		assert.Equal(t, models.PRStateMerged, stored.State)
		require.NotNil(t, stored.MergedAt)
	})

	t.Run("rejects incomplete payloads", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.eventService.ProcessPullRequestEvent(nil)
		assert.ErrorIs(t, err, repositories.ErrMissingField)

		_, err = env.eventService.ProcessPullRequestEvent(&github.PullRequestEvent{
			Action: github.String("opened"),
			Repo:   testRepository(),
		})
		assert.ErrorIs(t, err, repositories.ErrMissingField)
	})
}

func TestProcessReviewEvent(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)

	reviewEvent := func(state, body string) *github.PullRequestReviewEvent {
		return &github.PullRequestReviewEvent{
			Action:      github.String("submitted"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(t0),
			Review: &github.PullRequestReview{
				ID:          github.Int64(400),
				State:       github.String(state),
				Body:        github.String(body),
				HTMLURL:     github.String("https://github.com/acme/widgets/pull/7#pullrequestreview-400"),
				User:        testUser(201, "reviewer"),
				SubmittedAt: &github.Timestamp{Time: t1},
			},
		}
	}

	t.Run("creates the parent pull request when the review arrives first", func(t *testing.T) {
		env := newTestEnv(t)

		reviewID, err := env.eventService.ProcessReviewEvent(reviewEvent("approved", ""))
		require.NoError(t, err)
		assert.NotEmpty(t, reviewID)

		pr, err := env.pullRequestRepo.GetByGithubID(300)
		require.NoError(t, err)
		assert.Equal(t, "Add feature", pr.Title)
	})

	t.Run("refreshes activity from the review submission", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.eventService.ProcessReviewEvent(reviewEvent("approved", ""))
		require.NoError(t, err)

		pr, err := env.pullRequestRepo.GetByGithubID(300)
		require.NoError(t, err)
		assert.True(t, pr.LastActivityAt.Equal(t1))
	})

	t.Run("stores the review body as a comment with a derived id", func(t *testing.T) {
		env := newTestEnv(t)

		reviewID, err := env.eventService.ProcessReviewEvent(reviewEvent("commented", "LGTM overall"))
		require.NoError(t, err)

		comment, err := env.commentRepo.GetByGithubID(400 + reviewCommentIDOffset)
		require.NoError(t, err)
		assert.Equal(t, "LGTM overall", comment.Body)
		require.NotNil(t, comment.ReviewID)
		assert.Equal(t, reviewID, *comment.ReviewID)
		assert.True(t, comment.ContainsCommand)
		require.NotNil(t, comment.CommandType)
		assert.Equal(t, models.CommandLGTM, *comment.CommandType)
	})

	t.Run("redelivered review body converges on one comment row", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.eventService.ProcessReviewEvent(reviewEvent("commented", "needs polish"))
		require.NoError(t, err)
		_, err = env.eventService.ProcessReviewEvent(reviewEvent("commented", "needs polish"))
		require.NoError(t, err)

		var count int
		require.NoError(t, env.db.QueryRow(`SELECT COUNT(id) FROM review_comments`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("notifies on changes requested", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.eventService.ProcessReviewEvent(reviewEvent("changes_requested", "please split this up"))
		require.NoError(t, err)
		_, err = env.eventService.ProcessReviewEvent(reviewEvent("approved", ""))
		require.NoError(t, err)

		assert.Equal(t, []string{"reviewer"}, env.notifier.changesRequested)
	})

	t.Run("normalizes review state to lowercase", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.eventService.ProcessReviewEvent(reviewEvent("APPROVED", ""))
		require.NoError(t, err)

		review, err := env.reviewRepo.GetByGithubID(400)
		require.NoError(t, err)
		assert.Equal(t, models.ReviewStateApproved, review.State)
	})
}

func TestProcessReviewCommentEvent(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t2 := t0.Add(48 * time.Hour)

	commentEvent := func(body string, reviewGithubID int64) *github.PullRequestReviewCommentEvent {
		comment := &github.PullRequestComment{
			ID:        github.Int64(500),
			Body:      github.String(body),
			User:      testUser(202, "commenter"),
			CreatedAt: &github.Timestamp{Time: t2},
			UpdatedAt: &github.Timestamp{Time: t2},
		}
		if reviewGithubID != 0 {
			comment.PullRequestReviewID = github.Int64(reviewGithubID)
		}
		return &github.PullRequestReviewCommentEvent{
			Action:      github.String("created"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(t0),
			Comment:     comment,
		}
	}

	t.Run("persists the comment and refreshes activity", func(t *testing.T) {
		env := newTestEnv(t)

		commentID, err := env.eventService.ProcessReviewCommentEvent(commentEvent("looks off here", 0))
		require.NoError(t, err)
		assert.NotEmpty(t, commentID)

		pr, err := env.pullRequestRepo.GetByGithubID(300)
		require.NoError(t, err)
		assert.True(t, pr.LastActivityAt.Equal(t2))
	})

	t.Run("classifies commands in the body", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.eventService.ProcessReviewCommentEvent(commentEvent("fix it and retry", 0))
		require.NoError(t, err)

		stored, err := env.commentRepo.GetByGithubID(500)
		require.NoError(t, err)
		assert.True(t, stored.ContainsCommand)
		require.NotNil(t, stored.CommandType)
		assert.Equal(t, models.CommandFixIt, *stored.CommandType)
	})

	t.Run("links to the parent review when it is known", func(t *testing.T) {
		env := newTestEnv(t)

		reviewID, err := env.eventService.ProcessReviewEvent(&github.PullRequestReviewEvent{
			Action:      github.String("submitted"),
			Repo:        testRepository(),
			PullRequest: testPullRequest(t0),
			Review: &github.PullRequestReview{
				ID:          github.Int64(400),
				State:       github.String("commented"),
				User:        testUser(201, "reviewer"),
				SubmittedAt: &github.Timestamp{Time: t0},
			},
		})
		require.NoError(t, err)

		_, err = env.eventService.ProcessReviewCommentEvent(commentEvent("inline note", 400))
		require.NoError(t, err)

		stored, err := env.commentRepo.GetByGithubID(500)
		require.NoError(t, err)
		require.NotNil(t, stored.ReviewID)
		assert.Equal(t, reviewID, *stored.ReviewID)
	})

	t.Run("tolerates an unknown parent review", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.eventService.ProcessReviewCommentEvent(commentEvent("inline note", 999))
		require.NoError(t, err)

		stored, err := env.commentRepo.GetByGithubID(500)
		require.NoError(t, err)
		assert.Nil(t, stored.ReviewID)
	})
}
