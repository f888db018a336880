package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
	"github.com/Harivelu0/slack-pr-automation/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// reviewCommentIDOffset shifts the synthesized source id of a review body
// stored as a comment into a numeric range above genuine comment ids.
// Preserved from the original id scheme so re-deliveries keep converging on
// the same row.
const reviewCommentIDOffset = 10_000_000_000

// EventService orchestrates the persistence of one decoded webhook event at
// a time, resolving entities in dependency order: repository, then user(s),
// then pull request, then review/comment. The first failed step aborts the
// event; nothing panics across this boundary.
type EventService struct {
	repositoryRepo  *repositories.RepositoryRepository
	userRepo        *repositories.UserRepository
	pullRequestRepo *repositories.PullRequestRepository
	reviewRepo      *repositories.ReviewRepository
	commentRepo     *repositories.ReviewCommentRepository

	activityService *ActivityService
	commandService  *CommandService
	notifier        Notifier
}

func NewEventService(
	repositoryRepo *repositories.RepositoryRepository,
	userRepo *repositories.UserRepository,
	pullRequestRepo *repositories.PullRequestRepository,
	reviewRepo *repositories.ReviewRepository,
	commentRepo *repositories.ReviewCommentRepository,
	activityService *ActivityService,
	commandService *CommandService,
	notifier Notifier,
) *EventService {
	return &EventService{
		repositoryRepo:  repositoryRepo,
		userRepo:        userRepo,
		pullRequestRepo: pullRequestRepo,
		reviewRepo:      reviewRepo,
		commentRepo:     commentRepo,
		activityService: activityService,
		commandService:  commandService,
		notifier:        notifier,
	}
}

// ProcessPullRequestEvent persists a pull_request event (opened, reopened,
// synchronize, edited) and returns the surrogate pull request id. A "new PR"
// notification goes out for action=opened only.
func (s *EventService) ProcessPullRequestEvent(event *github.PullRequestEvent) (string, error) {
	if event == nil || event.GetRepo() == nil || event.GetPullRequest() == nil {
		return "", fmt.Errorf("%w: repository or pull request payload", repositories.ErrMissingField)
	}

	pr := event.GetPullRequest()
	if pr.GetUser() == nil {
		return "", fmt.Errorf("%w: pull request author payload", repositories.ErrMissingField)
	}

	repoID, err := s.repositoryRepo.GetOrCreate(repositoryFromPayload(event.GetRepo()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository: %w", err)
	}

	authorID, err := s.userRepo.GetOrCreate(userFromPayload(pr.GetUser()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve author: %w", err)
	}

	prID, err := s.pullRequestRepo.Upsert(pullRequestFromPayload(pr), repoID, authorID)
	if err != nil {
		return "", fmt.Errorf("failed to upsert pull request: %w", err)
	}

	// Pull-request-level events count as activity: close any open stale
	// period, not just the flag the upsert already cleared.
	activityAt := pr.GetUpdatedAt().Time
	if activityAt.IsZero() {
		activityAt = time.Now().UTC()
	}
	if err := s.activityService.RefreshActivity(prID, activityAt); err != nil {
		return "", fmt.Errorf("failed to refresh pull request activity: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"pull_request_id": prID,
		"github_id":       pr.GetID(),
		"action":          event.GetAction(),
	}).Infof("Processed pull request event")

	// Delivery failures never unwind committed writes
	if event.GetAction() == "opened" && s.notifier != nil {
		err := s.notifier.NotifyNewPullRequest(
			pr.GetTitle(), pr.GetBody(), event.GetRepo().GetFullName(),
			pr.GetUser().GetLogin(), pr.GetHTMLURL(),
		)
		if err != nil {
			logger.WithError(err).Warnf("Failed to send new PR notification")
		}
	}

	return prID, nil
}

// ProcessReviewEvent persists a pull_request_review event. The parent pull
// request is upserted first from the embedded payload, so reviews arriving
// before (or without) the opening event still find a parent. A review that
// carries body text is additionally stored as a review comment with a
// derived source id, linked to the review row.
func (s *EventService) ProcessReviewEvent(event *github.PullRequestReviewEvent) (string, error) {
	if event == nil || event.GetRepo() == nil || event.GetReview() == nil || event.GetPullRequest() == nil {
		return "", fmt.Errorf("%w: repository, review, or pull request payload", repositories.ErrMissingField)
	}

	review := event.GetReview()
	pr := event.GetPullRequest()
	if review.GetUser() == nil || pr.GetUser() == nil {
		return "", fmt.Errorf("%w: reviewer or pull request author payload", repositories.ErrMissingField)
	}

	repoID, err := s.repositoryRepo.GetOrCreate(repositoryFromPayload(event.GetRepo()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository: %w", err)
	}

	reviewerID, err := s.userRepo.GetOrCreate(userFromPayload(review.GetUser()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve reviewer: %w", err)
	}

	authorID, err := s.userRepo.GetOrCreate(userFromPayload(pr.GetUser()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve pull request author: %w", err)
	}

	prID, err := s.pullRequestRepo.Upsert(pullRequestFromPayload(pr), repoID, authorID)
	if err != nil {
		return "", fmt.Errorf("failed to upsert pull request: %w", err)
	}

	submittedAt := review.GetSubmittedAt().Time
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	reviewID, err := s.reviewRepo.Upsert(&models.Review{
		GithubID:    review.GetID(),
		State:       strings.ToLower(review.GetState()),
		SubmittedAt: submittedAt,
	}, prID, reviewerID)
	if err != nil {
		return "", fmt.Errorf("failed to upsert review: %w", err)
	}

	if err := s.activityService.RefreshActivity(prID, submittedAt); err != nil {
		return "", fmt.Errorf("failed to refresh pull request activity: %w", err)
	}

	if body := review.GetBody(); body != "" {
		comment := &models.ReviewComment{
			GithubID:  review.GetID() + reviewCommentIDOffset,
			Body:      body,
			CreatedAt: submittedAt,
			UpdatedAt: submittedAt,
		}
		comment.ContainsCommand, comment.CommandType = s.commandService.Detect(body)

		if _, err := s.commentRepo.Upsert(comment, prID, reviewerID, &reviewID); err != nil {
			return "", fmt.Errorf("failed to store review body as comment: %w", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"review_id":       reviewID,
		"pull_request_id": prID,
		"state":           review.GetState(),
	}).Infof("Processed pull request review event")

	if strings.ToLower(review.GetState()) == models.ReviewStateChangesRequested && s.notifier != nil {
		err := s.notifier.NotifyChangesRequested(
			pr.GetTitle(), review.GetBody(), event.GetRepo().GetFullName(),
			pr.GetUser().GetLogin(), review.GetUser().GetLogin(), review.GetHTMLURL(),
		)
		if err != nil {
			logger.WithError(err).Warnf("Failed to send changes requested notification")
		}
	}

	return reviewID, nil
}

// ProcessReviewCommentEvent persists a pull_request_review_comment event.
// The review linkage is best-effort: if the parent review was never
// delivered, the comment is stored with a null review reference.
func (s *EventService) ProcessReviewCommentEvent(event *github.PullRequestReviewCommentEvent) (string, error) {
	if event == nil || event.GetRepo() == nil || event.GetComment() == nil || event.GetPullRequest() == nil {
		return "", fmt.Errorf("%w: repository, comment, or pull request payload", repositories.ErrMissingField)
	}

	comment := event.GetComment()
	pr := event.GetPullRequest()
	if comment.GetUser() == nil || pr.GetUser() == nil {
		return "", fmt.Errorf("%w: commenter or pull request author payload", repositories.ErrMissingField)
	}

	repoID, err := s.repositoryRepo.GetOrCreate(repositoryFromPayload(event.GetRepo()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository: %w", err)
	}

	commenterID, err := s.userRepo.GetOrCreate(userFromPayload(comment.GetUser()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve commenter: %w", err)
	}

	authorID, err := s.userRepo.GetOrCreate(userFromPayload(pr.GetUser()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve pull request author: %w", err)
	}

	prID, err := s.pullRequestRepo.Upsert(pullRequestFromPayload(pr), repoID, authorID)
	if err != nil {
		return "", fmt.Errorf("failed to upsert pull request: %w", err)
	}

	var reviewID *string
	if reviewGithubID := comment.GetPullRequestReviewID(); reviewGithubID != 0 {
		if review, err := s.reviewRepo.GetByGithubID(reviewGithubID); err == nil {
			reviewID = &review.ID
		}
	}

	record := &models.ReviewComment{
		GithubID:  comment.GetID(),
		Body:      comment.GetBody(),
		CreatedAt: comment.GetCreatedAt().Time,
		UpdatedAt: comment.GetUpdatedAt().Time,
	}
	record.ContainsCommand, record.CommandType = s.commandService.Detect(record.Body)

	commentID, err := s.commentRepo.Upsert(record, prID, commenterID, reviewID)
	if err != nil {
		return "", fmt.Errorf("failed to upsert review comment: %w", err)
	}

	activityAt := comment.GetUpdatedAt().Time
	if activityAt.IsZero() {
		activityAt = time.Now().UTC()
	}
	if err := s.activityService.RefreshActivity(prID, activityAt); err != nil {
		return "", fmt.Errorf("failed to refresh pull request activity: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"comment_id":      commentID,
		"pull_request_id": prID,
	}).Infof("Processed pull request review comment event")

	return commentID, nil
}

func repositoryFromPayload(repo *github.Repository) *models.Repository {
	return &models.Repository{
		GithubID: repo.GetID(),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
	}
}

func userFromPayload(user *github.User) *models.User {
	return &models.User{
		GithubID:  user.GetID(),
		Username:  user.GetLogin(),
		AvatarURL: user.GetAvatarURL(),
	}
}

func pullRequestFromPayload(pr *github.PullRequest) *models.PullRequest {
	record := &models.PullRequest{
		GithubID:  pr.GetID(),
		Title:     pr.GetTitle(),
		Number:    pr.GetNumber(),
		State:     pr.GetState(),
		HTMLURL:   pr.GetHTMLURL(),
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
	}

	if pr.ClosedAt != nil {
		closedAt := pr.ClosedAt.Time
		record.ClosedAt = &closedAt
	}
	if pr.MergedAt != nil {
		mergedAt := pr.MergedAt.Time
		record.MergedAt = &mergedAt
		record.State = models.PRStateMerged
	}

	return record
}
