package handlers

import (
	"errors"
	"net/http"

	"github.com/Harivelu0/slack-pr-automation/internal/repositories"
	"github.com/Harivelu0/slack-pr-automation/internal/services"
	"github.com/Harivelu0/slack-pr-automation/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v57/github"
)

// processedPullRequestActions are the pull_request actions that count as
// qualifying activity; everything else is acknowledged and dropped
var processedPullRequestActions = map[string]bool{
	"opened":      true,
	"reopened":    true,
	"synchronize": true,
	"edited":      true,
}

type WebhookHandler struct {
	eventService *services.EventService
	secret       []byte
}

func NewWebhookHandler(eventService *services.EventService, secret string) *WebhookHandler {
	return &WebhookHandler{
		eventService: eventService,
		secret:       []byte(secret),
	}
}

// Handle verifies and dispatches one GitHub webhook delivery
func (h *WebhookHandler) Handle(c *gin.Context) {
	payload, err := github.ValidatePayload(c.Request, h.secret)
	if err != nil {
		logger.WithError(err).Warnf("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	eventType := github.WebHookType(c.Request)
	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		logger.WithError(err).Warnf("Failed to parse webhook payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed payload"})
		return
	}

	switch event := event.(type) {
	case *github.PullRequestEvent:
		if !processedPullRequestActions[event.GetAction()] {
			c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Event received"})
			return
		}
		if _, err := h.eventService.ProcessPullRequestEvent(event); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "PR processed"})

	case *github.PullRequestReviewEvent:
		if _, err := h.eventService.ProcessReviewEvent(event); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Review processed"})

	case *github.PullRequestReviewCommentEvent:
		if _, err := h.eventService.ProcessReviewCommentEvent(event); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Comment processed"})

	case *github.PingEvent:
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Pong!"})

	default:
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Event received"})
	}
}

// fail reports a processing failure without leaking the event past this
// boundary. Missing payload fields are the sender's problem; everything else
// is ours.
func (h *WebhookHandler) fail(c *gin.Context, err error) {
	logger.WithError(err).Errorf("Failed to process webhook event")

	status := http.StatusInternalServerError
	if errors.Is(err, repositories.ErrMissingField) {
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"status": "error", "error": err.Error()})
}
