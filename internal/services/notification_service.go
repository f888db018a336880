package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
)

// Notifier is the outbound notification surface consumed by the event
// processor and the stale checker. Delivery is fire-and-forget relative to
// persistence: failures are logged by the caller and never affect committed
// writes.
type Notifier interface {
	NotifyNewPullRequest(title, body, repoFullName, author, htmlURL string) error
	NotifyChangesRequested(title, reviewBody, repoFullName, prAuthor, reviewer, reviewURL string) error
	NotifyStalePRs(stale []*models.StalePullRequest, thresholdDays int) error
}

// maxStalePRsPerMessage caps the stale alert listing to stay inside Slack
// message size limits
const maxStalePRsPerMessage = 10

var errWebhookNotConfigured = errors.New("slack webhook url not configured")

// NotificationService delivers Block Kit messages to a Slack incoming
// webhook
type NotificationService struct {
	webhookURL string
	client     *http.Client
}

func NewNotificationService(webhookURL string) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type notificationAction struct {
	Text string
	URL  string
}

// NotifyNewPullRequest announces a freshly opened pull request
func (s *NotificationService) NotifyNewPullRequest(title, body, repoFullName, author, htmlURL string) error {
	if body == "" {
		body = "No description provided."
	}

	text := fmt.Sprintf("*%s*\n%s", title, body)
	fields := []string{
		fmt.Sprintf("*Repository:* %s", repoFullName),
		fmt.Sprintf("*Created by:* %s", author),
	}
	actions := []notificationAction{{Text: "View Pull Request", URL: htmlURL}}

	return s.send("🔔 New Pull Request Created", text, fields, actions)
}

// NotifyChangesRequested announces a changes-requested review
func (s *NotificationService) NotifyChangesRequested(title, reviewBody, repoFullName, prAuthor, reviewer, reviewURL string) error {
	if reviewBody == "" {
		reviewBody = "No review comments provided."
	}

	text := fmt.Sprintf("*%s*\n%s", title, reviewBody)
	fields := []string{
		fmt.Sprintf("*Repository:* %s", repoFullName),
		fmt.Sprintf("*PR Author:* %s", prAuthor),
		fmt.Sprintf("*Reviewer:* %s", reviewer),
	}
	actions := []notificationAction{{Text: "View Review", URL: reviewURL}}

	return s.send("⚠️ Changes Requested on Pull Request", text, fields, actions)
}

// NotifyStalePRs announces newly detected stale pull requests, listing at
// most maxStalePRsPerMessage with a "+N more" suffix for the rest
func (s *NotificationService) NotifyStalePRs(stale []*models.StalePullRequest, thresholdDays int) error {
	if len(stale) == 0 {
		return nil
	}

	now := time.Now().UTC()
	text := fmt.Sprintf("The following pull requests have been inactive for %d days:", thresholdDays)

	listed := stale
	if len(listed) > maxStalePRsPerMessage {
		listed = listed[:maxStalePRsPerMessage]
		text += fmt.Sprintf("\n\n*+%d more not shown*", len(stale)-maxStalePRsPerMessage)
	}

	var fields []string
	var actions []notificationAction
	for _, pr := range listed {
		fields = append(fields, fmt.Sprintf("*%s #%d*: %s", pr.RepositoryName, pr.Number, pr.Title))
		fields = append(fields, fmt.Sprintf("Created by: %s | Inactive for %d days", pr.AuthorName, pr.DaysInactive(now)))
		actions = append(actions, notificationAction{
			Text: fmt.Sprintf("View #%d", pr.Number),
			URL:  pr.HTMLURL,
		})
	}

	return s.send("🚨 Stale Pull Requests Detected", text, fields, actions)
}

// send posts a Block Kit message to the configured webhook
func (s *NotificationService) send(title, text string, fields []string, actions []notificationAction) error {
	if s.webhookURL == "" {
		return errWebhookNotConfigured
	}

	blocks := []map[string]interface{}{
		{
			"type": "header",
			"text": map[string]interface{}{
				"type": "plain_text",
				"text": title,
			},
		},
		{
			"type": "section",
			"text": map[string]interface{}{
				"type": "mrkdwn",
				"text": text,
			},
		},
	}

	if len(fields) > 0 {
		fieldItems := make([]map[string]interface{}, 0, len(fields))
		for _, field := range fields {
			fieldItems = append(fieldItems, map[string]interface{}{
				"type": "mrkdwn",
				"text": field,
			})
		}
		blocks = append(blocks, map[string]interface{}{
			"type":   "section",
			"fields": fieldItems,
		})
	}

	if len(actions) > 0 {
		elements := make([]map[string]interface{}, 0, len(actions))
		for _, action := range actions {
			elements = append(elements, map[string]interface{}{
				"type": "button",
				"text": map[string]interface{}{
					"type": "plain_text",
					"text": action.Text,
				},
				"url": action.URL,
			})
		}
		blocks = append(blocks, map[string]interface{}{
			"type":     "actions",
			"elements": elements,
		})
	}

	payload, err := json.Marshal(map[string]interface{}{"blocks": blocks})
	if err != nil {
		return err
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
