package services

import (
	"testing"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDetect(t *testing.T) {
	service := NewCommandService()

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"lgtm lowercase", "lgtm, ship it", models.CommandLGTM},
		{"lgtm uppercase", "LGTM!", models.CommandLGTM},
		{"approve", "I approve this change", models.CommandApprove},
		{"request changes with space", "please request changes here", models.CommandRequestChanges},
		{"request changes with underscore", "request_changes", models.CommandRequestChanges},
		{"need review with space", "still need review", models.CommandNeedReview},
		{"need review with underscore", "need_review from the team", models.CommandNeedReview},
		{"fix it with space", "fix it before merging", models.CommandFixIt},
		{"fix it with underscore", "fix_it", models.CommandFixIt},
		{"retry", "retry the pipeline", models.CommandRetry},
		{"mixed case", "Need Review please", models.CommandNeedReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, commandType := service.Detect(tt.body)
			require.True(t, found)
			require.NotNil(t, commandType)
			assert.Equal(t, tt.expected, *commandType)
		})
	}

	t.Run("multiple keywords classify by priority", func(t *testing.T) {
		found, commandType := service.Detect("LGTM, I APPROVE this")
		require.True(t, found)
		require.NotNil(t, commandType)
		assert.Equal(t, models.CommandLGTM, *commandType)
	})

	t.Run("declared order wins over position", func(t *testing.T) {
		// APPROVE appears first in the text, LGTM still wins
		found, commandType := service.Detect("I APPROVE this, LGTM")
		require.True(t, found)
		require.NotNil(t, commandType)
		assert.Equal(t, models.CommandLGTM, *commandType)
	})

	t.Run("whole words only", func(t *testing.T) {
		for _, body := range []string{"lgtmx", "disapprove", "retrying"} {
			found, commandType := service.Detect(body)
			assert.False(t, found, body)
			assert.Nil(t, commandType, body)
		}
	})

	t.Run("no command", func(t *testing.T) {
		found, commandType := service.Detect("looks reasonable to me")
		assert.False(t, found)
		assert.Nil(t, commandType)
	})

	t.Run("empty body", func(t *testing.T) {
		found, commandType := service.Detect("")
		assert.False(t, found)
		assert.Nil(t, commandType)
	})
}
