package services

import (
	"regexp"

	"github.com/Harivelu0/slack-pr-automation/internal/models"
)

type commandKeyword struct {
	commandType string
	pattern     *regexp.Regexp
}

// CommandService scans comment and review bodies for workflow command
// keywords. Matching is case-insensitive and whole-word; when several
// keywords appear in one body, the earliest-declared keyword wins, not the
// earliest occurrence in the text. The order below is a policy choice and
// must stay stable for reproducible classification.
type CommandService struct {
	keywords []commandKeyword
}

func NewCommandService() *CommandService {
	specs := []struct {
		commandType string
		expr        string
	}{
		{models.CommandLGTM, `lgtm`},
		{models.CommandApprove, `approve`},
		{models.CommandRequestChanges, `request[ _]changes`},
		{models.CommandNeedReview, `need[ _]review`},
		{models.CommandFixIt, `fix[ _]it`},
		{models.CommandRetry, `retry`},
	}

	keywords := make([]commandKeyword, 0, len(specs))
	for _, spec := range specs {
		keywords = append(keywords, commandKeyword{
			commandType: spec.commandType,
			pattern:     regexp.MustCompile(`(?i)\b` + spec.expr + `\b`),
		})
	}

	return &CommandService{keywords: keywords}
}

// Detect classifies the first recognized command in the body
func (s *CommandService) Detect(body string) (bool, *string) {
	if body == "" {
		return false, nil
	}

	for _, keyword := range s.keywords {
		if keyword.pattern.MatchString(body) {
			commandType := keyword.commandType
			return true, &commandType
		}
	}

	return false, nil
}
