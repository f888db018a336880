package models

// UserCount pairs a username with an aggregate count for dashboard charts
type UserCount struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
}

// PRMetrics is the dashboard metrics payload
type PRMetrics struct {
	PRAuthors       []UserCount `json:"pr_authors"`
	ActiveReviewers []UserCount `json:"active_reviewers"`
	CommandUsers    []UserCount `json:"command_users"`
	StalePRCount    int         `json:"stale_pr_count"`
}

// RepositorySummary is a repository row with its pull request count
type RepositorySummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	FullName         string `json:"full_name"`
	PullRequestCount int    `json:"pull_request_count"`
}

// Contributor aggregates a user's activity across tracked entities
type Contributor struct {
	Username     string `json:"username"`
	AvatarURL    string `json:"avatar_url"`
	PullRequests int    `json:"pull_requests"`
	Reviews      int    `json:"reviews"`
	Comments     int    `json:"comments"`
}
