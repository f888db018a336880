package models

// Command types recognized in review and comment bodies. Declaration order
// is the classification priority: when a body contains several keywords, the
// earliest-declared one wins.
const (
	CommandLGTM           = "LGTM"
	CommandApprove        = "APPROVE"
	CommandRequestChanges = "REQUEST_CHANGES"
	CommandNeedReview     = "NEED_REVIEW"
	CommandFixIt          = "FIX_IT"
	CommandRetry          = "RETRY"
)
