package models

// User is an identity-provider subject. Rows exist only so completion
// records have something to reference; there is no local credential state.
type User struct {
	ID string `db:"id" json:"id"`
}

// ToggleRequest is the legacy toggle body. UserID is only trusted when no
// verified identity is present on the request.
type ToggleRequest struct {
	UserID    string `json:"userId"`
	ProblemID int    `json:"problemId" binding:"required"`
}

// BatchToggleRequest maps problem ids (as JSON object keys) to the desired
// completion state. Non-numeric keys are skipped during application.
type BatchToggleRequest struct {
	Changes map[string]bool `json:"changes" binding:"required"`
}
