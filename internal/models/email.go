package models

import "time"

// Purposes for a queued email job.
const (
	EmailPurposeVerification  = "verification"
	EmailPurposePasswordReset = "password_reset"
)

// EmailJob is the payload published to the mail queue. The consumer renders
// and delivers the actual email; the web process only enqueues.
type EmailJob struct {
	To       string    `json:"to"`
	Username string    `json:"username"`
	Code     string    `json:"code"`
	Purpose  string    `json:"purpose"` // e.g., "verification", "password_reset"
	QueuedAt time.Time `json:"queued_at"`
}
