package domain

import "time"

// JiraOutboxStatus represents the delivery state of an outbound tracker comment
type JiraOutboxStatus string

const (
	JiraOutboxStatusPending JiraOutboxStatus = "pending"
	JiraOutboxStatusSent    JiraOutboxStatus = "sent"
	JiraOutboxStatusFailed  JiraOutboxStatus = "failed"
)

// JiraOutboxEntry is a queued comment destined for the external tracker.
// Writes to the tracker never happen inline with a request; they are staged
// here and drained by a background worker.
type JiraOutboxEntry struct {
	ID        string
	CaseID    string
	JiraID    string
	Author    string
	Body      string
	Status    JiraOutboxStatus
	Retries   int
	Error     string
	CreatedAt time.Time
	SentAt    *time.Time
}
