package domain

import (
	"fmt"
	"time"
)

// NotificationType tags the reason a notification was produced
type NotificationType string

const (
	NotificationTypeNewCase      NotificationType = "new_case"
	NotificationTypeNewComment   NotificationType = "new_comment"
	NotificationTypeStatusChange NotificationType = "status_change"
	NotificationTypeCaseAssigned NotificationType = "case_assigned"
)

// Notification is a per-user message about activity on a case. Produced as a
// side effect of the CRUD layer and the webhook pipeline, never consumed by
// either.
type Notification struct {
	ID        string
	UserID    string
	CaseID    string
	CaseTitle string
	Message   string
	Type      NotificationType
	Read      bool
	CreatedAt time.Time
}

// ValidateNotification validates a Notification instance
func ValidateNotification(n *Notification) error {
	if n == nil {
		return fmt.Errorf("notification cannot be nil")
	}

	if n.ID == "" {
		return fmt.Errorf("notification ID is required")
	}

	if n.UserID == "" {
		return fmt.Errorf("notification UserID is required")
	}

	if n.Message == "" {
		return fmt.Errorf("notification Message is required")
	}

	return nil
}
