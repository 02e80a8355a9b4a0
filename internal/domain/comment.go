package domain

import (
	"fmt"
	"time"
)

// Comment represents a message on a case. Internal comments are visible to
// administrators only. Comments mirrored from the external tracker carry the
// tracker's comment id, which is used to de-duplicate webhook redeliveries.
type Comment struct {
	ID             string
	CaseID         string
	UserID         string
	UserName       string
	Content        string
	Internal       bool
	JiraCommentID  string
	SyncedFromJira bool
	CreatedAt      time.Time
}

// ValidateComment validates a Comment instance
func ValidateComment(c *Comment) error {
	if c == nil {
		return fmt.Errorf("comment cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("comment ID is required")
	}

	if c.CaseID == "" {
		return fmt.Errorf("comment CaseID is required")
	}

	if c.Content == "" {
		return fmt.Errorf("comment Content is required")
	}

	if c.SyncedFromJira && c.Internal {
		return fmt.Errorf("synced comments cannot be internal")
	}

	return nil
}
