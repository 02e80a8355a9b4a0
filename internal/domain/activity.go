package domain

import (
	"fmt"
	"time"
)

// Activity is a time-tracking entry for support work, optionally linked to a
// case. At most one activity per responsible is marked current.
type Activity struct {
	ID          string
	CaseID      string
	Responsible string
	Activity    string
	TimeSpent   int // minutes
	Notes       string
	Current     bool
	CreatedAt   time.Time
}

// ValidateActivity validates an Activity instance
func ValidateActivity(a *Activity) error {
	if a == nil {
		return fmt.Errorf("activity cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("activity ID is required")
	}

	if a.Responsible == "" {
		return fmt.Errorf("activity Responsible is required")
	}

	if a.Activity == "" {
		return fmt.Errorf("activity description is required")
	}

	if a.TimeSpent < 0 {
		return fmt.Errorf("activity TimeSpent cannot be negative")
	}

	return nil
}
