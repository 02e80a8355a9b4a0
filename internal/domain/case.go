package domain

import (
	"fmt"
	"strings"
	"time"
)

// CaseStatus represents the lifecycle state of a support case
type CaseStatus string

const (
	CaseStatusPending              CaseStatus = "pending"
	CaseStatusInDevelopment        CaseStatus = "in_development"
	CaseStatusAwaitingClient       CaseStatus = "awaiting_client"
	CaseStatusAwaitingConfig       CaseStatus = "awaiting_configuration"
	CaseStatusResolved             CaseStatus = "resolved"
)

// CasePriority represents the urgency of a case
type CasePriority string

const (
	CasePriorityLow    CasePriority = "low"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityHigh   CasePriority = "high"
	CasePriorityUrgent CasePriority = "urgent"
)

// Case represents a support case tracked through its status lifecycle.
// JiraID is the external-tracker key and, when present, is the natural
// key for webhook upsert idempotency.
type Case struct {
	ID            string
	JiraID        string
	Title         string
	Description   string
	Responsible   string
	CreatorID     string
	CreatorName   string
	Status        CaseStatus
	Priority      CasePriority
	Insurer       string
	Category      string
	Keywords      []string
	OpenedAt      time.Time
	ClosedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Solution      string
	SolutionTitle string
	SolvedBy      string
	SolvedByID    string
	SolvedAt      *time.Time
}

// IsResolved reports whether the case is in its terminal state.
func (c *Case) IsResolved() bool {
	return c.Status == CaseStatusResolved
}

// HasSolution reports whether the case carries a non-empty resolution note.
func (c *Case) HasSolution() bool {
	return strings.TrimSpace(c.Solution) != ""
}

// EligibleRecommendationSource reports whether the case may be offered as a
// suggested resolution: resolved and carrying a solution.
func (c *Case) EligibleRecommendationSource() bool {
	return c.IsResolved() && c.HasSolution()
}

// ValidateCase validates a Case instance
func ValidateCase(c *Case) error {
	if c == nil {
		return fmt.Errorf("case cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("case ID is required")
	}

	if c.Title == "" {
		return fmt.Errorf("case Title is required")
	}

	if !IsValidCaseStatus(c.Status) {
		return fmt.Errorf("case Status is invalid: %s", c.Status)
	}

	if c.Priority != "" && !IsValidCasePriority(c.Priority) {
		return fmt.Errorf("case Priority is invalid: %s", c.Priority)
	}

	return nil
}

// IsValidCaseStatus checks if a CaseStatus is valid
func IsValidCaseStatus(s CaseStatus) bool {
	switch s {
	case CaseStatusPending, CaseStatusInDevelopment, CaseStatusAwaitingClient,
		CaseStatusAwaitingConfig, CaseStatusResolved:
		return true
	}
	return false
}

// IsValidCasePriority checks if a CasePriority is valid
func IsValidCasePriority(p CasePriority) bool {
	switch p {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return true
	}
	return false
}
