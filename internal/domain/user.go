package domain

import (
	"fmt"
	"time"
)

// UserRole distinguishes support staff from partner clients
type UserRole string

const (
	UserRoleClient UserRole = "client"
	UserRoleAdmin  UserRole = "admin"
)

// UserStatus represents the approval state of a registration
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

// User represents an account in the helpdesk. New registrations start as
// pending clients and cannot log in until an administrator approves them.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	Phone        string
	Company      string
	CreatedAt    time.Time
	ApprovedAt   *time.Time
	ApprovedBy   string
}

// ValidateUser validates a User instance
func ValidateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if u.Name == "" {
		return fmt.Errorf("user Name is required")
	}

	if u.Email == "" {
		return fmt.Errorf("user Email is required")
	}

	if !IsValidUserRole(u.Role) {
		return fmt.Errorf("user Role is invalid: %s", u.Role)
	}

	if !IsValidUserStatus(u.Status) {
		return fmt.Errorf("user Status is invalid: %s", u.Status)
	}

	return nil
}

// IsValidUserRole checks if a UserRole is valid
func IsValidUserRole(r UserRole) bool {
	switch r {
	case UserRoleClient, UserRoleAdmin:
		return true
	}
	return false
}

// IsValidUserStatus checks if a UserStatus is valid
func IsValidUserStatus(s UserStatus) bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusRejected:
		return true
	}
	return false
}
