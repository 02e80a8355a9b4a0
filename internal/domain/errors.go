package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidCaseStatus    = NewDomainError(ErrCodeValidation, "invalid case status")
	ErrInvalidCasePriority  = NewDomainError(ErrCodeValidation, "invalid case priority")
	ErrInvalidUserRole      = NewDomainError(ErrCodeValidation, "invalid user role")
	ErrInvalidUserStatus    = NewDomainError(ErrCodeValidation, "invalid user status")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrCaseNotFound         = NewDomainError(ErrCodeNotFound, "case not found")
	ErrUserNotFound         = NewDomainError(ErrCodeNotFound, "user not found")
	ErrCommentNotFound      = NewDomainError(ErrCodeNotFound, "comment not found")
	ErrNotificationNotFound = NewDomainError(ErrCodeNotFound, "notification not found")
	ErrActivityNotFound     = NewDomainError(ErrCodeNotFound, "activity not found")
	ErrAttachmentNotFound   = NewDomainError(ErrCodeNotFound, "attachment not found")
)

// Already exists errors
var (
	ErrEmailAlreadyRegistered = NewDomainError(ErrCodeAlreadyExists, "email already registered")
	ErrCommentAlreadySynced   = NewDomainError(ErrCodeAlreadyExists, "comment already synced")
)

// Authorization errors
var (
	ErrInvalidCredentials = NewDomainError(ErrCodeUnauthorized, "invalid email or password")
	ErrTokenExpired       = NewDomainError(ErrCodeUnauthorized, "token expired")
	ErrTokenInvalid       = NewDomainError(ErrCodeUnauthorized, "token invalid")
	ErrUserNotApproved    = NewDomainError(ErrCodeForbidden, "registration has not been approved yet")
	ErrUserRejected       = NewDomainError(ErrCodeForbidden, "registration was rejected")
	ErrAdminOnly          = NewDomainError(ErrCodeForbidden, "administrator access required")
)

// Invalid operation errors
var (
	ErrCannotDeleteSelf = NewDomainError(ErrCodeInvalidOperation, "cannot delete own account")
)
