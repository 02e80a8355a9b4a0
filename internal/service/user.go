package service

import (
	"context"
	"strings"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/telemetry"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles account administration
type UserService struct {
	userRepo UserRepositoryInterface
	uuidGen  UUIDGenerator
}

func NewUserService(userRepo UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo, uuidGen: &DefaultUUIDGenerator{}}
}

func NewUserServiceWithUUIDGen(userRepo UserRepositoryInterface, uuidGen UUIDGenerator) *UserService {
	return &UserService{userRepo: userRepo, uuidGen: uuidGen}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns accounts, optionally filtered by approval status.
func (s *UserService) List(ctx context.Context, status domain.UserStatus) ([]*domain.User, error) {
	if status != "" && !domain.IsValidUserStatus(status) {
		return nil, domain.ErrInvalidUserStatus
	}
	return s.userRepo.List(ctx, status)
}

// Approve grants a pending registration access, recording the approver.
func (s *UserService) Approve(ctx context.Context, id, approverID string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "UserService.Approve", telemetry.SpanAttributes{
		UserID:    id,
		Operation: "approve",
	})
	defer span.End()

	if err := s.userRepo.SetStatus(ctx, id, domain.UserStatusApproved, approverID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// Reject refuses a pending registration.
func (s *UserService) Reject(ctx context.Context, id, approverID string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "UserService.Reject", telemetry.SpanAttributes{
		UserID:    id,
		Operation: "reject",
	})
	defer span.End()

	if err := s.userRepo.SetStatus(ctx, id, domain.UserStatusRejected, approverID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// CreateInput represents the input for an administrator creating an account
// directly. The account is born approved.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
	Phone    string
	Company  string
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput, createdBy string) (*domain.User, error) {
	if strings.TrimSpace(input.Password) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "password is required")
	}
	if input.Role == "" {
		input.Role = domain.UserRoleClient
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.uuidGen.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		Role:         input.Role,
		Status:       domain.UserStatusApproved,
		Phone:        strings.TrimSpace(input.Phone),
		Company:      strings.TrimSpace(input.Company),
		CreatedAt:    now,
		ApprovedAt:   &now,
		ApprovedBy:   createdBy,
	}

	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserInput carries partial account changes; empty fields are left
// untouched.
type UpdateUserInput struct {
	Name    string
	Phone   string
	Company string
	Role    domain.UserRole
}

func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = strings.TrimSpace(input.Name)
	}
	if input.Phone != "" {
		user.Phone = strings.TrimSpace(input.Phone)
	}
	if input.Company != "" {
		user.Company = strings.TrimSpace(input.Company)
	}
	if input.Role != "" {
		if !domain.IsValidUserRole(input.Role) {
			return nil, domain.ErrInvalidUserRole
		}
		user.Role = input.Role
	}

	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account. Administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id, requesterID string) error {
	if id == requesterID {
		return domain.ErrCannotDeleteSelf
	}
	return s.userRepo.Delete(ctx, id)
}
