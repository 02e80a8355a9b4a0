package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/safe2go/helpdesk/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// UserRepositoryInterface defines the repository interface for user persistence
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, status domain.UserStatus) ([]*domain.User, error)
	ListAdmins(ctx context.Context) ([]*domain.User, error)
	SetStatus(ctx context.Context, id string, status domain.UserStatus, approvedBy string) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	userRepo  UserRepositoryInterface
	jwtSecret []byte
	tokenTTL  time.Duration
	uuidGen   UUIDGenerator
}

func NewAuthService(userRepo UserRepositoryInterface, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

func NewAuthServiceWithUUIDGen(userRepo UserRepositoryInterface, jwtSecret string, tokenTTL time.Duration, uuidGen UUIDGenerator) *AuthService {
	s := NewAuthService(userRepo, jwtSecret, tokenTTL)
	s.uuidGen = uuidGen
	return s
}

// RegisterInput represents the input for registering a new account
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Company  string
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a pending client account. No token is issued; the account
// must be approved by an administrator before it can log in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if strings.TrimSpace(input.Password) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to hash password", err)
	}

	user := &domain.User{
		ID:           s.uuidGen.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		Role:         domain.UserRoleClient,
		Status:       domain.UserStatusPending,
		Phone:        strings.TrimSpace(input.Phone),
		Company:      strings.TrimSpace(input.Company),
		CreatedAt:    time.Now().UTC(),
	}

	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a signed bearer token. Pending and
// rejected registrations are refused with distinct reasons.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	switch user.Status {
	case domain.UserStatusPending:
		return "", nil, domain.ErrUserNotApproved
	case domain.UserStatusRejected:
		return "", nil, domain.ErrUserRejected
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to sign token", err)
	}

	return token, user, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ResolveToken parses and verifies a bearer token and loads its user. The
// account must still be approved at resolution time.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*domain.User, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	if user.Status != domain.UserStatusApproved {
		return nil, domain.ErrUserNotApproved
	}

	return user, nil
}
