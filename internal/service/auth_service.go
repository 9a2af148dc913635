package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/apricitydigital/attendance-core/internal/apperr"
	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/repository"
	"github.com/apricitydigital/attendance-core/internal/token"
)

// AuthService handles password-based login and token issuance (spec.md §6).
type AuthService struct {
	userRepo     *repository.UserRepository
	auditService *AuditService
	issuer       *token.Issuer
	bcryptCost   int
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo *repository.UserRepository, auditService *AuditService, issuer *token.Issuer, bcryptCost int, logger *slog.Logger) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:     userRepo,
		auditService: auditService,
		issuer:       issuer,
		bcryptCost:   bcryptCost,
		logger:       logger,
	}
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt string
	User      domain.User
}

// Login authenticates a user by email and password and issues a bearer
// token carrying {user_id, role} (spec.md §6).
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		s.auditService.LogAuthEvent(ctx, nil, domain.AuditActionUserLogin, false, ipAddress, userAgent, map[string]interface{}{"email": email, "reason": "no_such_user"})
		return nil, apperr.Unauthenticated("invalid_credentials", "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.auditService.LogAuthEvent(ctx, &user.ID, domain.AuditActionUserLogin, false, ipAddress, userAgent, map[string]interface{}{"reason": "bad_password"})
		return nil, apperr.Unauthenticated("invalid_credentials", "invalid email or password")
	}

	signed, expiresAt, err := s.issuer.Issue(user.ID, string(user.PrimaryRole))
	if err != nil {
		return nil, apperr.Internal("token_issue_failed", err)
	}

	s.auditService.LogAuthEvent(ctx, &user.ID, domain.AuditActionUserLogin, true, ipAddress, userAgent, nil)
	s.logger.Info("user logged in", "user_id", user.ID, "role", user.PrimaryRole)

	return &LoginResult{
		Token:     signed,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
		User:      *user,
	}, nil
}

// Logout records a logout event; tokens are stateless and expire on their
// own, so there is nothing server-side to revoke.
func (s *AuthService) Logout(ctx context.Context, userID int64, ipAddress, userAgent string) {
	s.auditService.LogAuthEvent(ctx, &userID, domain.AuditActionUserLogout, true, ipAddress, userAgent, nil)
}

// CreateUser creates a new user with a bcrypt-hashed password.
func (s *AuthService) CreateUser(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	if input.Password == "" {
		return nil, apperr.Validation("password_required", "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("hash_failed", err)
	}

	user := &domain.User{
		Name:         input.Name,
		EmpCode:      input.EmpCode,
		Email:        input.Email,
		Phone:        input.Phone,
		PrimaryRole:  input.PrimaryRole,
		Department:   input.Department,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ChangePassword replaces a user's password hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperr.Internal("hash_failed", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}
