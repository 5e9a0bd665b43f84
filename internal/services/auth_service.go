package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/mailer"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrResetTokenInvalid    = errors.New("reset token is invalid or expired")
	ErrResetEmailNotSent    = errors.New("reset email could not be sent")
	ErrTokenInvalid         = errors.New("token is invalid")
	ErrTokenRevoked         = errors.New("token has been revoked")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	blocklist repository.InvalidTokenRepository
	tokens    *auth.TokenManager
	mailer    mailer.Mailer
	baseURL   string
	resetTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	blocklist repository.InvalidTokenRepository,
	tokens *auth.TokenManager,
	mail mailer.Mailer,
	baseURL string,
	resetTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		blocklist: blocklist,
		tokens:    tokens,
		mailer:    mail,
		baseURL:   strings.TrimRight(baseURL, "/"),
		resetTTL:  resetTTL,
		now:       time.Now,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Bio      string
}

// Register creates a new user and signs their first token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
		Bio:          input.Bio,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// ForgotPassword stores a reset token digest and mails the raw token.
// When the mail cannot be sent the token is cleared again.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, digest, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := s.now().Add(s.resetTTL)
	user.ResetPasswordToken = &digest
	user.ResetPasswordExpire = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/api/v1/auth/reset-password/%s", s.baseURL, token)
	msg := mailer.Message{
		To:      user.Email,
		Subject: "Password reset token",
		Body: "You are receiving this email because you (or someone else) has requested the reset of a password. " +
			"Please make a PATCH request to:\n\n" + resetURL,
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		user.ResetPasswordToken = nil
		user.ResetPasswordExpire = nil
		if clearErr := s.userRepo.Update(ctx, user); clearErr != nil {
			return fmt.Errorf("%w: %v (clearing token: %v)", ErrResetEmailNotSent, err, clearErr)
		}
		return fmt.Errorf("%w: %v", ErrResetEmailNotSent, err)
	}

	return nil
}

// ResetPassword sets a new password for the holder of an unexpired reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.userRepo.FindByResetToken(ctx, utils.HashToken(token), s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// Authenticate checks the blocklist first, then the signature and expiry,
// and finally that the token's user still exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	revoked, err := s.blocklist.IsRevoked(ctx, token, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to check token blocklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	// Tokens of a deleted account stay signed but must no longer work.
	if _, err := s.userRepo.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to find token owner: %w", err)
	}
	return claims, nil
}

// Logout revokes token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string, claims *auth.Claims) error {
	if err := s.blocklist.Add(ctx, token, s.tokens.ExpiresAt(claims)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := auth.HashPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}
	return hashed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
