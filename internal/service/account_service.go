package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
	"github.com/AlexandreFrancony/Bartending-Back/internal/repository/ports"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

// PasswordResetSender delivers a reset link to a user.
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, resetLink string) error
}

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AccountService struct {
	users        ports.UserRepository
	tokens       *util.JWTManager
	resets       *ResetTokenStore
	mailer       PasswordResetSender
	resetURLBase string
	logger       *slog.Logger
}

func NewAccountService(users ports.UserRepository, tokens *util.JWTManager, resets *ResetTokenStore, mailer PasswordResetSender, resetURLBase string, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:        users,
		tokens:       tokens,
		resets:       resets,
		mailer:       mailer,
		resetURLBase: strings.TrimSpace(resetURLBase),
		logger:       logger,
	}
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, input.Username, input.Email, hash, domain.RoleUser)
	if err != nil {
		// The unique indexes settle races the pre-check cannot see.
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())
	return s.issue(user)
}

// Login accepts a username or an email address. Unknown accounts and wrong
// passwords produce the same error.
func (s *AccountService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrMissingFields
	}

	// Usernames cannot contain @, so an address only ever names an email.
	find := s.users.FindByLogin
	if strings.Contains(login, "@") {
		find = s.users.FindByEmail
	}
	user, err := find(ctx, login)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !util.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AccountService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingFields
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !util.VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrPasswordMismatch
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.InfoContext(ctx, "password changed", "user_id", user.ID.String())
	return nil
}

// ForgotPassword returns nil for every well-formed address so callers cannot
// tell registered emails apart. Failures after the lookup are only logged.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.logger.InfoContext(ctx, "password reset requested for unknown account")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := s.resets.Issue(ctx, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "issue reset token", "user_id", user.ID.String(), "error", err)
		return nil
	}

	if s.mailer == nil {
		s.logger.WarnContext(ctx, "password reset mailer not configured", "user_id", user.ID.String())
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.resetLink(token)); err != nil {
		s.logger.ErrorContext(ctx, "send password reset email", "user_id", user.ID.String(), "error", err)
		return nil
	}
	s.logger.InfoContext(ctx, "password reset issued", "user_id", user.ID.String())
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingFields
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.resets.Consume(ctx, token, newPassword)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset completed", "user_id", user.ID.String())
	return nil
}

func (s *AccountService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AccountService) resetLink(token string) string {
	base := s.resetURLBase
	if base == "" {
		base = "/reset-password"
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}
