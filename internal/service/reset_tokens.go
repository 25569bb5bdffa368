package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
	"github.com/AlexandreFrancony/Bartending-Back/internal/repository/ports"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

const DefaultResetTokenTTL = time.Hour

// ResetTokenStore manages single-use password reset secrets. Only the SHA-256
// digest of a secret is persisted, together with its expiry.
type ResetTokenStore struct {
	users ports.UserRepository
	ttl   time.Duration
	now   func() time.Time
}

func NewResetTokenStore(users ports.UserRepository, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenStore{users: users, ttl: ttl, now: time.Now}
}

// Issue replaces any previous reset token of user and returns the plaintext
// secret for delivery.
func (s *ResetTokenStore) Issue(ctx context.Context, user *domain.User) (string, error) {
	token, err := util.GenerateResetToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	expiresAt := s.now().Add(s.ttl)
	if err := s.users.UpdateResetToken(ctx, user.ID, util.HashResetToken(token), expiresAt); err != nil {
		if isNotFound(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// Consume sets newPassword for the owner of token and invalidates the token.
// Unknown, expired and already used tokens all yield ErrResetTokenInvalid.
func (s *ResetTokenStore) Consume(ctx context.Context, token, newPassword string) (*domain.User, error) {
	digest := util.HashResetToken(token)
	now := s.now()

	user, err := s.users.FindByResetToken(ctx, digest, now)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.ResetPassword(ctx, user.ID, digest, hash, now); err != nil {
		if isNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("reset password: %w", err)
	}

	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	return user, nil
}
