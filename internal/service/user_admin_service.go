package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
	"github.com/AlexandreFrancony/Bartending-Back/internal/repository/ports"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

const (
	defaultUsersLimit = 20
	maxUsersLimit     = 100
)

type UserListResult struct {
	Users  []domain.User
	Limit  int
	Offset int
}

// UserAdminService backs the admin-only user management endpoints. Role
// changes reach already issued tokens only when those tokens are reissued.
type UserAdminService struct {
	users  ports.UserRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewUserAdminService(users ports.UserRepository, logger *slog.Logger) *UserAdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserAdminService{users: users, logger: logger, now: time.Now}
}

func (s *UserAdminService) ListUsers(ctx context.Context, limit, offset int) (*UserListResult, error) {
	limit, offset = normalizeUsersPagination(limit, offset)
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserListResult{Users: users, Limit: limit, Offset: offset}, nil
}

func (s *UserAdminService) UpdateRole(ctx context.Context, actor domain.Identity, userID uuid.UUID, rawRole string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, ErrInvalidRole
	}
	if actor.UserID == userID {
		return nil, ErrCannotModifySelf
	}

	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.logger.InfoContext(ctx, "user role changed", "user_id", userID.String(), "role", string(role), "actor_id", actor.UserID.String())
	return user, nil
}

func (s *UserAdminService) DeleteUser(ctx context.Context, actor domain.Identity, userID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID == userID {
		return ErrCannotModifySelf
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", userID.String(), "actor_id", actor.UserID.String())
	return nil
}

func (s *UserAdminService) Stats(ctx context.Context) (*domain.UserStats, error) {
	stats, err := s.users.Stats(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}

// EnsureAdmin promotes the account matching input.Username or input.Email, or
// creates a new admin account when none exists. The password of an existing
// account is left untouched.
func (s *UserAdminService) EnsureAdmin(ctx context.Context, input RegisterInput) (*domain.User, bool, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateRegistration(input); err != nil {
		return nil, false, err
	}

	existing, err := s.users.FindByLogin(ctx, input.Username)
	if err != nil && isNotFound(err) {
		existing, err = s.users.FindByEmail(ctx, input.Email)
	}
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, false, nil
		}
		user, err := s.users.UpdateRole(ctx, existing.ID, domain.RoleAdmin)
		if err != nil {
			return nil, false, fmt.Errorf("promote user: %w", err)
		}
		return user, false, nil
	case !isNotFound(err):
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, input.Username, input.Email, hash, domain.RoleAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, ErrUserExists
		}
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return user, true, nil
}

func requireAdmin(actor domain.Identity) error {
	if actor.UserID == uuid.Nil || !actor.HasRole(domain.RoleAdmin) {
		return ErrForbidden
	}
	return nil
}

func normalizeUsersPagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultUsersLimit
	}
	if limit > maxUsersLimit {
		limit = maxUsersLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
