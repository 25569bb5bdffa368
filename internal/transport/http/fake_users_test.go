package http

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUsers is an in-memory user repository for handler tests.
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uuid.UUID]domain.User)}
}

func (m *memUsers) Create(ctx context.Context, username, email, passwordHash string, role domain.Role) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	u := domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *memUsers) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id })
}

func (m *memUsers) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	return m.find(func(u domain.User) bool {
		return strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login)
	})
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memUsers) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := m.find(func(u domain.User) bool {
		for _, v := range []string{username, email} {
			if strings.EqualFold(u.Username, v) || strings.EqualFold(u.Email, v) {
				return true
			}
		}
		return false
	})
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *memUsers) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.update(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (m *memUsers) UpdateResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return m.update(id, func(u *domain.User) {
		u.ResetToken = &tokenHash
		u.ResetTokenExpiry = &expiresAt
	})
}

func (m *memUsers) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return liveResetToken(u, tokenHash, now) })
}

func (m *memUsers) ResetPassword(ctx context.Context, id uuid.UUID, tokenHash, passwordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !liveResetToken(u, tokenHash, now) {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
	m.users[id] = u
	return nil
}

func (m *memUsers) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	if err := m.update(id, func(u *domain.User) { u.Role = role }); err != nil {
		return nil, err
	}
	return m.FindByID(ctx, id)
}

func (m *memUsers) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	if offset >= len(all) {
		return []domain.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memUsers) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) Stats(ctx context.Context, now time.Time) (*domain.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.UserStats{}
	for _, u := range m.users {
		stats.TotalUsers++
		if u.Role == domain.RoleAdmin {
			stats.Admins++
		}
		if u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			stats.ActiveResetTokens++
		}
	}
	return stats, nil
}

func (m *memUsers) find(match func(domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) update(id uuid.UUID, apply func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	apply(&u)
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return nil
}

func liveResetToken(u domain.User, tokenHash string, now time.Time) bool {
	return u.ResetToken != nil && *u.ResetToken == tokenHash &&
		u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now)
}

// capturedReset records the last reset link instead of sending mail.
type capturedReset struct {
	mu    sync.Mutex
	email string
	link  string
}

func (c *capturedReset) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = email
	c.link = resetLink
	return nil
}

func (c *capturedReset) last() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.email, c.link
}
