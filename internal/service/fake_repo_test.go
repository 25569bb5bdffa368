package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
)

// fakeUserRepo keeps users in memory with the same case-insensitive matching
// and not-found semantics as the postgres repository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	now   func() time.Time

	createErr       error
	skipExistsCheck bool
	findErr         error

	updateResetTokenCalls int
	resetPasswordCalls    int
	listInput             struct{ limit, offset int }
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User), now: time.Now}
}

func (f *fakeUserRepo) Create(ctx context.Context, username, email, passwordHash string, role domain.Role) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	now := f.now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[user.ID] = user
	return cloneUser(user), nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneUser(user), nil
}

func (f *fakeUserRepo) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool {
		return strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login)
	})
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	if f.skipExistsCheck {
		return false, nil
	}
	_, err := f.find(func(u *domain.User) bool {
		return matchesEither(u.Username, username, email) || matchesEither(u.Email, username, email)
	})
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateResetTokenCalls++
	user, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.ResetToken = &tokenHash
	user.ResetTokenExpiry = &expiresAt
	return nil
}

func (f *fakeUserRepo) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return resetTokenMatches(u, tokenHash, now) })
}

func (f *fakeUserRepo) ResetPassword(ctx context.Context, id uuid.UUID, tokenHash, passwordHash string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetPasswordCalls++
	user, ok := f.users[id]
	if !ok || !resetTokenMatches(user, tokenHash, now) {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	return nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	user.Role = role
	return cloneUser(user), nil
}

func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listInput.limit = limit
	f.listInput.offset = offset
	all := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, *cloneUser(u))
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

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) Stats(ctx context.Context, now time.Time) (*domain.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.UserStats{}
	for _, u := range f.users {
		stats.TotalUsers++
		if u.IsAdmin() {
			stats.Admins++
		}
		if u.ResetToken != nil && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			stats.ActiveResetTokens++
		}
	}
	return stats, nil
}

func (f *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) stored(id uuid.UUID) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneUser(f.users[id])
}

func matchesEither(value, a, b string) bool {
	return strings.EqualFold(value, a) || strings.EqualFold(value, b)
}

func resetTokenMatches(u *domain.User, tokenHash string, now time.Time) bool {
	return u.ResetToken != nil && *u.ResetToken == tokenHash &&
		u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now)
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.ResetToken != nil {
		token := *u.ResetToken
		c.ResetToken = &token
	}
	if u.ResetTokenExpiry != nil {
		expiry := *u.ResetTokenExpiry
		c.ResetTokenExpiry = &expiry
	}
	return &c
}

type fakeResetMailer struct {
	email string
	link  string
	calls int
	err   error
}

func (m *fakeResetMailer) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	m.calls++
	m.email = email
	m.link = resetLink
	return m.err
}
