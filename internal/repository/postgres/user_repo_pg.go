package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
	"github.com/AlexandreFrancony/Bartending-Back/internal/repository/ports"
)

const userColumns = `id, username, email, password_hash, role, reset_token, reset_token_expiry, created_at, updated_at`

type UserRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewUserRepo bounds every statement by timeout; zero disables the bound.
func NewUserRepo(db *sqlx.DB, timeout time.Duration) *UserRepository {
	return &UserRepository{db: db, timeout: timeout}
}

func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string, role domain.Role) (*domain.User, error) {
	const query = `
        INSERT INTO users (id, username, email, password_hash, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + userColumns

	ctx, cancel := r.bound(ctx)
	defer cancel()

	var user domain.User
	if err := r.db.QueryRowxContext(ctx, query, uuid.New(), username, email, passwordHash, role).StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1
    `
	return r.get(ctx, query, id)
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
        ORDER BY (LOWER(email) = LOWER($1)) DESC, created_at
        LIMIT 1
    `
	return r.get(ctx, query, login)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE LOWER(email) = LOWER($1)
    `
	return r.get(ctx, query, email)
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM users
            WHERE LOWER(username) IN (LOWER($1), LOWER($2))
               OR LOWER(email) IN (LOWER($1), LOWER($2))
        )
    `
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username, email); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const query = `
        UPDATE users
        SET password_hash = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	return r.execOne(ctx, query, id, passwordHash)
}

func (r *UserRepository) UpdateResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	const query = `
        UPDATE users
        SET reset_token = $2,
            reset_token_expiry = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	return r.execOne(ctx, query, id, tokenHash, expiresAt)
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE reset_token = $1 AND reset_token_expiry > $2
    `
	return r.get(ctx, query, tokenHash, now)
}

func (r *UserRepository) ResetPassword(ctx context.Context, id uuid.UUID, tokenHash, passwordHash string, now time.Time) error {
	const query = `
        UPDATE users
        SET password_hash = $2,
            reset_token = NULL,
            reset_token_expiry = NULL,
            updated_at = NOW()
        WHERE id = $1 AND reset_token = $3 AND reset_token_expiry > $4
    `
	return r.execOne(ctx, query, id, passwordHash, tokenHash, now)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	const query = `
        UPDATE users
        SET role = $2,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns
	return r.get(ctx, query, id, role)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `
	ctx, cancel := r.bound(ctx)
	defer cancel()

	users := make([]domain.User, 0)
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserRepository) Stats(ctx context.Context, now time.Time) (*domain.UserStats, error) {
	const query = `
        SELECT COUNT(*) AS total_users,
               COUNT(*) FILTER (WHERE role = 'admin') AS admins,
               COUNT(*) FILTER (WHERE reset_token IS NOT NULL AND reset_token_expiry > $1) AS active_reset_tokens
        FROM users
    `
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var stats domain.UserStats
	if err := r.db.GetContext(ctx, &stats, query, now); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *UserRepository) get(ctx context.Context, query string, args ...any) (*domain.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, err
	}
	return &user, nil
}

// execOne reports sql.ErrNoRows when the statement touched no row.
func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

var _ ports.UserRepository = (*UserRepository)(nil)
