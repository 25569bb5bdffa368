package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
)

// UserRepository persists accounts. Lookups that match nothing return
// sql.ErrNoRows; username and email comparisons are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string, role domain.Role) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	// ResetPassword stores the new hash and clears the reset token in one
	// statement, only while tokenHash is still current and unexpired.
	ResetPassword(ctx context.Context, id uuid.UUID, tokenHash, passwordHash string, now time.Time) error
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, now time.Time) (*domain.UserStats, error)
}
