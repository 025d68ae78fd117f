package auth

import (
	"context"
	"time"

	"getfit/internal/domain"
	"getfit/internal/repository"
)

// UserRepositoryInterface — only the methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	RecordLoginFailure(ctx context.Context, userID int64, maxAttempts int, lockout time.Duration) (int, error)
	RecordLoginSuccess(ctx context.Context, userID int64) error
	List(ctx context.Context, f repository.UserFilters) ([]domain.User, int64, error)
}

// RefreshTokenRepositoryInterface — refresh-token storage with rotation.
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, t *repository.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*repository.RefreshToken, error)
	Rotate(ctx context.Context, oldID int64, next *repository.RefreshToken, now time.Time) error
	MarkReuse(ctx context.Context, tokenID int64, familyID string, now time.Time) error
	Revoke(ctx context.Context, tokenID int64, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error
}

// BookingStatsReader is implemented by the booking repository; the profile
// endpoint embeds these aggregates.
type BookingStatsReader interface {
	GetStatsByUserID(ctx context.Context, userID int64) (*repository.UserBookingStats, error)
}
