package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"getfit/internal/domain"
	"getfit/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

// Config carries the tunables the service needs from runtime config.
type Config struct {
	MaxLoginAttempts   int
	LockoutDuration    time.Duration
	RefreshTokenPepper string
	RefreshTTL         time.Duration
}

type Service struct {
	users  UserRepositoryInterface
	tokens RefreshTokenRepositoryInterface
	stats  BookingStatsReader
	jwt    jwtService
	cfg    Config
}

func NewService(
	users UserRepositoryInterface,
	tokens RefreshTokenRepositoryInterface,
	stats BookingStatsReader,
	jwt jwtService,
	cfg Config,
) *Service {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Service{users: users, tokens: tokens, stats: stats, jwt: jwt, cfg: cfg}
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// Register creates a member account. Instructor and admin accounts are seeded
// or created by an admin, never self-registered.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
		DateJoined:   time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest, userAgent, ip string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		attempts, recErr := s.users.RecordLoginFailure(ctx, user.ID, s.cfg.MaxLoginAttempts, s.cfg.LockoutDuration)
		if recErr != nil {
			return nil, recErr
		}
		if attempts >= s.cfg.MaxLoginAttempts {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID); err != nil {
		return nil, err
	}

	accessToken, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	refreshRaw, refreshHash, err := generateOpaqueRefreshToken(s.cfg.RefreshTokenPepper)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, &repository.RefreshToken{
		UserID:    user.ID,
		TokenHash: refreshHash,
		JTI:       uuid.NewString(),
		FamilyID:  uuid.NewString(),
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		UserAgent: nullableString(userAgent),
		IP:        nullableString(ip),
	}); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshRaw}, nil
}

// RefreshSession rotates the refresh token. A replayed token (already used or
// revoked) burns its whole family.
func (s *Service) RefreshSession(ctx context.Context, refreshRaw, userAgent, ip string) (*RefreshResult, error) {
	now := time.Now()
	hash := hashTokenWithPepper(refreshRaw, s.cfg.RefreshTokenPepper)

	current, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if current.UsedAt != nil || current.RevokedAt != nil {
		if err := s.tokens.MarkReuse(ctx, current.ID, current.FamilyID, now); err != nil {
			return nil, err
		}
		return nil, ErrRefreshTokenReused
	}
	if !current.Live(now) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		if err := s.tokens.MarkReuse(ctx, current.ID, current.FamilyID, now); err != nil {
			return nil, err
		}
		return nil, ErrAccountDisabled
	}

	accessToken, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	newRaw, newHash, err := generateOpaqueRefreshToken(s.cfg.RefreshTokenPepper)
	if err != nil {
		return nil, err
	}

	next := &repository.RefreshToken{
		UserID:    current.UserID,
		TokenHash: newHash,
		JTI:       uuid.NewString(),
		FamilyID:  current.FamilyID,
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		UserAgent: nullableString(userAgent),
		IP:        nullableString(ip),
	}
	if err := s.tokens.Rotate(ctx, current.ID, next, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost a rotation race; treat as reuse.
			return nil, ErrRefreshTokenReused
		}
		return nil, err
	}

	return &RefreshResult{AccessToken: accessToken, RefreshToken: newRaw}, nil
}

func (s *Service) Logout(ctx context.Context, refreshRaw string) error {
	hash := hashTokenWithPepper(refreshRaw, s.cfg.RefreshTokenPepper)
	token, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.tokens.Revoke(ctx, token.ID, time.Now())
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*domain.User, *repository.UserBookingStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	user.PasswordHash = ""

	stats, err := s.stats.GetStatsByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, stats, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		user.LastName = strings.TrimSpace(req.LastName)
	}
	if req.Phone != "" {
		user.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.ProfilePicture != "" {
		user.ProfilePicture = req.ProfilePicture
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and kills
// every open session.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	return s.tokens.RevokeAllForUser(ctx, userID, time.Now())
}

// ListUsers is the admin user directory.
func (s *Service) ListUsers(ctx context.Context, f repository.UserFilters) ([]domain.User, int64, error) {
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// SetUserActive toggles the soft-disable flag; disabling also revokes every
// refresh token.
func (s *Service) SetUserActive(ctx context.Context, id int64, active bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if !active {
		if err := s.tokens.RevokeAllForUser(ctx, id, time.Now()); err != nil {
			return nil, err
		}
	}
	user.PasswordHash = ""
	return user, nil
}

func UserToPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:             u.ID,
		Email:          u.Email,
		Role:           string(u.Role),
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.DisplayName(),
		Phone:          u.Phone,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		IsVerified:     u.IsVerified,
		DateJoined:     u.DateJoined.Format(time.RFC3339),
	}
}

func generateOpaqueRefreshToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashTokenWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

func nullableString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
