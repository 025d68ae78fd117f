package auth

import (
	"context"
	"testing"
	"time"

	"getfit/internal/domain"
	"getfit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) RecordLoginFailure(ctx context.Context, userID int64, maxAttempts int, lockout time.Duration) (int, error) {
	args := m.Called(ctx, userID, maxAttempts, lockout)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepo) RecordLoginSuccess(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, f repository.UserFilters) ([]domain.User, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, t *repository.RefreshToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTokenRepo) GetByHash(ctx context.Context, hash string) (*repository.RefreshToken, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.RefreshToken), args.Error(1)
}

func (m *mockTokenRepo) Rotate(ctx context.Context, oldID int64, next *repository.RefreshToken, now time.Time) error {
	args := m.Called(ctx, oldID, next, now)
	return args.Error(0)
}

func (m *mockTokenRepo) MarkReuse(ctx context.Context, tokenID int64, familyID string, now time.Time) error {
	args := m.Called(ctx, tokenID, familyID, now)
	return args.Error(0)
}

func (m *mockTokenRepo) Revoke(ctx context.Context, tokenID int64, now time.Time) error {
	args := m.Called(ctx, tokenID, now)
	return args.Error(0)
}

func (m *mockTokenRepo) RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error {
	args := m.Called(ctx, userID, now)
	return args.Error(0)
}

type mockStatsReader struct {
	mock.Mock
}

func (m *mockStatsReader) GetStatsByUserID(ctx context.Context, userID int64) (*repository.UserBookingStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UserBookingStats), args.Error(1)
}

type mockJWT struct {
	mock.Mock
}

func (m *mockJWT) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func newTestService(users *mockUserRepo, tokens *mockTokenRepo, jwt *mockJWT) *Service {
	return NewService(users, tokens, &mockStatsReader{}, jwt, Config{
		MaxLoginAttempts:   5,
		LockoutDuration:    15 * time.Minute,
		RefreshTokenPepper: "pepper",
		RefreshTTL:         7 * 24 * time.Hour,
	})
}

func TestRegister_Success(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockTokenRepo), new(mockJWT))

	users.On("ExistsByEmail", mock.Anything, "New@Example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "new@example.com" && u.Role == domain.RoleUser && u.IsActive
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 7
	}).Return(nil)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "New@Example.com",
		Password:  "secret-password",
		FirstName: "Dana",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Empty(t, user.PasswordHash)
	users.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockTokenRepo), new(mockJWT))

	users.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "taken@example.com",
		Password:  "secret-password",
		FirstName: "Dana",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           1,
		Email:        "member@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

func TestLogin_Success(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockTokenRepo)
	jwt := new(mockJWT)
	svc := newTestService(users, tokens, jwt)

	users.On("GetByEmail", mock.Anything, "member@example.com").Return(activeUser(t, "correct-horse"), nil)
	users.On("RecordLoginSuccess", mock.Anything, int64(1)).Return(nil)
	jwt.On("GenerateToken", int64(1), "user").Return("access-token", nil)
	tokens.On("Create", mock.Anything, mock.MatchedBy(func(tok *repository.RefreshToken) bool {
		return tok.UserID == 1 && tok.TokenHash != "" && tok.FamilyID != ""
	})).Return(nil)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "member@example.com",
		Password: "correct-horse",
	}, "ua", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "access-token", result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Empty(t, result.User.PasswordHash)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockTokenRepo), new(mockJWT))

	users.On("GetByEmail", mock.Anything, "member@example.com").Return(activeUser(t, "correct-horse"), nil)
	users.On("RecordLoginFailure", mock.Anything, int64(1), 5, 15*time.Minute).Return(1, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "member@example.com",
		Password: "wrong",
	}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LockoutOnFifthFailure(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockTokenRepo), new(mockJWT))

	users.On("GetByEmail", mock.Anything, "member@example.com").Return(activeUser(t, "correct-horse"), nil)
	users.On("RecordLoginFailure", mock.Anything, int64(1), 5, 15*time.Minute).Return(5, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "member@example.com",
		Password: "wrong",
	}, "", "")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLogin_LockedAccountRejectedBeforePasswordCheck(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockTokenRepo), new(mockJWT))

	user := activeUser(t, "correct-horse")
	until := time.Now().Add(10 * time.Minute)
	user.LockedUntil = &until
	users.On("GetByEmail", mock.Anything, "member@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "member@example.com",
		Password: "correct-horse",
	}, "", "")
	assert.ErrorIs(t, err, ErrAccountLocked)
	users.AssertNotCalled(t, "RecordLoginSuccess", mock.Anything, mock.Anything)
}

func TestLogin_DisabledAccount(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockTokenRepo), new(mockJWT))

	user := activeUser(t, "correct-horse")
	user.IsActive = false
	users.On("GetByEmail", mock.Anything, "member@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "member@example.com",
		Password: "correct-horse",
	}, "", "")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockTokenRepo), new(mockJWT))

	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshSession_ReuseBurnsFamily(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockTokenRepo)
	svc := newTestService(users, tokens, new(mockJWT))

	used := time.Now().Add(-time.Hour)
	tokens.On("GetByHash", mock.Anything, mock.Anything).Return(&repository.RefreshToken{
		ID:        3,
		UserID:    1,
		FamilyID:  "fam",
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &used,
	}, nil)
	tokens.On("MarkReuse", mock.Anything, int64(3), "fam", mock.Anything).Return(nil)

	_, err := svc.RefreshSession(context.Background(), "stolen-token", "", "")
	assert.ErrorIs(t, err, ErrRefreshTokenReused)
	tokens.AssertExpectations(t)
}

func TestRefreshSession_ExpiredToken(t *testing.T) {
	tokens := new(mockTokenRepo)
	svc := newTestService(new(mockUserRepo), tokens, new(mockJWT))

	tokens.On("GetByHash", mock.Anything, mock.Anything).Return(&repository.RefreshToken{
		ID:        4,
		UserID:    1,
		FamilyID:  "fam",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	_, err := svc.RefreshSession(context.Background(), "old-token", "", "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	tokens.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockTokenRepo)
	svc := newTestService(users, tokens, new(mockJWT))

	users.On("GetByID", mock.Anything, int64(1)).Return(activeUser(t, "correct-horse"), nil)

	err := svc.ChangePassword(context.Background(), 1, ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "brand-new-password",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)
	tokens.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_RevokesSessions(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockTokenRepo)
	svc := newTestService(users, tokens, new(mockJWT))

	users.On("GetByID", mock.Anything, int64(1)).Return(activeUser(t, "correct-horse"), nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	tokens.On("RevokeAllForUser", mock.Anything, int64(1), mock.Anything).Return(nil)

	err := svc.ChangePassword(context.Background(), 1, ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "brand-new-password",
	})
	require.NoError(t, err)
	tokens.AssertExpectations(t)
}
