package repository

import (
	"context"
	"strings"
	"time"

	"getfit/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID                  int64      `gorm:"column:id;primaryKey"`
	Email               string     `gorm:"column:email;uniqueIndex"`
	PasswordHash        string     `gorm:"column:password_hash"`
	Role                string     `gorm:"column:role;index"`
	FirstName           string     `gorm:"column:first_name"`
	LastName            string     `gorm:"column:last_name"`
	Phone               *string    `gorm:"column:phone"`
	Bio                 *string    `gorm:"column:bio"`
	ProfilePicture      *string    `gorm:"column:profile_picture"`
	IsActive            bool       `gorm:"column:is_active;index"`
	IsVerified          bool       `gorm:"column:is_verified"`
	FailedLoginAttempts int        `gorm:"column:failed_login_attempts"`
	LockedUntil         *time.Time `gorm:"column:locked_until"`
	DateJoined          time.Time  `gorm:"column:date_joined"`
	LastLogin           *time.Time `gorm:"column:last_login"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var phone, bio, picture string
	if m.Phone != nil {
		phone = *m.Phone
	}
	if m.Bio != nil {
		bio = *m.Bio
	}
	if m.ProfilePicture != nil {
		picture = *m.ProfilePicture
	}

	return &domain.User{
		ID:                  m.ID,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		Role:                domain.UserRole(m.Role),
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		Phone:               phone,
		Bio:                 bio,
		ProfilePicture:      picture,
		IsActive:            m.IsActive,
		IsVerified:          m.IsVerified,
		FailedLoginAttempts: m.FailedLoginAttempts,
		LockedUntil:         m.LockedUntil,
		DateJoined:          m.DateJoined,
		LastLogin:           m.LastLogin,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	email := strings.TrimSpace(strings.ToLower(u.Email))

	return userModel{
		ID:                  u.ID,
		Email:               email,
		PasswordHash:        u.PasswordHash,
		Role:                string(u.Role),
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Phone:               nullableString(u.Phone),
		Bio:                 nullableString(u.Bio),
		ProfilePicture:      nullableString(u.ProfilePicture),
		IsActive:            u.IsActive,
		IsVerified:          u.IsVerified,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LockedUntil:         u.LockedUntil,
		DateJoined:          u.DateJoined,
		LastLogin:           u.LastLogin,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func nullableString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if m.DateJoined.IsZero() {
		m.DateJoined = time.Now()
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

// RecordLoginFailure bumps the failure counter and locks the account once the
// limit is reached. Returns the new counter value.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, userID int64, maxAttempts int, lockout time.Duration) (int, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, userID).Error; err != nil {
		return 0, err
	}

	attempts := m.FailedLoginAttempts + 1
	updates := map[string]any{"failed_login_attempts": attempts}
	if attempts >= maxAttempts {
		updates["locked_until"] = time.Now().Add(lockout)
	}

	if err := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return 0, err
	}
	return attempts, nil
}

// RecordLoginSuccess clears lockout state and stamps last_login.
func (r *UserRepository) RecordLoginSuccess(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", userID).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login":            time.Now(),
	}).Error
}

type UserFilters struct {
	Role     string
	IsActive *bool
	Limit    int
	Offset   int
}

func (r *UserRepository) List(ctx context.Context, f UserFilters) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&userModel{})

	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	var rows []userModel
	if err := q.Order("date_joined DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainUser(m))
	}
	return out, total, nil
}
