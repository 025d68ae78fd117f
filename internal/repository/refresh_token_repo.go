package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// RefreshToken stores only a peppered SHA-256 of the opaque token. FamilyID
// ties together every token descended from one login so a replay of a rotated
// token can revoke the whole chain.
type RefreshToken struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	UserID          int64      `gorm:"column:user_id;index"`
	TokenHash       string     `gorm:"column:token_hash;uniqueIndex"`
	JTI             string     `gorm:"column:jti"`
	FamilyID        string     `gorm:"column:family_id;index"`
	RotatedFrom     *int64     `gorm:"column:rotated_from"`
	ExpiresAt       time.Time  `gorm:"column:expires_at;index"`
	UsedAt          *time.Time `gorm:"column:used_at"`
	RevokedAt       *time.Time `gorm:"column:revoked_at"`
	ReuseDetectedAt *time.Time `gorm:"column:reuse_detected_at"`
	UserAgent       *string    `gorm:"column:user_agent"`
	IP              *string    `gorm:"column:ip"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// Live reports whether the token may still be rotated.
func (t *RefreshToken) Live(now time.Time) bool {
	return t.UsedAt == nil && t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*RefreshToken, error) {
	var t RefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Rotate retires the old token and inserts its successor atomically. The
// guard on used_at/revoked_at makes concurrent rotations of the same token
// lose cleanly: zero rows affected surfaces as ErrRecordNotFound.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID int64, next *RefreshToken, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&RefreshToken{}).
			Where("id = ? AND used_at IS NULL AND revoked_at IS NULL", oldID).
			Updates(map[string]any{
				"used_at":    now,
				"revoked_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		next.RotatedFrom = &oldID
		return tx.Create(next).Error
	})
}

// MarkReuse flags the replayed token and revokes every live token in its
// family.
func (r *RefreshTokenRepository) MarkReuse(ctx context.Context, tokenID int64, familyID string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&RefreshToken{}).
			Where("id = ?", tokenID).
			Update("reuse_detected_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&RefreshToken{}).
			Where("family_id = ? AND revoked_at IS NULL", familyID).
			Update("revoked_at", now).Error
	})
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenID int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", now).Error
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&RefreshToken{})
	return res.RowsAffected, res.Error
}
