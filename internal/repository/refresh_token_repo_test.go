package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenLive(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	stamp := now.Add(-time.Minute)

	fresh := RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, fresh.Live(now))

	expired := RefreshToken{ExpiresAt: now.Add(-time.Second)}
	assert.False(t, expired.Live(now))

	used := RefreshToken{ExpiresAt: now.Add(time.Hour), UsedAt: &stamp}
	assert.False(t, used.Live(now))

	revoked := RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &stamp}
	assert.False(t, revoked.Live(now))
}
