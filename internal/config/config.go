package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort               = "8080"
	defaultDatabaseURL        = "getfit.db"
	defaultJWTAccessTTL       = "15m"
	defaultRefreshTTL         = "168h"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultRefreshTokenPepper = "change-me-refresh-pepper"
	defaultCancellationWindow = "24h"
	defaultMaxLoginAttempts   = 5
	defaultLockoutDuration    = "15m"
)

type RuntimeConfig struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	JWTSecret          string
	JWTAccessTTL       time.Duration
	RefreshTTL         time.Duration
	RefreshTokenPepper string

	// CancellationWindow is the policy cutoff before a session's start time
	// after which bookings can no longer be cancelled.
	CancellationWindow time.Duration

	MaxLoginAttempts int
	LockoutDuration  time.Duration
}

func Load() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{
		AppEnv:             envOr("APP_ENV", "development"),
		Port:               envOr("PORT", defaultPort),
		DatabaseURL:        envOr("DATABASE_URL", defaultDatabaseURL),
		JWTSecret:          envOr("JWT_SECRET", defaultJWTSecret),
		RefreshTokenPepper: envOr("REFRESH_TOKEN_PEPPER", defaultRefreshTokenPepper),
		MaxLoginAttempts:   defaultMaxLoginAttempts,
	}

	var err error
	if cfg.JWTAccessTTL, err = durationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshTTL, err = durationEnv("REFRESH_TTL", defaultRefreshTTL); err != nil {
		return nil, err
	}
	if cfg.CancellationWindow, err = durationEnv("CANCELLATION_WINDOW", defaultCancellationWindow); err != nil {
		return nil, err
	}
	if cfg.LockoutDuration, err = durationEnv("LOCKOUT_DURATION", defaultLockoutDuration); err != nil {
		return nil, err
	}

	if v := os.Getenv("MAX_LOGIN_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("config: invalid MAX_LOGIN_ATTEMPTS %q", v)
		}
		cfg.MaxLoginAttempts = n
	}

	if cfg.AppEnv == "production" {
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("config: JWT_SECRET must be set in production")
		}
		if cfg.RefreshTokenPepper == defaultRefreshTokenPepper {
			return nil, fmt.Errorf("config: REFRESH_TOKEN_PEPPER must be set in production")
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key, fallback string) (time.Duration, error) {
	raw := envOr(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
