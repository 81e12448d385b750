package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

const (
	KeyAccessToken  = "spotify_access_token"
	KeyRefreshToken = "spotify_refresh_token"
	KeyRequestCount = "request_count"
)

// ErrNotFound is returned by [Store.Get] when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is a key/value store with atomic operations on individual keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error) // Get returns [ErrNotFound] for unset keys
	Set(ctx context.Context, key, value string) error    // Set overwrites any previous value
	Incr(ctx context.Context, key string) (int64, error) // Incr adds one, treating unset keys as zero
	Ping(ctx context.Context) error                      // Ping checks the backend is reachable
	Close() error
}

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg shared.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case shared.StoreDriverRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case shared.StoreDriverSQLite:
		return NewSQLiteStore(cfg.SQLite)
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// GetOptional reads key, mapping [ErrNotFound] to the empty string.
func GetOptional(ctx context.Context, s Store, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// LoadTokens reads the stored pair. Unset keys come back empty.
func LoadTokens(ctx context.Context, s Store) (models.TokenPair, error) {
	access, err := GetOptional(ctx, s, KeyAccessToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to read access token: %w", err)
	}

	refresh, err := GetOptional(ctx, s, KeyRefreshToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to read refresh token: %w", err)
	}

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// SaveTokens writes both halves of the pair, access token first.
//
// The writes are not atomic: if the refresh token write fails the new access token
// has already replaced the old one.
func SaveTokens(ctx context.Context, s Store, pair models.TokenPair) error {
	if err := s.Set(ctx, KeyAccessToken, pair.AccessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := s.Set(ctx, KeyRefreshToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}
