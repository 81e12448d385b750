package services

import (
	"context"

	"github.com/desertthunder/nowplaying/internal/models"
)

// NowPlayingService is the credential lifecycle the HTTP layer exposes.
type NowPlayingService interface {
	// Authorize checks the operator secret and returns the provider authorization URL.
	Authorize(supplied string) (string, error)

	// ExchangeCode trades an authorization code for a stored token pair.
	ExchangeCode(ctx context.Context, code string) error

	// NowPlaying returns the currently playing snapshot, refreshing the access token at most once.
	NowPlaying(ctx context.Context) (*models.PlaybackSnapshot, error)

	// CountRequest increments the shared request counter.
	CountRequest(ctx context.Context) (int64, error)
}
