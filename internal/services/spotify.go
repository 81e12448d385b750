// Spotify API implementation of [NowPlayingService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/metrics"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/store"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	currentlyPlayingScope = "user-read-currently-playing"
	currentlyPlayingPath  = "/me/player/currently-playing"

	// maxNowPlayingAttempts bounds a logical now-playing request to the first call plus one retry after a refresh.
	maxNowPlayingAttempts = 2
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []SpotifyArtist   `json:"artists"`
	Album        SpotifyAlbum      `json:"album"`
	DurationMS   int64             `json:"duration_ms"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

// SpotifyCurrentlyPlaying is the body of GET /me/player/currently-playing.
//
// Item is nil for content Spotify doesn't describe, such as ads.
type SpotifyCurrentlyPlaying struct {
	IsPlaying            bool          `json:"is_playing"`
	ProgressMS           int64         `json:"progress_ms"`
	CurrentlyPlayingType string        `json:"currently_playing_type"`
	Item                 *SpotifyTrack `json:"item"`
}

// Snapshot formats the response for public clients.
func (c SpotifyCurrentlyPlaying) Snapshot() *models.PlaybackSnapshot {
	if c.Item == nil {
		return models.NotPlaying()
	}
	item := c.Item

	artists := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		artists = append(artists, a.Name)
	}

	var cover string
	if len(item.Album.Images) > 0 {
		cover = item.Album.Images[0].URL
	}

	return &models.PlaybackSnapshot{
		IsPlaying:  true,
		Title:      item.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      item.Album.Name,
		AlbumCover: cover,
		SongURL:    item.ExternalURLs["spotify"],
		Duration:   models.FormatClock(item.DurationMS),
		Current:    models.FormatClock(c.ProgressMS),
		Progress:   models.Progress(c.ProgressMS, item.DurationMS),
	}
}

// Endpoints are the provider URLs. Tests point them at an [httptest.Server].
type Endpoints struct {
	AuthURL  string
	TokenURL string
	APIURL   string
}

// DefaultEndpoints returns the production Spotify URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{AuthURL: spotifyAuthURL, TokenURL: spotifyTokenURL, APIURL: spotifyBaseURL}
}

// SpotifyOpts contains the dependencies for a [SpotifyService].
type SpotifyOpts struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Secret       shared.Secret
	Store        store.Store
	HTTPClient   *http.Client
	Endpoints    Endpoints
	Logger       *log.Logger
	Metrics      *metrics.Metrics
}

// SpotifyService implements the credential lifecycle for the single authorized account:
// the authorization gate, the code exchange, the refresh protocol and the now-playing fetcher.
//
// It holds no token state; every operation reads and writes through the [store.Store].
type SpotifyService struct {
	config     *oauth2.Config
	secret     shared.Secret
	store      store.Store
	httpClient *http.Client
	apiURL     string
	logger     *log.Logger
	metrics    *metrics.Metrics

	// refreshes collapses concurrent refreshes in this process into one provider call
	refreshes singleflight.Group
}

var _ NowPlayingService = (*SpotifyService)(nil)

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if opts.RedirectURI == "" {
		return nil, fmt.Errorf("%w: missing redirect_uri", shared.ErrInvalidConfig)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: missing credential store", shared.ErrInvalidConfig)
	}

	endpoints := DefaultEndpoints()
	if opts.Endpoints.AuthURL != "" {
		endpoints.AuthURL = opts.Endpoints.AuthURL
	}
	if opts.Endpoints.TokenURL != "" {
		endpoints.TokenURL = opts.Endpoints.TokenURL
	}
	if opts.Endpoints.APIURL != "" {
		endpoints.APIURL = strings.TrimSuffix(opts.Endpoints.APIURL, "/")
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURI,
		Scopes:       []string{currentlyPlayingScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:   endpoints.AuthURL,
			TokenURL:  endpoints.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyService{
		config:     config,
		secret:     opts.Secret,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		apiURL:     endpoints.APIURL,
		logger:     shared.WithLogger(opts.Logger, "service", "spotify"),
		metrics:    opts.Metrics,
	}, nil
}

// Authorize returns the Spotify authorization URL when supplied matches the process secret.
//
// The URL is computed from configuration alone and carries no state parameter.
func (s *SpotifyService) Authorize(supplied string) (string, error) {
	if !s.secret.Matches(supplied) {
		return "", fmt.Errorf("%w: authorization token mismatch", shared.ErrUnauthorized)
	}
	return s.config.AuthCodeURL(""), nil
}

// ExchangeCode trades an authorization code for a token pair and stores both tokens.
//
// Nothing is written unless the provider accepts the code and returns both tokens.
// Any 2xx token response counts as acceptance.
func (s *SpotifyService) ExchangeCode(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("%w: no code", shared.ErrBadRequest)
	}

	start := time.Now()
	token, err := s.config.Exchange(s.clientContext(ctx), code)
	s.metrics.UpstreamRequest(metrics.EndpointToken, statusOf(err), time.Since(start))
	if err != nil {
		return s.upstreamError("code exchange", err)
	}
	if token.RefreshToken == "" {
		s.logger.Error("code exchange returned no refresh token")
		return fmt.Errorf("%w: code exchange returned no refresh token", shared.ErrUpstream)
	}

	pair := models.TokenPair{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}
	if err := store.SaveTokens(ctx, s.store, pair); err != nil {
		return err
	}

	s.logger.Info("authorization code exchanged", "expires", token.Expiry)
	return nil
}

// Refresh trades the stored refresh token for a new access token and stores it.
//
// The stored refresh token is never modified. Concurrent callers in this process share one provider call.
func (s *SpotifyService) Refresh(ctx context.Context) error {
	// The shared call must outlive the caller that happened to start it.
	detached := context.WithoutCancel(ctx)
	_, err, joined := s.refreshes.Do("refresh", func() (any, error) {
		return nil, s.refresh(detached)
	})
	if joined {
		s.logger.Debug("joined in-flight refresh")
	}
	return err
}

func (s *SpotifyService) refresh(ctx context.Context) error {
	refreshToken, err := store.GetOptional(ctx, s.store, store.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("failed to read refresh token: %w", err)
	}
	if refreshToken == "" {
		s.metrics.Refresh(metrics.RefreshFailure)
		s.logger.Error("refresh requested before authorization")
		return fmt.Errorf("%w: %w", shared.ErrUpstream, shared.ErrNoRefreshToken)
	}

	start := time.Now()
	source := s.config.TokenSource(s.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	s.metrics.UpstreamRequest(metrics.EndpointToken, statusOf(err), time.Since(start))
	if err != nil {
		s.metrics.Refresh(metrics.RefreshFailure)
		return s.upstreamError("token refresh", err)
	}

	if err := s.store.Set(ctx, store.KeyAccessToken, token.AccessToken); err != nil {
		s.metrics.Refresh(metrics.RefreshFailure)
		return fmt.Errorf("failed to store access token: %w", err)
	}

	s.metrics.Refresh(metrics.RefreshSuccess)
	s.logger.Info("access token refreshed", "expires", token.Expiry)
	return nil
}

// NowPlaying fetches and formats the account's currently playing track.
//
// A 401 or 403 triggers one refresh and one retry; a second rejection fails with [shared.ErrUpstream].
// An empty body, a body without an item, or any other status reports nothing playing.
func (s *SpotifyService) NowPlaying(ctx context.Context) (*models.PlaybackSnapshot, error) {
	for attempt := 1; attempt <= maxNowPlayingAttempts; attempt++ {
		status, body, err := s.fetchCurrentlyPlaying(ctx)
		if err != nil {
			return nil, err
		}

		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			if attempt == maxNowPlayingAttempts {
				s.logger.Error("currently playing rejected after refresh", "status", status, "body", string(body))
				return nil, fmt.Errorf("%w: currently playing returned %d after refresh", shared.ErrUpstream, status)
			}

			s.logger.Info("access token rejected, refreshing", "status", status)
			if err := s.Refresh(ctx); err != nil {
				return nil, err
			}
			continue
		}

		return parseCurrentlyPlaying(status, body)
	}

	return nil, fmt.Errorf("%w: retries exhausted", shared.ErrUpstream)
}

// fetchCurrentlyPlaying performs one GET with the stored access token.
func (s *SpotifyService) fetchCurrentlyPlaying(ctx context.Context) (int, []byte, error) {
	accessToken, err := store.GetOptional(ctx, s.store, store.KeyAccessToken)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+currentlyPlayingPath, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.metrics.UpstreamRequest(metrics.EndpointNowPlaying, 0, time.Since(start))
		return 0, nil, fmt.Errorf("%w: request failed: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.metrics.UpstreamRequest(metrics.EndpointNowPlaying, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrUpstream, err)
	}

	return resp.StatusCode, body, nil
}

func parseCurrentlyPlaying(status int, body []byte) (*models.PlaybackSnapshot, error) {
	if len(bytes.TrimSpace(body)) == 0 || status != http.StatusOK {
		return models.NotPlaying(), nil
	}

	var playing SpotifyCurrentlyPlaying
	if err := json.Unmarshal(body, &playing); err != nil {
		return nil, fmt.Errorf("%w: failed to decode currently playing: %v", shared.ErrUpstream, err)
	}

	return playing.Snapshot(), nil
}

// CountRequest increments and returns the shared request counter.
func (s *SpotifyService) CountRequest(ctx context.Context) (int64, error) {
	n, err := s.store.Incr(ctx, store.KeyRequestCount)
	if err != nil {
		return 0, fmt.Errorf("failed to increment request count: %w", err)
	}
	return n, nil
}

// clientContext makes the oauth2 package use the service's [http.Client] and its timeout.
func (s *SpotifyService) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// upstreamError logs the provider's response body and wraps err as [shared.ErrUpstream].
func (s *SpotifyService) upstreamError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		s.logger.Error(op+" rejected", "status", statusOf(err), "body", string(re.Body))
		return fmt.Errorf("%w: %s returned %d", shared.ErrUpstream, op, statusOf(err))
	}
	s.logger.Error(op+" failed", "error", err)
	return fmt.Errorf("%w: %s: %v", shared.ErrUpstream, op, err)
}

// statusOf extracts the provider status from an oauth2 error. Success is 200; transport failures are 0.
func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return re.Response.StatusCode
	}
	return 0
}
