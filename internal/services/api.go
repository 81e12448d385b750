// API client for a running nowplaying server, used by the CLI
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// APIService makes requests against the nowplaying HTTP API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API client for the server at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Detail returns the server's error message, falling back to the raw body.
func (r *APIResponse) Detail() string {
	if m, ok := r.JSONData.(map[string]any); ok {
		if d, ok := m["detail"].(string); ok {
			return d
		}
	}
	return strings.TrimSpace(string(r.Body))
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// NowPlaying fetches the server's current snapshot.
func (a *APIService) NowPlaying(ctx context.Context) (*models.PlaybackSnapshot, error) {
	resp, err := a.Get(ctx, "/spotify_api/now_playing")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, resp.Detail())
	}

	var snap models.PlaybackSnapshot
	if err := json.Unmarshal(resp.Body, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// AuthorizeURL asks the server for the provider authorization URL using the operator secret.
func (a *APIService) AuthorizeURL(ctx context.Context, token string) (string, error) {
	resp, err := a.Get(ctx, "/spotify_api/authorize?token="+url.QueryEscape(token))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: %s", shared.ErrUnauthorized, resp.Detail())
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, resp.Detail())
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.URL == "" {
		return "", fmt.Errorf("%w: missing url in response", shared.ErrAPIRequest)
	}
	return body.URL, nil
}

// Requests increments and returns the server's request counter.
func (a *APIService) Requests(ctx context.Context) (int64, error) {
	resp, err := a.Get(ctx, "/requests")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return 0, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, resp.Detail())
	}

	var body struct {
		Requests int64 `json:"requests"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return 0, fmt.Errorf("failed to decode request count: %w", err)
	}
	return body.Requests, nil
}
