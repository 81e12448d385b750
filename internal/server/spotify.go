package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/services"
)

const (
	authorizePath  = "/spotify_api/authorize"
	callbackPath   = "/spotify_api/callback"
	nowPlayingPath = "/spotify_api/now_playing"
)

// SpotifyHandler serves the authorization, callback and now-playing endpoints.
// Implements the [Handler] interface for registration with a [Router].
type SpotifyHandler struct {
	service services.NowPlayingService
	logger  *log.Logger
}

// NewSpotifyHandler creates a handler backed by service.
func NewSpotifyHandler(service services.NowPlayingService, logger *log.Logger) *SpotifyHandler {
	return &SpotifyHandler{service: service, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SpotifyHandler) Routes() []string {
	return []string{authorizePath, callbackPath, nowPlayingPath}
}

// ServeHTTP dispatches GET requests by path.
func (h *SpotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch r.URL.Path {
	case authorizePath:
		h.authorize(w, r)
	case callbackPath:
		h.callback(w, r)
	case nowPlayingPath:
		h.nowPlaying(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// authorize returns the provider authorization URL when the token query parameter matches the process secret.
func (h *SpotifyHandler) authorize(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.Authorize(r.URL.Query().Get("token"))
	if err != nil {
		h.logger.Warn("authorization attempt rejected", "remote", r.RemoteAddr)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// callback receives the provider redirect and exchanges the code.
func (h *SpotifyHandler) callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		if reason := r.URL.Query().Get("error"); reason != "" {
			h.logger.Warn("authorization denied by provider", "error", reason)
		}
		writeError(w, http.StatusBadRequest, "no code")
		return
	}

	if err := h.service.ExchangeCode(r.Context(), code); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// nowPlaying serves the current snapshot. The legacy loop parameter is accepted and ignored.
func (h *SpotifyHandler) nowPlaying(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.NowPlaying(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch currently playing", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
