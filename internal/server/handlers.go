package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/store"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// notFound answers paths no route claims.
func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, detail := errorStatus(err)
	writeError(w, status, detail)
}

// errorStatus maps a service error to a response status and detail message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized, shared.ErrUnauthorized.Error()
	case errors.Is(err, shared.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, shared.ErrUpstream):
		return http.StatusInternalServerError, shared.ErrUpstream.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RequestsHandler serves GET /requests, incrementing the shared request counter.
type RequestsHandler struct {
	service services.NowPlayingService
	logger  *log.Logger
}

func NewRequestsHandler(service services.NowPlayingService, logger *log.Logger) *RequestsHandler {
	return &RequestsHandler{service: service, logger: logger}
}

func (h *RequestsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountRequest(r.Context())
	if err != nil {
		h.logger.Error("failed to count request", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"requests": n})
}

// HealthHandler serves GET /healthz, reporting whether the credential store answers.
type HealthHandler struct {
	store  store.Store
	logger *log.Logger
}

func NewHealthHandler(s store.Store, logger *log.Logger) *HealthHandler {
	return &HealthHandler{store: s, logger: logger}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
