package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	t.Run("records counters", func(t *testing.T) {
		m, err := NewMetrics(prometheus.NewRegistry())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		m.UpstreamRequest(EndpointNowPlaying, http.StatusUnauthorized, time.Millisecond)
		m.UpstreamRequest(EndpointNowPlaying, http.StatusOK, time.Millisecond)
		m.UpstreamRequest(EndpointToken, 0, time.Millisecond)
		m.Refresh(RefreshSuccess)
		m.HTTPRequest("/requests", http.StatusOK, time.Millisecond)

		if got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues(EndpointNowPlaying, "401")); got != 1 {
			t.Errorf("expected one 401, got %v", got)
		}
		if got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues(EndpointToken, "error")); got != 1 {
			t.Errorf("expected one transport error, got %v", got)
		}
		if got := testutil.ToFloat64(m.refreshes.WithLabelValues(RefreshSuccess)); got != 1 {
			t.Errorf("expected one refresh, got %v", got)
		}
		if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/requests", "200")); got != 1 {
			t.Errorf("expected one inbound request, got %v", got)
		}
	})

	t.Run("double registration fails", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		if _, err := NewMetrics(reg); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := NewMetrics(reg); err == nil {
			t.Error("expected error registering collectors twice")
		}
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		var m *Metrics
		m.UpstreamRequest(EndpointToken, http.StatusOK, time.Millisecond)
		m.Refresh(RefreshFailure)
		m.HTTPRequest("/", http.StatusOK, time.Millisecond)
	})

	t.Run("Handler exposes metrics", func(t *testing.T) {
		m, _ := NewMetrics(prometheus.NewRegistry())
		m.Refresh(RefreshFailure)

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), `nowplaying_token_refreshes_total{result="failure"} 1`) {
			t.Errorf("expected refresh counter in exposition, got:\n%s", body)
		}
	})
}
