package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/metrics"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/store"
)

// Opts contains the dependencies of the HTTP API.
type Opts struct {
	Service        services.NowPlayingService
	Store          store.Store
	Metrics        *metrics.Metrics
	Logger         *log.Logger
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// New builds the router for the public API, the health check and the metrics endpoint.
//
// Rate limiting applies to the public API only. Unknown paths get a JSON 404.
func New(opts Opts) *BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "http")

	r := NewBasicRouter()
	r.Use(RequestLogger(logger), Instrument(opts.Metrics), CORS(opts.AllowedOrigins))

	r.mux.Handle("/", r.Apply(http.HandlerFunc(notFound)))
	r.Handle(http.MethodGet, "/healthz", NewHealthHandler(opts.Store, logger))
	if opts.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Use(RateLimit(opts.RateLimit, opts.RateBurst))
	r.Handle(http.MethodGet, "/requests", NewRequestsHandler(opts.Service, logger))
	r.Handler(NewSpotifyHandler(opts.Service, logger))

	return r
}
