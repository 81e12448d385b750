package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/nowplaying/internal/metrics"
	"github.com/desertthunder/nowplaying/internal/server"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

const authorizeInstruction = `To authorize with Spotify, please pass the string "%s" as a query parameter called "token" to the /spotify_api/authorize endpoint.` + "\n"

// Serve runs the HTTP API until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("host") {
		r.config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		r.config.Server.Port = int(cmd.Int("port"))
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", r.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.config.Server.Addr(), err)
	}
	return r.serveOn(ctx, ln)
}

// serveOn wires the store, the Spotify service and the router, then serves on ln until ctx is done.
func (r *Runner) serveOn(ctx context.Context, ln net.Listener) error {
	config := r.config

	st, err := r.openStore(ctx, config.Store)
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to open %s store: %w", config.Store.Driver, err)
	}
	defer st.Close()

	m, err := metrics.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		ln.Close()
		return err
	}

	secret, err := shared.NewSecret()
	if err != nil {
		ln.Close()
		return err
	}

	spotify, err := services.NewSpotifyService(services.SpotifyOpts{
		ClientID:     config.Spotify.ClientID,
		ClientSecret: config.Spotify.ClientSecret,
		RedirectURI:  config.Spotify.RedirectURI,
		Secret:       secret,
		Store:        st,
		HTTPClient:   &http.Client{Timeout: config.Spotify.Timeout()},
		Logger:       r.logger,
		Metrics:      m,
	})
	if err != nil {
		ln.Close()
		return err
	}

	srv := &http.Server{
		Handler: server.New(server.Opts{
			Service:        spotify,
			Store:          st,
			Metrics:        m,
			Logger:         r.logger,
			AllowedOrigins: config.Server.AllowedOrigins,
			RateLimit:      config.Server.RateLimit,
			RateBurst:      config.Server.RateBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	r.writePlain(authorizeInstruction, secret.Reveal())
	r.logger.Info("listening", "addr", ln.Addr().String(), "store", config.Store.Driver)

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
