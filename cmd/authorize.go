package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Authorize asks a running server for the Spotify authorization URL and opens it.
func (r *Runner) Authorize(ctx context.Context, cmd *cli.Command) error {
	url, err := r.api.AuthorizeURL(ctx, cmd.String("token"))
	if err != nil {
		return err
	}

	r.writePlain("Authorize the account at:\n%s\n", url)
	if cmd.Bool("no-browser") {
		return nil
	}

	if err := r.open(url); err != nil {
		r.logger.Warn("failed to open browser, visit the URL above", "error", err)
	}
	return nil
}
