package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/nowplaying/internal/formatter"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
)

// Status fetches the current snapshot from a running server and prints or saves it.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	snap, err := r.api.NowPlaying(ctx)
	if err != nil {
		return err
	}

	switch {
	case output != "" && format == formatter.FormatMarkdown:
		result, err := formatter.WriteMarkdown(ctx, r.httpClient, snap, output)
		if err != nil {
			return err
		}
		r.logger.Info("markdown written", "dir", result.Directory, "files", len(result.Files))
		r.writePlain("Wrote %s\n", result.Directory)
	case output != "" && format == formatter.FormatCSV:
		if err := formatter.AppendCSV(snap, time.Now(), output); err != nil {
			return err
		}
		r.writePlain("Appended to %s\n", output)
	case output != "":
		return fmt.Errorf("%w: --output is only supported for %s and %s", shared.ErrInvalidArgument, formatter.FormatMarkdown, formatter.FormatCSV)
	default:
		data, err := formatter.Render(snap, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if format == formatter.FormatJSON {
			r.writePlain("\n")
		}
	}

	if cmd.Bool("count") {
		n, err := r.api.Requests(ctx)
		if err != nil {
			return err
		}
		r.writePlain("Requests: %d\n", n)
	}
	return nil
}
