// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/nowplaying/internal/formatter"
	"github.com/desertthunder/nowplaying/internal/ui"
	"github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("NOWPLAYING_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Base URL of a running nowplaying server",
			Value:   "http://localhost:8000",
			Sources: cli.EnvVars("NOWPLAYING_SERVER"),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error), overrides the config file",
		},
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host, overrides server.host",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port, overrides server.port",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand writes the config file and prepares the SQLite store
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml from the template and run SQLite migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

// statusCommand prints the currently playing track from a running server
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Print what is currently playing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (" + strings.Join(formatter.Formats, ", ") + ")",
				Value:   formatter.FormatText,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a directory (markdown, with cover image) or append to a file (csv)",
			},
			&cli.BoolFlag{
				Name:  "count",
				Usage: "Also increment and print the request counter",
			},
		},
		Action: r.Status,
	}
}

// authorizeCommand starts the operator authorization flow against a running server
func authorizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "authorize",
		Usage: "Request the Spotify authorization URL and open it in the browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token",
				Aliases:  []string{"t"},
				Usage:    "Authorization secret printed by the server at startup",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the URL without opening it",
			},
		},
		Action: r.Authorize,
	}
}

// watchCommand launches the TUI
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow the currently playing track in the terminal",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Polling interval",
				Value:   ui.DefaultInterval,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File receiving log output while the TUI runs",
				Value: "./tmp/nowplaying-watch.log",
			},
		},
		Action: r.Watch,
	}
}
