package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing and migrates the SQLite store.
//
// Redis needs no preparation, so nothing past the config file happens for the redis driver.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("Created %s, fill in spotify.client_secret before running serve\n", configPath)

		config, err := r.loadConfig(configPath)
		if err != nil {
			return err
		}
		r.config = config
	}

	if r.config.Store.Driver != shared.StoreDriverSQLite {
		r.logger.Info("store driver needs no migrations", "driver", r.config.Store.Driver)
		return nil
	}

	sqlite := r.config.Store.SQLite
	r.logger.Info("initializing database", "path", sqlite.Path)

	db, err := shared.NewDatabase(sqlite.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, sqlite.Path, sqlite.MaxOpenConns, sqlite.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.writePlain("Rolled back latest migration on %s\n", sqlite.Path)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return r.writePlain("Setup complete for database: %s\n", sqlite.Path)
}
