package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/flickx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	statuses, err := shared.Migrations(ctx, db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		mark := "✗"
		if s.Applied {
			mark = "✓"
		}
		r.writePlain("%s %04d %s\n", mark, s.Version, s.Name)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		if errors.Is(err, shared.ErrNoMigrations) {
			return r.writePlain("Nothing to roll back\n")
		}
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return r.writePlain("✓ Rolled back the latest migration\n")
}

// SetupConfig writes the default configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set tmdb.api_key (or export %s)\n", shared.EnvAPIKey)
	r.writePlain("2. Run 'flickx setup database'\n")
	return nil
}

// SetupReset clears both storage scopes, signing out and emptying the watchlist.
func (r *Runner) SetupReset(ctx context.Context, cmd *cli.Command) error {
	if err := r.state(ctx); err != nil {
		return err
	}

	for _, area := range []Area{r.short, r.long} {
		if err := area.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear storage: %w", err)
		}
	}
	r.logger.Info("storage cleared")
	return r.writePlain("✓ Session and watchlist cleared\n")
}
