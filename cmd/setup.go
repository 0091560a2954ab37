package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadConfig reads the config file named by the --config flag, creating it from the template when missing.
func (r *Runner) loadConfig(configPath string) *shared.Config {
	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.config = config
	r.configPath = configPath
	return config
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.database()
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupStatus prints each embedded migration and when it was applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, state := range states {
		if state.Applied() {
			r.writePlain("✓ %04d %s (applied %s)\n", state.Version, state.Name, state.AppliedAt.Format("2006-01-02 15:04:05"))
		} else {
			r.writePlain("• %04d %s (pending)\n", state.Version, state.Name)
		}
	}
	return nil
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	r.logger.Info("rolled back latest migration")
	return nil
}

// SetupConfig creates a Mailchimp configuration record from the [mailchimp.seed] table of the config file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	r.config = config
	r.configPath = configPath

	seed := config.Mailchimp.Seed
	if seed == (shared.SeedConfig{}) {
		return fmt.Errorf("%w: [mailchimp.seed] is empty in %s", shared.ErrInvalidConfig, configPath)
	}

	return r.createConfiguration(seed.Username, seed.Password, seed.APIKey, seed.URL)
}

// createConfiguration stores a configuration record, warning when it would not satisfy a push.
func (r *Runner) createConfiguration(username, password, apiKey, url string) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	cfg := models.NewConfiguration(0, username, password, apiKey, url)
	if err := repositories.NewConfigurationRepository(db).Create(cfg); err != nil {
		return err
	}

	r.logger.Info("configuration created", "id", cfg.ID())
	r.writePlain("✓ Configuration %s created\n", cfg.ID())
	if !cfg.Complete() {
		r.writePlain("%s\n", "Warning: some fields are empty; pushes will fail until a complete configuration exists.")
	}
	return nil
}

// setupCommand handles setup operations for the database and the Mailchimp configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "config",
				Usage:  "Create a Mailchimp configuration record from [mailchimp.seed]",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}
