package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/cfx/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadOrDefault reads the config at path, falling back to defaults when it does not exist.
func (r *Runner) loadOrDefault(path string) (*shared.Config, error) {
	config, err := shared.LoadConfig(path)
	if errors.Is(err, shared.ErrMissingConfig) {
		r.logger.Info("config file not found, using defaults", "path", path)
		return shared.DefaultConfig(), nil
	}
	return config, err
}

// SetupConfig writes the embedded example config to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	return r.writePlain("Config written to %s\nNext: run 'cfx setup credentials --curl-file <file>'\n", configPath)
}

// SetupCredentials stores session credentials parsed from a browser cURL export.
func (r *Runner) SetupCredentials(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	configPath := cmd.String("config")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	creds, err := curlHeaders.SessionCredentials()
	if err != nil {
		return err
	}

	config, err := r.loadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.Credentials = creds

	if err := shared.SaveConfig(configPath, config); err != nil {
		return err
	}

	r.logger.Info("credentials saved", "path", configPath, "cookie_length", len(creds.Cookie))
	return r.writePlain("✓ Session credentials saved to %s\n", configPath)
}

// SetupDatabase initializes the archive ledger and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config, err := r.loadOrDefault(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenLedger(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("Archive ledger ready at %s\n", config.Database.Path)
}
