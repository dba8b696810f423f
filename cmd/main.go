package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/cfx/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	if level, err := shared.ParseLogLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(logger, level)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "cfx",
		Usage:    "Archive the media of a candfans.jp timeline",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		var remoteErr *shared.RemoteError
		if errors.As(err, &remoteErr) {
			fmt.Fprintln(os.Stderr, remoteErr.Details())
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
