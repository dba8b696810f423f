package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/cfx/internal/formatter"
	"github.com/desertthunder/cfx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Archive crawls the target account and downloads every wanted reference.
//
// Only resolution and pagination errors are returned. Download failures are logged and listed in the summary.
func (r *Runner) Archive(ctx context.Context, cmd *cli.Command) error {
	if err := r.applyLogLevel(cmd); err != nil {
		return err
	}

	opts, err := r.runOpts(cmd)
	if err != nil {
		return err
	}

	creds, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	engine := r.newEngine(creds, opts.UserCode)
	if db, ledger := r.openLedger(cmd); db != nil {
		defer db.Close()
		engine.WithRecorder(ledger)
	}

	r.logger.Info("starting archive", "user_code", opts.UserCode, "extensions", opts.Extensions, "offset", opts.Offset)

	result, err := engine.Run(ctx, nil, opts)
	if err != nil {
		return fmt.Errorf("archive aborted: %w", err)
	}

	if path := cmd.String("manifest"); path != "" {
		if err := formatter.WriteManifest(result, path); err != nil {
			r.logger.Warn("failed to write manifest", "path", path, "error", err)
		} else {
			r.logger.Info("manifest written", "path", path)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Summary(), true)
	}
	return r.writePlain("%s", ui.RenderSummary(result))
}
