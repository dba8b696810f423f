package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cfx/internal/shared"
	"github.com/desertthunder/cfx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs an archive with the interactive progress view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.runOpts(cmd)
	if err != nil {
		return err
	}

	creds, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	if err := r.applyLogLevel(cmd); err != nil {
		return err
	}

	engine := r.newEngine(creds, opts.UserCode)
	if db, ledger := r.openLedger(cmd); db != nil {
		defer db.Close()
		engine.WithRecorder(ledger)
	}

	model := ui.NewModel(ctx, engine, opts)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	result, err := model.Result()
	if err != nil {
		return fmt.Errorf("archive aborted: %w", err)
	}
	if result != nil {
		return r.writePlain("%s", ui.RenderSummary(result))
	}
	return nil
}
