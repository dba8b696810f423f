package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/cfx/internal/formatter"
	"github.com/desertthunder/cfx/internal/repositories"
	"github.com/desertthunder/cfx/internal/shared"
	"github.com/urfave/cli/v3"
)

type historyRun struct {
	ID         string   `json:"id"`
	Sequence   int      `json:"sequence"`
	UserCode   string   `json:"user_code"`
	AccountID  int      `json:"account_id"`
	OutputDir  string   `json:"output_dir"`
	Extensions []string `json:"extensions"`
	Pages      int      `json:"pages"`
	Posts      int      `json:"posts"`
	References int      `json:"references"`
	Saved      int      `json:"saved"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
}

type historyFailure struct {
	Index     int    `json:"index"`
	Reference string `json:"reference"`
	ErrorKind string `json:"error_kind"`
	Error     string `json:"error"`
}

// History lists recorded runs, or the failed references of one run with --failed.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenLedger(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open archive ledger: %w", err)
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)

	if key := cmd.String("failed"); key != "" {
		return r.historyFailed(ctx, cmd, repo, key)
	}

	limit := cmd.Int("limit")
	if limit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidArgument)
	}

	criteria := map[string]any{"limit": limit}
	if user := cmd.String("user"); user != "" {
		criteria["user_code"] = user
	}

	runs, err := repo.List(ctx, criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]historyRun, 0, len(runs))
		for _, run := range runs {
			out = append(out, historyRun{
				ID:         run.ID(),
				Sequence:   run.Sequence,
				UserCode:   run.UserCode,
				AccountID:  run.AccountID,
				OutputDir:  run.OutputDir,
				Extensions: run.Extensions,
				Pages:      run.Pages,
				Posts:      run.Posts,
				References: run.References,
				Saved:      run.Saved,
				Skipped:    run.Skipped,
				Failed:     run.Failed,
				StartedAt:  run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
				FinishedAt: run.FinishedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		return r.writeJSON(out, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No recorded runs\n")
	}
	return r.writePlain("%s", formatter.RunsToText(runs))
}

func (r *Runner) historyFailed(ctx context.Context, cmd *cli.Command, repo *repositories.RunRepository, key string) error {
	run, err := repo.Find(ctx, key)
	if errors.Is(err, repositories.ErrRunNotFound) {
		return fmt.Errorf("%w: no run matches %q", shared.ErrInvalidArgument, key)
	} else if err != nil {
		return err
	}

	failed, err := repo.FailedOutcomes(ctx, run.ID())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]historyFailure, 0, len(failed))
		for _, o := range failed {
			out = append(out, historyFailure{Index: o.Index, Reference: o.Reference, ErrorKind: o.ErrorKind, Error: o.Error})
		}
		return r.writeJSON(out, true)
	}

	if err := r.writePlain("Run #%d (%s): %d failed\n", run.Sequence, run.UserCode, len(failed)); err != nil {
		return err
	}
	for _, o := range failed {
		if err := r.writePlain("  [%d] %s  %s: %s\n", o.Index, o.Reference, o.ErrorKind, o.Error); err != nil {
			return err
		}
	}
	return nil
}
