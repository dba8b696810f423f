package repositories

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cfx/internal/models"
)

// LedgerAdapter implements tasks.OutcomeRecorder using [RunRepository].
type LedgerAdapter struct {
	repo   *RunRepository
	logger *log.Logger
}

// NewLedgerAdapter creates a new [LedgerAdapter]. logger may be nil.
func NewLedgerAdapter(repo *RunRepository, logger *log.Logger) *LedgerAdapter {
	return &LedgerAdapter{repo: repo, logger: logger}
}

// RecordRun stores run and its outcomes.
func (a *LedgerAdapter) RecordRun(ctx context.Context, run *models.ArchiveRun, outcomes []models.OutcomeRecord) error {
	if err := a.repo.Create(ctx, run, outcomes); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	if a.logger != nil {
		a.logger.Debug("recorded run", "run", run.ID(), "sequence", run.Sequence, "outcomes", len(outcomes))
	}
	return nil
}
