package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cfx/internal/models"
	"github.com/desertthunder/cfx/internal/shared"
)

// ErrRunNotFound is returned when no run matches an id or sequence.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `
	id, sequence, user_code, account_id, output_dir, extensions, start_page,
	pages, posts, refs, saved, skipped, failed, started_at, finished_at
`

const outcomeColumns = `id, run_id, idx, reference, kind, file, error_kind, error`

// RunRepository persists [models.ArchiveRun] rows and their [models.OutcomeRecord] rows.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts run and its outcomes in one transaction.
//
// The run keeps its ID when one is set; otherwise a new one is generated. Outcome IDs are always generated.
func (r *RunRepository) Create(ctx context.Context, run *models.ArchiveRun, outcomes []models.OutcomeRecord) error {
	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	for i := range outcomes {
		outcomes[i].RunID = run.ID()
		outcomes[i].SetID(shared.GenerateID())
		if err := outcomes[i].Validate(); err != nil {
			return fmt.Errorf("validation failed for outcome %d: %w", i, err)
		}
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID(), sequence, run.UserCode, run.AccountID, run.OutputDir, strings.Join(run.Extensions, ","),
		run.StartPage, run.Pages, run.Posts, run.References, run.Saved, run.Skipped, run.Failed,
		run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO outcomes (`+outcomeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		if _, err := stmt.ExecContext(ctx, o.ID(), o.RunID, o.Index, o.Reference, o.Kind, o.File, o.ErrorKind, o.Error); err != nil {
			return fmt.Errorf("failed to insert outcome %d: %w", o.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.Sequence = sequence
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.ArchiveRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return r.scanRun(row, id)
}

// Find retrieves a run by ID or, when key is numeric, by sequence.
func (r *RunRepository) Find(ctx context.Context, key string) (*models.ArchiveRun, error) {
	if seq, err := strconv.Atoi(key); err == nil {
		row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE sequence = ?`, seq)
		return r.scanRun(row, key)
	}
	return r.Get(ctx, key)
}

// List returns runs newest first. Recognized criteria: "user_code" (string) and "limit" (int).
func (r *RunRepository) List(ctx context.Context, criteria map[string]any) ([]*models.ArchiveRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	args := []any{}

	if userCode, ok := criteria["user_code"].(string); ok && userCode != "" {
		query += " AND user_code = ?"
		args = append(args, userCode)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.ArchiveRun{}
	for rows.Next() {
		run, err := r.scanRun(rows, "")
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Delete removes a run. Its outcomes are removed by the foreign key cascade.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	return nil
}

// Outcomes returns every outcome of a run in reference order.
func (r *RunRepository) Outcomes(ctx context.Context, runID string) ([]models.OutcomeRecord, error) {
	return r.queryOutcomes(ctx, `SELECT `+outcomeColumns+` FROM outcomes WHERE run_id = ? ORDER BY idx ASC`, runID)
}

// FailedOutcomes returns the failed outcomes of a run in reference order.
func (r *RunRepository) FailedOutcomes(ctx context.Context, runID string) ([]models.OutcomeRecord, error) {
	return r.queryOutcomes(ctx, `SELECT `+outcomeColumns+` FROM outcomes WHERE run_id = ? AND kind = 'failed' ORDER BY idx ASC`, runID)
}

func (r *RunRepository) queryOutcomes(ctx context.Context, query string, runID string) ([]models.OutcomeRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []models.OutcomeRecord{}
	for rows.Next() {
		var (
			o  models.OutcomeRecord
			id string
		)
		if err := rows.Scan(&id, &o.RunID, &o.Index, &o.Reference, &o.Kind, &o.File, &o.ErrorKind, &o.Error); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.SetID(id)
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return outcomes, nil
}

func (r *RunRepository) scanRun(row scanner, key string) (*models.ArchiveRun, error) {
	var (
		run        models.ArchiveRun
		id         string
		extensions string
		startedAt  time.Time
		finishedAt time.Time
	)

	err := row.Scan(
		&id, &run.Sequence, &run.UserCode, &run.AccountID, &run.OutputDir, &extensions, &run.StartPage,
		&run.Pages, &run.Posts, &run.References, &run.Saved, &run.Skipped, &run.Failed, &startedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.SetID(id)
	run.Extensions = []string{}
	if extensions != "" {
		run.Extensions = strings.Split(extensions, ",")
	}
	run.StartedAt = startedAt
	run.FinishedAt = finishedAt

	return &run, nil
}
