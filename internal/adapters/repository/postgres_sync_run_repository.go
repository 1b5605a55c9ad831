package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const syncRunsSchema = `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id                 TEXT PRIMARY KEY,
		state              TEXT NOT NULL,
		started_at         TIMESTAMPTZ NOT NULL,
		finished_at        TIMESTAMPTZ,
		records            INTEGER NOT NULL DEFAULT 0,
		skipped_days       INTEGER NOT NULL DEFAULT 0,
		steps_created      INTEGER NOT NULL DEFAULT 0,
		steps_updated      INTEGER NOT NULL DEFAULT 0,
		steps_unchanged    INTEGER NOT NULL DEFAULT 0,
		steps_failed       INTEGER NOT NULL DEFAULT 0,
		wellness_created   INTEGER NOT NULL DEFAULT 0,
		wellness_updated   INTEGER NOT NULL DEFAULT 0,
		wellness_unchanged INTEGER NOT NULL DEFAULT 0,
		wellness_skipped   INTEGER NOT NULL DEFAULT 0,
		wellness_failed    INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs (started_at DESC);`

const queryTimeout = 3 * time.Second

var _ domain.SyncRunRepository = (*PostgresSyncRunRepository)(nil)

type PostgresSyncRunRepository struct {
	db *sqlx.DB
}

func NewPostgresSyncRunRepository(db *sqlx.DB) *PostgresSyncRunRepository {
	return &PostgresSyncRunRepository{db: db}
}

// EnsureSchema creates the sync_runs table when it does not exist yet.
func (r *PostgresSyncRunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, syncRunsSchema); err != nil {
		return fmt.Errorf("repository: ensure sync_runs schema: %w", err)
	}
	return nil
}

func (r *PostgresSyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO sync_runs (
			id, state, started_at, finished_at, records, skipped_days,
			steps_created, steps_updated, steps_unchanged, steps_failed,
			wellness_created, wellness_updated, wellness_unchanged, wellness_skipped, wellness_failed
		) VALUES (
			:id, :state, :started_at, :finished_at, :records, :skipped_days,
			:steps_created, :steps_updated, :steps_unchanged, :steps_failed,
			:wellness_created, :wellness_updated, :wellness_unchanged, :wellness_skipped, :wellness_failed
		)`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSyncRunConflict
		}
		return fmt.Errorf("repository: create sync run failed: %w", err)
	}
	return nil
}

func (r *PostgresSyncRunRepository) Update(ctx context.Context, run *domain.SyncRun) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE sync_runs SET
			state = :state,
			finished_at = :finished_at,
			records = :records,
			skipped_days = :skipped_days,
			steps_created = :steps_created,
			steps_updated = :steps_updated,
			steps_unchanged = :steps_unchanged,
			steps_failed = :steps_failed,
			wellness_created = :wellness_created,
			wellness_updated = :wellness_updated,
			wellness_unchanged = :wellness_unchanged,
			wellness_skipped = :wellness_skipped,
			wellness_failed = :wellness_failed
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("repository: update sync run failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSyncRunNotFound
	}
	return nil
}

func (r *PostgresSyncRunRepository) GetByID(ctx context.Context, id string) (*domain.SyncRun, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var run domain.SyncRun
	err := r.db.GetContext(ctx, &run, `SELECT * FROM sync_runs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSyncRunNotFound
		}
		return nil, fmt.Errorf("repository: get sync run failed: %w", err)
	}

	normalizeTimes(&run)
	return &run, nil
}

func (r *PostgresSyncRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	var runs []*domain.SyncRun
	err := r.db.SelectContext(ctx, &runs, `SELECT * FROM sync_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: list sync runs failed: %w", err)
	}

	for _, run := range runs {
		normalizeTimes(run)
	}
	return runs, nil
}

func normalizeTimes(run *domain.SyncRun) {
	run.StartedAt = run.StartedAt.UTC()
	if run.FinishedAt != nil {
		finished := run.FinishedAt.UTC()
		run.FinishedAt = &finished
	}
}

// isUniqueViolation understands both drivers the journal can be opened with.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
