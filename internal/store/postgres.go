package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/krojew/simple-csv-tx-engine/internal/engine"
)

// Pool is the subset of pgxpool.Pool the archive needs. Narrowing the
// dependency keeps the archive unit-testable without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SnapshotArchive records final client snapshots in Postgres as a secondary
// sink, keyed by run id so repeated runs stay distinguishable.
type SnapshotArchive struct {
	pool Pool
}

// NewSnapshotArchive creates an archive over the given pool.
func NewSnapshotArchive(pool Pool) *SnapshotArchive {
	return &SnapshotArchive{pool: pool}
}

// EnsureSchema creates the snapshot table when missing.
func (a *SnapshotArchive) EnsureSchema(ctx context.Context) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := a.pool.Exec(queryCtx, `
		CREATE TABLE IF NOT EXISTS client_snapshots (
			run_id      UUID        NOT NULL,
			client_id   INTEGER     NOT NULL,
			available   NUMERIC     NOT NULL,
			held        NUMERIC     NOT NULL,
			total       NUMERIC     NOT NULL,
			locked      BOOLEAN     NOT NULL,
			archived_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (run_id, client_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("creating client_snapshots table: %w", err)
	}

	return nil
}

// ArchiveRun inserts one row per client snapshot for the given run.
func (a *SnapshotArchive) ArchiveRun(ctx context.Context, runID string, snapshots []engine.Account) error {
	for _, account := range snapshots {
		queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := a.pool.Exec(queryCtx, `
			INSERT INTO client_snapshots (run_id, client_id, available, held, total, locked)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, runID, int(account.ClientID), account.Available.String(), account.Held.String(),
			account.Total().String(), account.Locked)
		cancel()
		if err != nil {
			return fmt.Errorf("archiving snapshot for client %d: %w", account.ClientID, err)
		}
	}

	return nil
}
