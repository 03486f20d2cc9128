package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krojew/simple-csv-tx-engine/internal/config"
	"github.com/krojew/simple-csv-tx-engine/internal/csvio"
	"github.com/krojew/simple-csv-tx-engine/internal/engine"
	"github.com/krojew/simple-csv-tx-engine/internal/logging"
	"github.com/krojew/simple-csv-tx-engine/internal/store"
	"github.com/krojew/simple-csv-tx-engine/pkg/audit"
)

// diagnosticReporter writes one structured line per failure to stderr and
// journals rejections for post-run chain verification. Stdout stays reserved
// for the snapshot output.
type diagnosticReporter struct {
	log     *slog.Logger
	journal *audit.Journal
}

func (r *diagnosticReporter) RejectedTransaction(tx engine.Transaction, err error) {
	reason := engine.RejectionReason(err)
	entry := r.journal.Record(uint32(tx.TxID), uint16(tx.ClientID), string(reason))
	r.log.Warn("transaction rejected",
		"tx", uint32(tx.TxID),
		"client", uint16(tx.ClientID),
		"type", string(tx.Type),
		"reason", string(reason),
		"audit_hash", entry.Hash,
	)
}

func (r *diagnosticReporter) MalformedRow(err *engine.RowError) {
	r.log.Warn("malformed row skipped", "line", err.Line, "error", err.Err.Error())
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "txengine: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		return errors.New("usage: txengine <transactions.csv|transactions.db>")
	}
	inputPath := os.Args[1]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := openSource(inputPath)
	if err != nil {
		return err
	}
	defer closeSource()

	runID := uuid.New().String()
	log.Info("starting run", "run_id", runID, "input", inputPath)

	journal := audit.NewJournal()
	processor := engine.NewProcessor(&diagnosticReporter{log: log, journal: journal})

	out := csvio.NewWriter(os.Stdout)
	if err := processor.Run(ctx, src, out); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}

	if !audit.VerifyChain(journal.Entries()) {
		return errors.New("rejection journal failed hash chain verification")
	}

	if cfg.SnapshotDatabaseURL != "" {
		if err := archiveSnapshots(ctx, cfg.SnapshotDatabaseURL, runID, processor.Snapshots()); err != nil {
			return err
		}
	}

	log.Info("run complete",
		"run_id", runID,
		"clients", len(processor.Snapshots()),
		"rejections", journal.Len(),
	)

	return nil
}

// openSource picks the transaction source by input path extension: SQLite
// databases for .db/.sqlite, CSV otherwise.
func openSource(path string) (engine.Source, func() error, error) {
	switch filepath.Ext(path) {
	case ".db", ".sqlite":
		src, err := store.OpenSQLiteSource(path)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening input file: %w", err)
		}
		return csvio.NewReader(f), f.Close, nil
	}
}

func archiveSnapshots(ctx context.Context, databaseURL, runID string, snapshots []engine.Account) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("creating database pool: %w", err)
	}
	defer pool.Close()

	archive := store.NewSnapshotArchive(pool)
	if err := archive.EnsureSchema(ctx); err != nil {
		return err
	}

	return archive.ArchiveRun(ctx, runID, snapshots)
}
