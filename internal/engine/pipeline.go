package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// RowError reports a single malformed input row. Malformed rows are rejected
// and skipped, never fatal.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("malformed row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Source yields transactions in input order. Next returns io.EOF once the
// sequence is exhausted, a *RowError for a malformed row, and any other error
// for a structural failure of the source itself.
type Source interface {
	Next(ctx context.Context) (Transaction, error)
}

// Sink consumes final client snapshots.
type Sink interface {
	Write(ctx context.Context, account Account) error
}

// Reporter is the diagnostic side channel for per-transaction failures. It
// must never write to the primary output stream.
type Reporter interface {
	RejectedTransaction(tx Transaction, err error)
	MalformedRow(err *RowError)
}

// Processor drives a transaction source through a ledger and delivers the
// final per-client snapshots to a sink. Rejected transactions are reported
// and skipped; only structural source or sink failures abort the run.
type Processor struct {
	ledger   *Ledger
	reporter Reporter
}

// NewProcessor creates a processor over a fresh ledger.
func NewProcessor(reporter Reporter) *Processor {
	return &Processor{
		ledger:   NewLedger(),
		reporter: reporter,
	}
}

// Run consumes src until exhaustion, then writes every known account to sink
// in client-id order. The ledger retains whatever consistent state reflects
// all transactions applied so far if the run aborts early.
func (p *Processor) Run(ctx context.Context, src Source, sink Sink) error {
	for {
		tx, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}

		var rowErr *RowError
		if errors.As(err, &rowErr) {
			p.reporter.MalformedRow(rowErr)
			continue
		}
		if err != nil {
			return fmt.Errorf("reading transaction source: %w", err)
		}

		if err := p.ledger.Apply(tx); err != nil {
			p.reporter.RejectedTransaction(tx, err)
		}
	}

	for _, account := range p.ledger.Snapshots() {
		if err := sink.Write(ctx, account); err != nil {
			return fmt.Errorf("writing snapshot for client %d: %w", account.ClientID, err)
		}
	}

	return nil
}

// Snapshots exposes the final account states, for secondary sinks that run
// after the primary output.
func (p *Processor) Snapshots() []Account {
	return p.ledger.Snapshots()
}
