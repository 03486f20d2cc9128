// Package csvio reads transaction rows from CSV input and writes client
// snapshots as CSV output in the fixed 4-decimal precision of the format.
package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/krojew/simple-csv-tx-engine/internal/engine"
)

// Reader is a lazy transaction source over CSV rows of the form
// {type, client, tx, amount}. Headers and fields may carry surrounding
// whitespace; disputes, resolves and chargebacks may omit the amount column
// entirely or leave it empty.
type Reader struct {
	csv        *csv.Reader
	line       int
	headerRead bool
}

// NewReader wraps r in a transaction source.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	// Rows referencing prior transactions often have three fields instead
	// of four, so field counts vary per record.
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	return &Reader{csv: cr}
}

// Next returns the next transaction in input order. Malformed rows come back
// as *engine.RowError so the caller can reject them and keep going.
func (r *Reader) Next(_ context.Context) (engine.Transaction, error) {
	if !r.headerRead {
		if err := r.readHeader(); err != nil {
			return engine.Transaction{}, err
		}
	}

	record, err := r.csv.Read()
	r.line++
	if errors.Is(err, io.EOF) {
		return engine.Transaction{}, io.EOF
	}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return engine.Transaction{}, &engine.RowError{Line: r.line, Err: err}
	}
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("reading csv row: %w", err)
	}

	tx, err := parseRecord(record)
	if err != nil {
		return engine.Transaction{}, &engine.RowError{Line: r.line, Err: err}
	}

	return tx, nil
}

// readHeader consumes and validates the leading header row. A source without
// the expected header is structurally corrupt, not a bad row.
func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	r.line++
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return fmt.Errorf("reading csv header: %w", err)
	}

	expected := []string{"type", "client", "tx", "amount"}
	if len(header) < len(expected) {
		return fmt.Errorf("csv header has %d columns, want %d", len(header), len(expected))
	}
	for i, want := range expected {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("unexpected csv header column %q, want %q", header[i], want)
		}
	}

	r.headerRead = true
	return nil
}

func parseRecord(record []string) (engine.Transaction, error) {
	if len(record) < 3 {
		return engine.Transaction{}, fmt.Errorf("row has %d fields, want at least 3", len(record))
	}

	txType, err := engine.ParseTxType(strings.TrimSpace(record[0]))
	if err != nil {
		return engine.Transaction{}, err
	}

	clientID, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 16)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("invalid client id %q: %w", record[1], err)
	}

	txID, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 32)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("invalid transaction id %q: %w", record[2], err)
	}

	tx := engine.Transaction{
		Type:     txType,
		ClientID: engine.ClientID(clientID),
		TxID:     engine.TxID(txID),
	}

	if len(record) > 3 {
		if raw := strings.TrimSpace(record[3]); raw != "" {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return engine.Transaction{}, fmt.Errorf("invalid amount %q: %w", record[3], err)
			}
			tx.Amount = &amount
		}
	}

	return tx, nil
}
