// Package store provides the database-backed transaction source and snapshot
// archive sitting on either side of the processing engine.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/krojew/simple-csv-tx-engine/internal/engine"
)

// SQLiteSource reads transactions from a local SQLite database. Rows come
// from a `transactions` table with the same shape as the CSV input and are
// yielded in insertion order.
type SQLiteSource struct {
	db   *sql.DB
	rows *sql.Rows
	line int
}

// OpenSQLiteSource opens the database at path. The query itself is deferred
// to the first Next call so it runs under the caller's context.
func OpenSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}

	// sql.Open does not touch the file; fail fast on an unreadable source.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading sqlite database %s: %w", path, err)
	}

	return &SQLiteSource{db: db}, nil
}

// Next returns the next transaction. Malformed rows are reported as
// *engine.RowError; query failures are structural and fatal.
func (s *SQLiteSource) Next(ctx context.Context) (engine.Transaction, error) {
	if s.rows == nil {
		rows, err := s.db.QueryContext(ctx,
			`SELECT type, client, tx, amount FROM transactions ORDER BY rowid`)
		if err != nil {
			return engine.Transaction{}, fmt.Errorf("querying transactions: %w", err)
		}
		s.rows = rows
	}

	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return engine.Transaction{}, fmt.Errorf("iterating transactions: %w", err)
		}
		return engine.Transaction{}, io.EOF
	}
	s.line++

	var (
		txType   string
		clientID int64
		txID     int64
		amount   sql.NullString
	)
	if err := s.rows.Scan(&txType, &clientID, &txID, &amount); err != nil {
		return engine.Transaction{}, fmt.Errorf("scanning transaction row: %w", err)
	}

	tx, err := buildTransaction(txType, clientID, txID, amount)
	if err != nil {
		return engine.Transaction{}, &engine.RowError{Line: s.line, Err: err}
	}

	return tx, nil
}

// Close releases the row cursor and the database handle.
func (s *SQLiteSource) Close() error {
	var errs []error
	if s.rows != nil {
		errs = append(errs, s.rows.Close())
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

func buildTransaction(txType string, clientID, txID int64, amount sql.NullString) (engine.Transaction, error) {
	kind, err := engine.ParseTxType(txType)
	if err != nil {
		return engine.Transaction{}, err
	}

	if clientID < 0 || clientID > int64(^uint16(0)) {
		return engine.Transaction{}, fmt.Errorf("client id %d out of range", clientID)
	}
	if txID < 0 || txID > int64(^uint32(0)) {
		return engine.Transaction{}, fmt.Errorf("transaction id %d out of range", txID)
	}

	tx := engine.Transaction{
		Type:     kind,
		ClientID: engine.ClientID(clientID),
		TxID:     engine.TxID(txID),
	}

	if amount.Valid && amount.String != "" {
		value, err := decimal.NewFromString(amount.String)
		if err != nil {
			return engine.Transaction{}, fmt.Errorf("invalid amount %q: %w", amount.String, err)
		}
		tx.Amount = &value
	}

	return tx, nil
}
