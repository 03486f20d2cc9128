package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/krojew/simple-csv-tx-engine/internal/engine"
)

// outputPrecision is the fixed number of fractional digits in snapshot
// output, matching the sub-cent currency representation of the input.
const outputPrecision = 4

// Writer is a snapshot sink emitting one CSV row per client. The header is
// written ahead of the first row.
type Writer struct {
	csv           *csv.Writer
	headerWritten bool
}

// NewWriter wraps w in a snapshot sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write appends one client snapshot row.
func (w *Writer) Write(_ context.Context, account engine.Account) error {
	if !w.headerWritten {
		if err := w.csv.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
			return fmt.Errorf("writing csv header: %w", err)
		}
		w.headerWritten = true
	}

	row := []string{
		strconv.FormatUint(uint64(account.ClientID), 10),
		account.Available.StringFixed(outputPrecision),
		account.Held.StringFixed(outputPrecision),
		account.Total().StringFixed(outputPrecision),
		strconv.FormatBool(account.Locked),
	}

	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("writing snapshot row: %w", err)
	}

	return nil
}

// Flush drains buffered rows to the underlying writer and reports any write
// error encountered during the run.
func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flushing csv output: %w", err)
	}
	return nil
}
