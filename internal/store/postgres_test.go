package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krojew/simple-csv-tx-engine/internal/engine"
)

type execCall struct {
	sql  string
	args []any
}

// mockPool provides a simplified pool for testing.
type mockPool struct {
	calls []execCall
	err   error
}

func (m *mockPool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.err != nil {
		return pgconn.CommandTag{}, m.err
	}
	m.calls = append(m.calls, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestEnsureSchema(t *testing.T) {
	pool := &mockPool{}
	archive := NewSnapshotArchive(pool)

	require.NoError(t, archive.EnsureSchema(context.Background()))
	require.Len(t, pool.calls, 1)
	assert.Contains(t, pool.calls[0].sql, "CREATE TABLE IF NOT EXISTS client_snapshots")
}

func TestArchiveRunWritesOneRowPerSnapshot(t *testing.T) {
	pool := &mockPool{}
	archive := NewSnapshotArchive(pool)

	snapshots := []engine.Account{
		{ClientID: 1, Available: decimal.NewFromInt(2), Held: decimal.Zero},
		{ClientID: 2, Available: decimal.Zero, Held: decimal.NewFromInt(3), Locked: true},
	}

	require.NoError(t, archive.ArchiveRun(context.Background(), "run-1", snapshots))
	require.Len(t, pool.calls, 2)

	first := pool.calls[0]
	assert.True(t, strings.Contains(first.sql, "INSERT INTO client_snapshots"))
	assert.Equal(t, []any{"run-1", 1, "2", "0", "2", false}, first.args)

	second := pool.calls[1]
	assert.Equal(t, []any{"run-1", 2, "0", "3", "3", true}, second.args)
}

func TestArchiveRunWrapsPoolErrors(t *testing.T) {
	pool := &mockPool{err: errors.New("connection refused")}
	archive := NewSnapshotArchive(pool)

	err := archive.ArchiveRun(context.Background(), "run-1", []engine.Account{
		{ClientID: 7, Available: decimal.Zero, Held: decimal.Zero},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "archiving snapshot for client 7")
	assert.ErrorContains(t, err, "connection refused")
}
