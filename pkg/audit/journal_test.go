package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalChainsEntries(t *testing.T) {
	journal := NewJournal()

	e1 := journal.Record(1, 1, "insufficient_funds")
	e2 := journal.Record(2, 1, "account_locked")
	e3 := journal.Record(3, 2, "unknown_tx")

	entries := journal.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, 3, journal.Len())

	assert.Equal(t, e1.Hash, e2.PreviousHash)
	assert.Equal(t, e2.Hash, e3.PreviousHash)
	assert.NotEmpty(t, e1.ID)
	assert.NotEqual(t, e1.ID, e2.ID)

	assert.True(t, VerifyChain(entries))
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	journal := NewJournal()
	journal.Record(1, 1, "insufficient_funds")
	journal.Record(2, 1, "account_locked")
	journal.Record(3, 2, "unknown_tx")

	entries := journal.Entries()

	// Edited payload.
	originalReason := entries[1].Reason
	entries[1].Reason = "duplicate_tx"
	assert.False(t, VerifyChain(entries))
	entries[1].Reason = originalReason

	// Edited hash.
	originalHash := entries[1].Hash
	entries[1].Hash = "deadbeef"
	assert.False(t, VerifyChain(entries))
	entries[1].Hash = originalHash

	// Broken link.
	entries[2].PreviousHash = "deadbeef"
	assert.False(t, VerifyChain(entries))
}

func TestVerifyChainEmpty(t *testing.T) {
	assert.True(t, VerifyChain(nil))
}

func TestVerifyChainDetectsDroppedEntry(t *testing.T) {
	journal := NewJournal()
	journal.Record(1, 1, "insufficient_funds")
	journal.Record(2, 1, "account_locked")
	journal.Record(3, 2, "unknown_tx")

	entries := journal.Entries()
	assert.False(t, VerifyChain([]*Entry{entries[0], entries[2]}))
}
