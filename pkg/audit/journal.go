// Package audit keeps a tamper-evident journal of rejected transactions
// using hash chaining. Every entry links to its predecessor, so inserting,
// dropping or editing a diagnostic after the fact breaks verification.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a single journaled rejection.
type Entry struct {
	ID           string `json:"id"`
	Timestamp    string `json:"timestamp"`
	PreviousHash string `json:"previous_hash"`
	TxID         uint32 `json:"tx_id"`
	ClientID     uint16 `json:"client_id"`
	Reason       string `json:"reason"`
	Hash         string `json:"hash"`
}

// Journal accumulates rejection entries chained by hash.
type Journal struct {
	mu           sync.Mutex
	previousHash string
	entries      []*Entry
}

// NewJournal creates a journal initialized with a zero hash.
func NewJournal() *Journal {
	return &Journal{
		previousHash: strings.Repeat("0", 64),
	}
}

// Record appends a rejection to the chain and returns the new entry.
func (j *Journal) Record(txID uint32, clientID uint16, reason string) *Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := &Entry{
		ID:           uuid.New().String(),
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		PreviousHash: j.previousHash,
		TxID:         txID,
		ClientID:     clientID,
		Reason:       reason,
	}
	entry.Hash = entryHash(entry)

	j.previousHash = entry.Hash
	j.entries = append(j.entries, entry)

	return entry
}

// Entries returns the journaled rejections in record order.
func (j *Journal) Entries() []*Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len reports the number of journaled rejections.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	return len(j.entries)
}

// VerifyChain checks that a slice of entries forms an unbroken, untampered
// hash chain.
func VerifyChain(entries []*Entry) bool {
	for i, entry := range entries {
		if i > 0 && entry.PreviousHash != entries[i-1].Hash {
			return false
		}
		if entryHash(entry) != entry.Hash {
			return false
		}
	}
	return true
}

func entryHash(entry *Entry) string {
	hashInput := fmt.Sprintf("%s|%s|%s|%d|%d|%s",
		entry.PreviousHash, entry.ID, entry.Timestamp, entry.TxID, entry.ClientID, entry.Reason)
	hash := sha256.Sum256([]byte(hashInput))
	return hex.EncodeToString(hash[:])
}
