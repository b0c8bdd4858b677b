// Package ledger holds the in-memory append-only record of executed swaps.
// The ledger is the single source of truth for position accounting: records
// are created only by successful swap execution and are never mutated or
// deleted for the lifetime of the process.
package ledger

import (
	"sync"
	"time"
)

// SwapRecord is one executed swap. All fields are fixed at creation time.
// OutputPrice is the historical cost basis (outputAmount / inputAmount at
// execution) and is never recomputed by later valuation.
type SwapRecord struct {
	InputToken   string  `json:"inputToken"`
	OutputToken  string  `json:"outputToken"`
	InputAmount  float64 `json:"inputAmount"`
	OutputAmount float64 `json:"outputAmount"`
	OutputPrice  float64 `json:"outputPrice"`
	TxID         string  `json:"txId"`
	Timestamp    string  `json:"timestamp"`
}

// Store is the ledger surface command handlers depend on. Append is the
// sole mutation; Snapshot returns an independent copy of the entries at
// the time of the call.
type Store interface {
	Append(rec SwapRecord) (SwapRecord, error)
	Snapshot() []SwapRecord
	Len() int
}

// Memory is an in-memory append-only Store.
type Memory struct {
	mu   sync.RWMutex
	recs []SwapRecord
	last time.Time
	now  func() time.Time // Injectable clock for deterministic tests
}

// NewMemory creates an empty in-memory swap ledger.
func NewMemory() *Memory {
	return &Memory{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic timestamps.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Append validates and appends a record. The timestamp is stamped under
// the store lock and clamped to the previous entry's instant, so
// timestamps are non-decreasing in insertion order. The stamped record
// is returned.
func (m *Memory) Append(rec SwapRecord) (SwapRecord, error) {
	if rec.InputToken == "" || rec.OutputToken == "" {
		return SwapRecord{}, ErrInvalidRecord
	}
	if rec.InputAmount <= 0 || rec.TxID == "" {
		return SwapRecord{}, ErrInvalidRecord
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.now()
	if t.Before(m.last) {
		t = m.last
	}
	m.last = t
	rec.Timestamp = t.Format(time.RFC3339Nano)

	m.recs = append(m.recs, rec)
	return rec, nil
}

// Snapshot returns a copy of all records in insertion order.
func (m *Memory) Snapshot() []SwapRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SwapRecord, len(m.recs))
	copy(out, m.recs)
	return out
}

// Len returns the number of recorded swaps.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recs)
}
