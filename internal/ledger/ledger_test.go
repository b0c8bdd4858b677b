package ledger

import (
	"errors"
	"testing"
	"time"
)

func validRecord() SwapRecord {
	return SwapRecord{
		InputToken:   "So11111111111111111111111111111111111111112",
		OutputToken:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		InputAmount:  1000000,
		OutputAmount: 2000000,
		OutputPrice:  2.0,
		TxID:         "sig1",
	}
}

func TestMemory_AppendAndSnapshot(t *testing.T) {
	store := NewMemory()

	stamped, err := store.Append(validRecord())
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if stamped.Timestamp == "" {
		t.Error("expected timestamp to be stamped")
	}
	if _, err := time.Parse(time.RFC3339Nano, stamped.Timestamp); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}

	snap := store.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap))
	}
	if snap[0].OutputPrice != 2.0 {
		t.Errorf("OutputPrice mismatch: got %f, want 2.0", snap[0].OutputPrice)
	}
}

func TestMemory_AppendInvalid(t *testing.T) {
	store := NewMemory()

	cases := map[string]SwapRecord{
		"missing input token":  {OutputToken: "B", InputAmount: 1, TxID: "s"},
		"missing output token": {InputToken: "A", InputAmount: 1, TxID: "s"},
		"zero amount":          {InputToken: "A", OutputToken: "B", TxID: "s"},
		"missing txId":         {InputToken: "A", OutputToken: "B", InputAmount: 1},
	}

	for name, rec := range cases {
		if _, err := store.Append(rec); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("%s: expected ErrInvalidRecord, got %v", name, err)
		}
	}

	if store.Len() != 0 {
		t.Errorf("invalid appends must not grow the ledger, len=%d", store.Len())
	}
}

func TestMemory_SnapshotIsCopy(t *testing.T) {
	store := NewMemory()
	if _, err := store.Append(validRecord()); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	snap := store.Snapshot()
	snap[0].OutputPrice = 999

	again := store.Snapshot()
	if again[0].OutputPrice != 2.0 {
		t.Errorf("mutating a snapshot leaked into the store: got %f", again[0].OutputPrice)
	}
}

func TestMemory_TimestampsNonDecreasing(t *testing.T) {
	// Clock that jumps backwards between appends.
	times := []time.Time{
		time.Date(2025, 6, 1, 12, 0, 2, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 0, 1, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 0, 3, 0, time.UTC),
	}
	i := 0
	store := NewMemory().WithClock(func() time.Time {
		t := times[i]
		i++
		return t
	})

	for range times {
		if _, err := store.Append(validRecord()); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	snap := store.Snapshot()
	var prev time.Time
	for idx, rec := range snap {
		ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if err != nil {
			t.Fatalf("parse timestamp %d: %v", idx, err)
		}
		if ts.Before(prev) {
			t.Errorf("timestamp %d decreased: %v < %v", idx, ts, prev)
		}
		prev = ts
	}
}

func TestMemory_LenNeverDecreases(t *testing.T) {
	store := NewMemory()
	for i := 0; i < 5; i++ {
		before := store.Len()
		if _, err := store.Append(validRecord()); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
		if store.Len() != before+1 {
			t.Errorf("expected len %d, got %d", before+1, store.Len())
		}
	}
}
