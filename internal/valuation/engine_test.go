package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jupiter-gateway/internal/jupiter"
	"jupiter-gateway/internal/ledger"
)

// stubQuotes returns canned outAmounts per pair and counts calls.
type stubQuotes struct {
	outAmounts map[string]float64 // keyed by "in->out"
	failPair   string
	calls      atomic.Int64
}

func (s *stubQuotes) GetQuote(_ context.Context, inputMint, outputMint string, amount float64, slippageBps int) (*jupiter.Quote, error) {
	s.calls.Add(1)
	key := inputMint + "->" + outputMint
	if key == s.failPair {
		return nil, errors.New("no route")
	}
	out, ok := s.outAmounts[key]
	if !ok {
		return nil, fmt.Errorf("unexpected pair %s", key)
	}
	return &jupiter.Quote{
		OutAmount: out,
		Raw:       json.RawMessage(fmt.Sprintf(`{"outAmount":"%.0f"}`, out)),
	}, nil
}

func record(in, out string, inAmount, outAmount float64) ledger.SwapRecord {
	return ledger.SwapRecord{
		InputToken:   in,
		OutputToken:  out,
		InputAmount:  inAmount,
		OutputAmount: outAmount,
		OutputPrice:  outAmount / inAmount,
		TxID:         "sig-" + in + out,
		Timestamp:    "2025-06-01T12:00:00Z",
	}
}

func TestEngine_Evaluate(t *testing.T) {
	quotes := &stubQuotes{outAmounts: map[string]float64{
		"A->B": 2_500_000,
	}}
	engine := NewEngine(quotes)

	// Bought 2_000_000 B for 1_000_000 A at price 2.0; B now trades at 2.5.
	recs := []ledger.SwapRecord{record("A", "B", 1_000_000, 2_000_000)}

	agg, err := engine.Evaluate(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, agg.Details, 1)

	d := agg.Details[0]
	assert.InDelta(t, 2.5, d.CurrentPrice, 1e-9)
	assert.InDelta(t, 1_000_000, d.ProfitLoss, 1e-6)
	assert.InDelta(t, agg.TotalProfitLoss, d.ProfitLoss, 1e-9)
	// Cost basis must not have been recomputed.
	assert.Equal(t, 2.0, d.OutputPrice)
}

func TestEngine_Evaluate_AggregateIsSumOfDetails(t *testing.T) {
	quotes := &stubQuotes{outAmounts: map[string]float64{
		"A->B": 2_500_000,
		"C->D": 800_000,
	}}
	engine := NewEngine(quotes)

	recs := []ledger.SwapRecord{
		record("A", "B", 1_000_000, 2_000_000),
		record("C", "D", 1_000_000, 1_000_000),
	}

	agg, err := engine.Evaluate(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, agg.Details, 2)

	sum := 0.0
	for _, d := range agg.Details {
		sum += d.ProfitLoss
	}
	assert.InDelta(t, sum, agg.TotalProfitLoss, 1e-9)

	// Details follow ledger insertion order even with concurrent quoting.
	assert.Equal(t, "A", agg.Details[0].InputToken)
	assert.Equal(t, "C", agg.Details[1].InputToken)
}

func TestEngine_Evaluate_FailureIsAllOrNothing(t *testing.T) {
	quotes := &stubQuotes{
		outAmounts: map[string]float64{"A->B": 2_500_000},
		failPair:   "C->D",
	}
	engine := NewEngine(quotes)

	recs := []ledger.SwapRecord{
		record("A", "B", 1_000_000, 2_000_000),
		record("C", "D", 1_000_000, 1_000_000),
	}

	agg, err := engine.Evaluate(context.Background(), recs)
	require.Error(t, err)
	assert.Nil(t, agg)
	assert.Contains(t, err.Error(), "no route")
}

func TestEngine_Evaluate_EmptyMakesNoCalls(t *testing.T) {
	quotes := &stubQuotes{}
	engine := NewEngine(quotes)

	agg, err := engine.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, agg.Details)
	assert.Zero(t, agg.TotalProfitLoss)
	assert.Zero(t, quotes.calls.Load())
}
