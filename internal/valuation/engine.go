// Package valuation recomputes current market prices for recorded swaps
// and derives profit/loss against each record's historical cost basis.
package valuation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jupiter-gateway/internal/jupiter"
	"jupiter-gateway/internal/ledger"
)

// ReferenceAmount is the fixed unit size quoted when re-pricing a pair.
const ReferenceAmount = 1_000_000

const referenceSlippageBps = 50

// QuoteSource is the single quote operation the engine needs.
type QuoteSource interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amount float64, slippageBps int) (*jupiter.Quote, error)
}

// Result is one record valued at the current market price.
type Result struct {
	ledger.SwapRecord
	CurrentPrice float64 `json:"currentPrice"`
	ProfitLoss   float64 `json:"profitLoss"`
}

// Aggregate sums profit/loss over all records. Details keep ledger
// insertion order regardless of quote completion order.
type Aggregate struct {
	TotalProfitLoss float64  `json:"totalProfitLoss"`
	Details         []Result `json:"details"`
}

// Engine values swap records against fresh quotes.
type Engine struct {
	quotes QuoteSource
}

// NewEngine creates a valuation engine backed by quotes.
func NewEngine(quotes QuoteSource) *Engine {
	return &Engine{quotes: quotes}
}

// Evaluate fetches one reference quote per record concurrently and derives
// per-record and aggregate profit/loss. All-or-nothing: a single quote
// failure fails the whole evaluation. Nothing is cached; every call
// re-prices from scratch.
func (e *Engine) Evaluate(ctx context.Context, records []ledger.SwapRecord) (*Aggregate, error) {
	details := make([]Result, len(records))

	g, ctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			quote, err := e.quotes.GetQuote(ctx, rec.InputToken, rec.OutputToken, ReferenceAmount, referenceSlippageBps)
			if err != nil {
				return fmt.Errorf("quote %s -> %s: %w", rec.InputToken, rec.OutputToken, err)
			}

			currentPrice := quote.OutAmount / ReferenceAmount
			details[i] = Result{
				SwapRecord:   rec,
				CurrentPrice: currentPrice,
				ProfitLoss:   (currentPrice - rec.OutputPrice) * rec.OutputAmount,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := &Aggregate{Details: details}
	for _, d := range details {
		agg.TotalProfitLoss += d.ProfitLoss
	}
	return agg, nil
}
