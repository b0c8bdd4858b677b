package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"jupiter-gateway/internal/jupiter"
	"jupiter-gateway/internal/ledger"
	"jupiter-gateway/internal/observability"
	"jupiter-gateway/internal/reporting"
	"jupiter-gateway/internal/solana"
	"jupiter-gateway/internal/valuation"
)

// QuoteSwapAPI is the slice of the Jupiter client the handlers use.
type QuoteSwapAPI interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amount float64, slippageBps int) (*jupiter.Quote, error)
	BuildSwap(ctx context.Context, quote *jupiter.Quote, userPublicKey string) (string, error)
}

// Confirmer follows a submitted signature to confirmation. Optional and
// diagnostic only.
type Confirmer interface {
	Watch(ctx context.Context, signature string) (int64, error)
}

// HandlerOptions bundles the collaborators the command handlers act on.
type HandlerOptions struct {
	Quotes          QuoteSwapAPI
	Submitter       solana.Submitter
	Store           ledger.Store
	Engine          *valuation.Engine
	Confirmations   Confirmer // may be nil
	WalletPublicKey string
	ExportPath      string
	Logger          zerolog.Logger
}

// Handlers implements the registered commands.
type Handlers struct {
	quotes     QuoteSwapAPI
	submitter  solana.Submitter
	store      ledger.Store
	engine     *valuation.Engine
	confirm    Confirmer
	wallet     string
	exportPath string
	log        zerolog.Logger
}

// NewHandlers creates the command handler set.
func NewHandlers(opts HandlerOptions) *Handlers {
	return &Handlers{
		quotes:     opts.Quotes,
		submitter:  opts.Submitter,
		store:      opts.Store,
		engine:     opts.Engine,
		confirm:    opts.Confirmations,
		wallet:     opts.WalletPublicKey,
		exportPath: opts.ExportPath,
		log:        opts.Logger,
	}
}

// NewRegistry builds the command table served by the dispatcher.
func NewRegistry(h *Handlers) Registry {
	swapSchema := Schema{
		{Name: "inputToken", Type: FieldString, Required: true},
		{Name: "outputToken", Type: FieldString, Required: true},
		{Name: "amount", Type: FieldNumber, Required: true, Positive: true},
		{Name: "slippageBps", Type: FieldNumber, Default: float64(50)},
	}

	return Registry{
		"get_price":             {Schema: swapSchema, Handler: h.getPrice},
		"swap_tokens":           {Schema: swapSchema, Handler: h.swapTokens},
		"calculate_profit_loss": {Schema: Schema{}, Handler: h.calculateProfitLoss},
		"export_swaps":          {Schema: Schema{}, Handler: h.exportSwaps},
	}
}

// getPrice returns the raw quote payload for a pair as formatted text.
func (h *Handlers) getPrice(ctx context.Context, params Params) Response {
	inputToken := params.String("inputToken")
	outputToken := params.String("outputToken")
	amount := params.Number("amount")
	slippageBps := int(params.Number("slippageBps"))

	h.log.Info().
		Str("inputToken", inputToken).
		Str("outputToken", outputToken).
		Float64("amount", amount).
		Msg("getting price")

	quote, err := h.quotes.GetQuote(ctx, inputToken, outputToken, amount, slippageBps)
	if err != nil {
		h.log.Error().Err(err).Msg("get_price failed")
		return ErrorResponse("Error getting price: " + err.Error())
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, quote.Raw, "", "  "); err != nil {
		return ErrorResponse("Error getting price: " + err.Error())
	}
	return TextResponse(pretty.String())
}

// swapTokens executes quote -> build -> submit -> record. A failure at any
// step aborts the sequence and leaves the ledger untouched; there is no
// retry.
func (h *Handlers) swapTokens(ctx context.Context, params Params) Response {
	inputToken := params.String("inputToken")
	outputToken := params.String("outputToken")
	amount := params.Number("amount")
	slippageBps := int(params.Number("slippageBps"))

	h.log.Info().
		Str("inputToken", inputToken).
		Str("outputToken", outputToken).
		Float64("amount", amount).
		Msg("swapping")

	quote, err := h.quotes.GetQuote(ctx, inputToken, outputToken, amount, slippageBps)
	if err != nil {
		h.log.Error().Err(err).Msg("swap_tokens quote failed")
		return ErrorResponse("Error executing swap: " + err.Error())
	}

	// Cost basis, fixed at execution time.
	outputPrice := quote.OutAmount / amount

	txBase64, err := h.quotes.BuildSwap(ctx, quote, h.wallet)
	if err != nil {
		h.log.Error().Err(err).Msg("swap_tokens build failed")
		return ErrorResponse("Error executing swap: " + err.Error())
	}

	rawTx, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		h.log.Error().Err(err).Msg("swap_tokens transaction decode failed")
		return ErrorResponse(fmt.Sprintf("Error executing swap: decode transaction: %v", err))
	}

	txID, err := h.submitter.SendRawTransaction(ctx, rawTx)
	if err != nil {
		h.log.Error().Err(err).Msg("swap_tokens submission failed")
		return ErrorResponse("Error executing swap: " + err.Error())
	}

	// Only a confirmed submission reaches the ledger.
	rec, err := h.store.Append(ledger.SwapRecord{
		InputToken:   inputToken,
		OutputToken:  outputToken,
		InputAmount:  amount,
		OutputAmount: quote.OutAmount,
		OutputPrice:  outputPrice,
		TxID:         txID,
	})
	if err != nil {
		h.log.Error().Err(err).Str("txId", txID).Msg("swap_tokens record failed")
		return ErrorResponse("Error recording swap: " + err.Error())
	}

	observability.RecordSwap()
	observability.SetLedgerSize(h.store.Len())
	h.log.Info().Str("txId", txID).Str("timestamp", rec.Timestamp).Msg("swap submitted")

	if h.confirm != nil {
		go h.watchConfirmation(txID)
	}

	return TextResponse("Swap executed: " + txID)
}

// watchConfirmation logs the eventual on-chain fate of a signature.
func (h *Handlers) watchConfirmation(txID string) {
	slot, err := h.confirm.Watch(context.Background(), txID)
	if err != nil {
		h.log.Warn().Err(err).Str("txId", txID).Msg("confirmation watch")
		return
	}
	h.log.Info().Str("txId", txID).Int64("slot", slot).Msg("transaction confirmed")
}

// calculateProfitLoss values every ledger entry at current prices.
func (h *Handlers) calculateProfitLoss(ctx context.Context, _ Params) Response {
	records := h.store.Snapshot()
	if len(records) == 0 {
		return TextResponse("No swaps found")
	}

	agg, err := h.engine.Evaluate(ctx, records)
	if err != nil {
		h.log.Error().Err(err).Msg("calculate_profit_loss failed")
		return ErrorResponse("Error: " + err.Error())
	}

	data, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return ErrorResponse("Error: " + err.Error())
	}
	return TextResponse(string(data))
}

// exportSwaps writes the valued ledger to the export CSV.
func (h *Handlers) exportSwaps(ctx context.Context, _ Params) Response {
	records := h.store.Snapshot()
	if len(records) == 0 {
		return TextResponse("No swaps to export")
	}

	agg, err := h.engine.Evaluate(ctx, records)
	if err != nil {
		h.log.Error().Err(err).Msg("export_swaps valuation failed")
		return ErrorResponse("Error: " + err.Error())
	}

	if err := reporting.WriteFile(h.exportPath, reporting.RenderCSV(agg.Details)); err != nil {
		h.log.Error().Err(err).Msg("export_swaps write failed")
		return ErrorResponse("Error: " + err.Error())
	}

	h.log.Info().Str("path", h.exportPath).Int("records", len(agg.Details)).Msg("exported swap history")
	return TextResponse("Exported to " + h.exportPath)
}
