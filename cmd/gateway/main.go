// Package main runs the Jupiter trading gateway: a stdin/stdout command
// server that quotes and executes token swaps via the Jupiter API and the
// Solana RPC network, keeps an in-memory ledger of executed swaps, and
// serves profit/loss valuation and CSV export over the same protocol.
//
// Protocol output goes to stdout, one JSON line per completed command.
// Diagnostics go to stderr. Prometheus metrics and a health check are
// served over HTTP on METRICS_ADDR.
package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"jupiter-gateway/internal/config"
	"jupiter-gateway/internal/gateway"
	"jupiter-gateway/internal/jupiter"
	"jupiter-gateway/internal/ledger"
	"jupiter-gateway/internal/observability"
	"jupiter-gateway/internal/solana"
	"jupiter-gateway/internal/valuation"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	if cfg.WalletPublicKey == "" {
		logger.Warn().Msg("WALLET_PUBLIC_KEY not set; swap submission will be rejected by the network")
	} else if err := solana.ValidatePublicKey(cfg.WalletPublicKey); err != nil {
		logger.Warn().Err(err).Msg("wallet public key failed validation")
	}

	quotes := jupiter.NewClient(cfg.JupiterAPIURL)
	submitter := solana.NewHTTPClient(cfg.RPCEndpoint)
	store := ledger.NewMemory()
	engine := valuation.NewEngine(quotes)

	var confirmations gateway.Confirmer
	if cfg.WSEndpoint != "" {
		confirmations = solana.NewConfirmationWatcher(cfg.WSEndpoint)
		logger.Info().Str("endpoint", cfg.WSEndpoint).Msg("confirmation watching enabled")
	}

	handlers := gateway.NewHandlers(gateway.HandlerOptions{
		Quotes:          quotes,
		Submitter:       submitter,
		Store:           store,
		Engine:          engine,
		Confirmations:   confirmations,
		WalletPublicKey: cfg.WalletPublicKey,
		ExportPath:      cfg.ExportPath,
		Logger:          logger,
	})

	go serveMetrics(cfg.MetricsAddr, logger)

	dispatcher := gateway.NewDispatcher(gateway.NewRegistry(handlers), os.Stdout, logger)
	logger.Info().Str("api", cfg.JupiterAPIURL).Str("rpc", cfg.RPCEndpoint).Msg("gateway running")

	if err := dispatcher.Serve(context.Background(), os.Stdin); err != nil {
		logger.Error().Err(err).Msg("transport failure")
		os.Exit(1)
	}
}

// newLogger builds the stderr diagnostic logger. Protocol output on
// stdout stays untouched.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
}

// serveMetrics exposes Prometheus metrics and a health check.
func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
