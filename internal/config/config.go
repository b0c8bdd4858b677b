// Package config resolves gateway configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	DefaultJupiterAPIURL = "https://lite-jup.ag/swap/v1"
	DefaultRPCEndpoint   = "https://api.mainnet-beta.solana.com"
	DefaultExportPath    = "swap_history.csv"
	DefaultMetricsAddr   = ":9090"
	DefaultLogLevel      = "info"
)

// Config holds process-wide settings resolved once at startup.
type Config struct {
	// JupiterAPIURL is the base URL of the quote/swap API.
	JupiterAPIURL string

	// WalletPublicKey identifies the swap submitter. May be empty; swap
	// submission then fails against the ledger network rather than at
	// startup.
	WalletPublicKey string

	// RPCEndpoint is the Solana JSON-RPC HTTP endpoint.
	RPCEndpoint string

	// WSEndpoint is the optional Solana WebSocket endpoint. When set,
	// submitted signatures are watched to confirmation for diagnostics.
	WSEndpoint string

	// ExportPath is the CSV export target.
	ExportPath string

	// MetricsAddr is the Prometheus/health HTTP listen address.
	MetricsAddr string

	// LogLevel sets the stderr diagnostic verbosity.
	LogLevel string
}

// Load reads .env if present (never overriding real environment
// variables), then resolves all settings.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		JupiterAPIURL:   getenv("JUPITER_API_URL", DefaultJupiterAPIURL),
		WalletPublicKey: os.Getenv("WALLET_PUBLIC_KEY"),
		RPCEndpoint:     getenv("SOLANA_RPC_ENDPOINT", DefaultRPCEndpoint),
		WSEndpoint:      os.Getenv("SOLANA_WS_ENDPOINT"),
		ExportPath:      getenv("EXPORT_PATH", DefaultExportPath),
		MetricsAddr:     getenv("METRICS_ADDR", DefaultMetricsAddr),
		LogLevel:        getenv("LOG_LEVEL", DefaultLogLevel),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
