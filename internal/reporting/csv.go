// Package reporting renders valuation results for export.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"jupiter-gateway/internal/valuation"
)

// RenderCSV renders valuation rows as a CSV string with the export
// column order.
func RenderCSV(rows []valuation.Result) string {
	var sb strings.Builder

	// Header
	sb.WriteString("Input Token,Output Token,Input Amount,Output Amount,Output Price,Current Price,Profit/Loss,Transaction ID,Timestamp\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			r.InputToken,
			r.OutputToken,
			formatNumber(r.InputAmount),
			formatNumber(r.OutputAmount),
			formatNumber(r.OutputPrice),
			formatNumber(r.CurrentPrice),
			formatNumber(r.ProfitLoss),
			r.TxID,
			r.Timestamp,
		))
	}

	return sb.String()
}

// formatNumber renders amounts without trailing zeros, so integral token
// amounts export as integers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteFile writes content to path atomically: the content goes to a temp
// file in the target directory which is then renamed over path, so a
// failed export never leaves a partial file.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
