package solana

import "context"

// Submitter defines the ledger-network write interface.
type Submitter interface {
	// SendRawTransaction submits raw transaction bytes and returns the
	// network-assigned signature.
	SendRawTransaction(ctx context.Context, tx []byte) (string, error)
}
