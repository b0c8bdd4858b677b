package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidatePublicKey checks that s is a plausible Solana account address:
// base58, 32 bytes, on the ed25519 curve. Program-derived addresses are
// deliberately off-curve, but a wallet key used to build swaps must be a
// real keypair's public half.
func ValidatePublicKey(s string) error {
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("public key must be 32 bytes, got %d", len(decoded))
	}
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return fmt.Errorf("public key not on curve: %w", err)
	}
	return nil
}
