package solana

import "testing"

func TestValidatePublicKey(t *testing.T) {
	// The system program address decodes to 32 bytes on the curve.
	if err := ValidatePublicKey("11111111111111111111111111111111"); err != nil {
		t.Errorf("expected valid key, got: %v", err)
	}

	cases := map[string]string{
		"not base58": "not-a-key!!",
		"too short":  "abc",
		"empty":      "",
	}
	for name, key := range cases {
		if err := ValidatePublicKey(key); err == nil {
			t.Errorf("%s: expected error for %q", name, key)
		}
	}
}
