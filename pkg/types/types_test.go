package types

import "testing"

func TestPubkeyBase58RoundTrip(t *testing.T) {
	pk := PubkeyFromSeed("round trip")
	decoded, err := PubkeyFromBase58(pk.String())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != pk {
		t.Errorf("round trip mismatch: %s vs %s", decoded.String(), pk.String())
	}
}

func TestPubkeyFromBase58Rejects(t *testing.T) {
	// Not base58 at all.
	if _, err := PubkeyFromBase58("0OIl"); err == nil {
		t.Error("expected an error for invalid base58 input")
	}
	// Valid base58, wrong length.
	if _, err := PubkeyFromBase58("abc"); err == nil {
		t.Error("expected an error for a short key")
	}
}

func TestAccountClone(t *testing.T) {
	account := NewAccountWithData(10, []byte{1, 2, 3}, PubkeyFromSeed("owner"))
	clone := account.Clone()
	clone.Data[0] = 99
	clone.Lamports = 0
	if account.Data[0] != 1 || account.Lamports != 10 {
		t.Error("mutating the clone changed the original")
	}
}
