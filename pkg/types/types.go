// Package types provides the core identifier and account types shared by
// the pool ledger program, its execution runtime and the host tooling.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// Pubkey is a 32-byte account identifier.
type Pubkey [32]byte

// ZeroPubkey is an all-zero pubkey.
var ZeroPubkey Pubkey

// Well-known program IDs. Derived deterministically so every host agrees
// on them without a registry.
var (
	// PoolProgramID is the authority expected to own pool state accounts.
	PoolProgramID = PubkeyFromSeed("pool-ledger/program")

	// SystemProgramID owns plain fund-holding accounts created by the host.
	SystemProgramID = PubkeyFromSeed("pool-ledger/system")
)

// PubkeyFromSeed derives a pubkey from an arbitrary seed string.
func PubkeyFromSeed(seed string) Pubkey {
	return Pubkey(sha256.Sum256([]byte(seed)))
}

// PubkeyFromBytes creates a Pubkey from a byte slice.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	if len(b) != 32 {
		return Pubkey{}, fmt.Errorf("pubkey must be 32 bytes, got %d", len(b))
	}
	var pk Pubkey
	copy(pk[:], b)
	return pk, nil
}

// PubkeyFromBase58 decodes a base58 string into a Pubkey.
func PubkeyFromBase58(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("invalid base58: %w", err)
	}
	return PubkeyFromBytes(b)
}

// Bytes returns the pubkey as a byte slice.
func (p Pubkey) Bytes() []byte {
	return p[:]
}

// String returns the base58 representation.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// IsZero returns true if the pubkey is all zeros.
func (p Pubkey) IsZero() bool {
	return p == ZeroPubkey
}

// Hash represents a 32-byte digest.
type Hash [32]byte

// HashFromBytes creates a Hash from a byte slice.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != 32 {
		return Hash{}, fmt.Errorf("hash must be 32 bytes, got %d", len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Hex returns the hex representation.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Lamports is the smallest unit of the pooled asset.
type Lamports uint64
