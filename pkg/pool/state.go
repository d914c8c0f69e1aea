package pool

import (
	"encoding/binary"
	"fmt"

	"github.com/fluxvm/pool-ledger/pkg/types"
)

// State layout sizes
const (
	// PoolHeaderSize is the fixed header: owner (32) + token account (32) +
	// total liquidity (8).
	PoolHeaderSize = 72

	// BalanceRecordSize is one user balance record: address (32) +
	// balance (8).
	BalanceRecordSize = 40
)

// UserBalance is one per-user balance record.
type UserBalance struct {
	Address types.Pubkey // The depositing account
	Balance uint64       // Recorded balance in lamports
}

// PoolState is the persistent ledger record.
// Layout (little-endian integers):
//   - owner: Pubkey (32 bytes) - authority expected to own the state account
//   - token_account: Pubkey (32 bytes) - custody account holding pooled funds
//   - total_liquidity: u64 (8 bytes)
//   - repeated 40-byte records: address (32 bytes) + balance (8 bytes)
//
// No record count is stored; it is inferred from the remaining buffer
// length at decode time. Records keep first-deposit order: new entries are
// appended and never reordered. A pubkey index over the record slice gives
// O(1) lookup without disturbing that order.
type PoolState struct {
	Owner          types.Pubkey  // Authority expected to own the state account
	TokenAccount   types.Pubkey  // Custody account holding pooled funds
	TotalLiquidity uint64        // Aggregate deposited amount
	Balances       []UserBalance // Per-user records in first-deposit order

	index map[types.Pubkey]int
}

// NewPoolState creates an empty pool state.
func NewPoolState(owner, tokenAccount types.Pubkey) *PoolState {
	return &PoolState{
		Owner:        owner,
		TokenAccount: tokenAccount,
		index:        make(map[types.Pubkey]int),
	}
}

// DeserializePoolState deserializes a PoolState from bytes.
// A buffer shorter than the fixed header is rejected. Records are read
// until fewer than a full record remains; a trailing partial record is
// dropped rather than rejected.
func DeserializePoolState(data []byte) (*PoolState, error) {
	if len(data) < PoolHeaderSize {
		return nil, fmt.Errorf("%w: pool state requires %d header bytes, got %d",
			ErrInvalidAccountData, PoolHeaderSize, len(data))
	}

	state := &PoolState{
		index: make(map[types.Pubkey]int),
	}
	copy(state.Owner[:], data[0:32])
	copy(state.TokenAccount[:], data[32:64])
	state.TotalLiquidity = binary.LittleEndian.Uint64(data[64:72])

	for offset := PoolHeaderSize; offset+BalanceRecordSize <= len(data); offset += BalanceRecordSize {
		var rec UserBalance
		copy(rec.Address[:], data[offset:offset+32])
		rec.Balance = binary.LittleEndian.Uint64(data[offset+32 : offset+40])
		state.index[rec.Address] = len(state.Balances)
		state.Balances = append(state.Balances, rec)
	}

	return state, nil
}

// Serialize serializes the PoolState to bytes. The encoding is dynamically
// sized: exactly PoolHeaderSize + BalanceRecordSize per record.
func (s *PoolState) Serialize() []byte {
	data := make([]byte, PoolHeaderSize+BalanceRecordSize*len(s.Balances))

	copy(data[0:32], s.Owner[:])
	copy(data[32:64], s.TokenAccount[:])
	binary.LittleEndian.PutUint64(data[64:72], s.TotalLiquidity)

	offset := PoolHeaderSize
	for _, rec := range s.Balances {
		copy(data[offset:offset+32], rec.Address[:])
		binary.LittleEndian.PutUint64(data[offset+32:offset+40], rec.Balance)
		offset += BalanceRecordSize
	}

	return data
}

// BalanceOf returns the recorded balance for an address, 0 if absent.
func (s *PoolState) BalanceOf(address types.Pubkey) uint64 {
	if i, ok := s.index[address]; ok {
		return s.Balances[i].Balance
	}
	return 0
}

// HasEntry returns true if the address has a recorded balance entry.
func (s *PoolState) HasEntry(address types.Pubkey) bool {
	_, ok := s.index[address]
	return ok
}

// Credit upserts a balance record: an existing entry is increased in
// place, a new entry is appended last.
func (s *PoolState) Credit(address types.Pubkey, amount uint64) {
	if i, ok := s.index[address]; ok {
		s.Balances[i].Balance += amount
		return
	}
	s.index[address] = len(s.Balances)
	s.Balances = append(s.Balances, UserBalance{Address: address, Balance: amount})
}

// Debit decreases an existing entry in place. The subtraction has no floor
// and wraps on underflow. An address with no entry is left without one.
func (s *PoolState) Debit(address types.Pubkey, amount uint64) {
	if i, ok := s.index[address]; ok {
		s.Balances[i].Balance -= amount
	}
}
