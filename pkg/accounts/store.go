// Package accounts provides account storage for the pool ledger host.
package accounts

import (
	"sync"

	"github.com/fluxvm/pool-ledger/pkg/types"
)

// Store is the account storage interface used by the host.
type Store interface {
	// Get retrieves an account by pubkey. Returns nil, nil if the account
	// does not exist.
	Get(pubkey types.Pubkey) (*types.Account, error)

	// Put stores an account.
	Put(pubkey types.Pubkey, account *types.Account) error

	// Delete removes an account.
	Delete(pubkey types.Pubkey) error

	// Has returns true if the account exists.
	Has(pubkey types.Pubkey) bool

	// Len returns the number of stored accounts.
	Len() (uint64, error)

	// ForEach visits every stored account. Iteration stops on the first
	// error returned by fn.
	ForEach(fn func(pubkey types.Pubkey, account *types.Account) error) error

	// Close closes the store.
	Close() error
}

// MemStore is an in-memory Store for tests and tooling.
type MemStore struct {
	mu       sync.RWMutex
	accounts map[types.Pubkey]*types.Account
}

// NewMemStore creates a new in-memory account store.
func NewMemStore() *MemStore {
	return &MemStore{
		accounts: make(map[types.Pubkey]*types.Account),
	}
}

// Get retrieves an account by pubkey. Returns nil, nil if missing.
func (s *MemStore) Get(pubkey types.Pubkey) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[pubkey]
	if !exists {
		return nil, nil
	}
	// Clones guard the stored copy against caller mutation
	return account.Clone(), nil
}

// Put stores an account.
func (s *MemStore) Put(pubkey types.Pubkey, account *types.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[pubkey] = account.Clone()
	return nil
}

// Delete removes an account.
func (s *MemStore) Delete(pubkey types.Pubkey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.accounts, pubkey)
	return nil
}

// Has returns true if the account exists.
func (s *MemStore) Has(pubkey types.Pubkey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.accounts[pubkey]
	return exists
}

// Len returns the number of stored accounts.
func (s *MemStore) Len() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.accounts)), nil
}

// ForEach visits every stored account.
func (s *MemStore) ForEach(fn func(pubkey types.Pubkey, account *types.Account) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for pubkey, account := range s.accounts {
		if err := fn(pubkey, account.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Close clears the store.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[types.Pubkey]*types.Account)
	return nil
}

// Ensure MemStore implements Store.
var _ Store = (*MemStore)(nil)
