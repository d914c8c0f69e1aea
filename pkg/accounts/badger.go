package accounts

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/fluxvm/pool-ledger/pkg/types"
)

// accountKeyPrefix is the prefix for account keys in BadgerDB.
const accountKeyPrefix = "account:"

// BadgerStore is a persistent Store backed by BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB account store at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is too chatty for a CLI

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func accountKey(pubkey types.Pubkey) []byte {
	key := make([]byte, 0, len(accountKeyPrefix)+32)
	key = append(key, accountKeyPrefix...)
	key = append(key, pubkey[:]...)
	return key
}

// Get retrieves an account by pubkey. Returns nil, nil if missing.
func (s *BadgerStore) Get(pubkey types.Pubkey) (*types.Account, error) {
	var account *types.Account
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(accountKey(pubkey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			account, err = DeserializeAccount(val)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", pubkey.String(), err)
	}
	return account, nil
}

// Put stores an account.
func (s *BadgerStore) Put(pubkey types.Pubkey, account *types.Account) error {
	buf, err := SerializeAccount(account)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(accountKey(pubkey), buf)
	})
	if err != nil {
		return fmt.Errorf("failed to put account %s: %w", pubkey.String(), err)
	}
	return nil
}

// Delete removes an account.
func (s *BadgerStore) Delete(pubkey types.Pubkey) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(accountKey(pubkey))
	})
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", pubkey.String(), err)
	}
	return nil
}

// Has returns true if the account exists.
func (s *BadgerStore) Has(pubkey types.Pubkey) bool {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(accountKey(pubkey))
		return err
	})
	return err == nil
}

// Len returns the number of stored accounts.
func (s *BadgerStore) Len() (uint64, error) {
	var count uint64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(accountKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ForEach visits every stored account.
func (s *BadgerStore) ForEach(fn func(pubkey types.Pubkey, account *types.Account) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(accountKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			if len(key) != len(accountKeyPrefix)+32 {
				continue
			}
			var pubkey types.Pubkey
			copy(pubkey[:], key[len(accountKeyPrefix):])

			err := item.Value(func(val []byte) error {
				account, err := DeserializeAccount(val)
				if err != nil {
					return err
				}
				return fn(pubkey, account)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Ensure BadgerStore implements Store.
var _ Store = (*BadgerStore)(nil)
