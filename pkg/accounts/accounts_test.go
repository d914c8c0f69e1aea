package accounts

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/fluxvm/pool-ledger/pkg/types"
)

func testPubkey(seed string) types.Pubkey {
	hash := sha256.Sum256([]byte(seed))
	var pk types.Pubkey
	copy(pk[:], hash[:])
	return pk
}

func testAccount(lamports uint64, data []byte) *types.Account {
	return &types.Account{
		Lamports: types.Lamports(lamports),
		Data:     data,
		Owner:    testPubkey("owner"),
	}
}

func runStoreTests(t *testing.T, store Store) {
	t.Helper()

	key := testPubkey("alice")

	// Missing accounts are nil, nil.
	got, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for a missing account")
	}
	if store.Has(key) {
		t.Error("Has reported a missing account")
	}

	account := testAccount(42, []byte{1, 2, 3})
	if err := store.Put(key, account); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !store.Has(key) {
		t.Error("Has missed a stored account")
	}

	got, err = store.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Lamports != 42 || !bytes.Equal(got.Data, []byte{1, 2, 3}) || got.Owner != account.Owner {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// Mutating the returned copy must not affect the stored account.
	got.Data[0] = 99
	again, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Data[0] != 1 {
		t.Error("caller mutation leaked into the store")
	}

	if err := store.Put(testPubkey("bob"), testAccount(7, nil)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	n, err := store.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}

	seen := make(map[types.Pubkey]uint64)
	err = store.ForEach(func(pubkey types.Pubkey, account *types.Account) error {
		seen[pubkey] = uint64(account.Lamports)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if len(seen) != 2 || seen[key] != 42 || seen[testPubkey("bob")] != 7 {
		t.Errorf("ForEach visited %v", seen)
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Has(key) {
		t.Error("account survived Delete")
	}
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	defer store.Close()
	runStoreTests(t, store)
}

func TestBadgerStore(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()
	runStoreTests(t, store)
}

func TestSerializeAccountRoundTrip(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0xAB}, make([]byte, 200)} {
		account := testAccount(123456789, data)
		buf, err := SerializeAccount(account)
		if err != nil {
			t.Fatalf("serialize failed: %v", err)
		}
		if len(buf) != recordMinSize+len(data) {
			t.Errorf("encoded %d bytes, want %d", len(buf), recordMinSize+len(data))
		}

		decoded, err := DeserializeAccount(buf)
		if err != nil {
			t.Fatalf("deserialize failed: %v", err)
		}
		if decoded.Lamports != account.Lamports {
			t.Errorf("lamports = %d, want %d", decoded.Lamports, account.Lamports)
		}
		if decoded.Owner != account.Owner {
			t.Error("owner mismatch")
		}
		if !bytes.Equal(decoded.Data, data) {
			t.Errorf("data mismatch: %v vs %v", decoded.Data, data)
		}
	}
}

func TestDeserializeAccountTruncated(t *testing.T) {
	buf, err := SerializeAccount(testAccount(1, []byte{1, 2, 3, 4}))
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}

	for _, cut := range []int{0, recordMinSize - 1, len(buf) - 1} {
		if _, err := DeserializeAccount(buf[:cut]); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("cut=%d: expected ErrInvalidRecord, got %v", cut, err)
		}
	}
}
