package runtime

import (
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

func testAccount(seed string, lamports uint64) *AccountInfo {
	bal := lamports
	return &AccountInfo{
		Pubkey:     testPubkey(seed),
		Lamports:   &bal,
		Owner:      testPubkey("owner"),
		IsWritable: true,
	}
}

func TestNextAccountOrderAndExhaustion(t *testing.T) {
	accounts := []*AccountInfo{
		testAccount("first", 0),
		testAccount("second", 0),
	}
	ctx := NewExecutionContext(testPubkey("program"), accounts, nil)

	for i, want := range accounts {
		got, err := ctx.NextAccount()
		if err != nil {
			t.Fatalf("account %d: %v", i, err)
		}
		if got != want {
			t.Errorf("account %d: got %s, want %s", i, got.Pubkey.String(), want.Pubkey.String())
		}
	}

	if _, err := ctx.NextAccount(); !errors.Is(err, ErrNotEnoughAccounts) {
		t.Errorf("expected ErrNotEnoughAccounts, got %v", err)
	}
}

func TestGetAccount(t *testing.T) {
	acc := testAccount("known", 5)
	ctx := NewExecutionContext(testPubkey("program"), []*AccountInfo{acc}, nil)

	got, err := ctx.GetAccount(acc.Pubkey)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got != acc {
		t.Error("GetAccount returned a different account")
	}

	if _, err := ctx.GetAccount(testPubkey("stranger")); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDefaultTransfer(t *testing.T) {
	src := testAccount("src", 100)
	dst := testAccount("dst", 7)
	ctx := NewExecutionContext(testPubkey("program"), []*AccountInfo{src, dst}, nil)

	if err := ctx.Transfer(src.Pubkey, dst.Pubkey, 60); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if *src.Lamports != 40 {
		t.Errorf("source has %d lamports, want 40", *src.Lamports)
	}
	if *dst.Lamports != 67 {
		t.Errorf("destination has %d lamports, want 67", *dst.Lamports)
	}
}

func TestDefaultTransferInsufficient(t *testing.T) {
	src := testAccount("src", 10)
	dst := testAccount("dst", 0)
	ctx := NewExecutionContext(testPubkey("program"), []*AccountInfo{src, dst}, nil)

	err := ctx.Transfer(src.Pubkey, dst.Pubkey, 11)
	if !errors.Is(err, ErrInsufficientLamports) {
		t.Fatalf("expected ErrInsufficientLamports, got %v", err)
	}
	if *src.Lamports != 10 || *dst.Lamports != 0 {
		t.Error("failed transfer moved lamports")
	}
}

func TestDefaultTransferUnknownAccount(t *testing.T) {
	src := testAccount("src", 10)
	ctx := NewExecutionContext(testPubkey("program"), []*AccountInfo{src}, nil)

	err := ctx.Transfer(src.Pubkey, testPubkey("elsewhere"), 1)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestSetTransferFuncOverridesDefault(t *testing.T) {
	src := testAccount("src", 10)
	dst := testAccount("dst", 0)
	ctx := NewExecutionContext(testPubkey("program"), []*AccountInfo{src, dst}, nil)

	var gotSource, gotDestination types.Pubkey
	var gotAmount uint64
	ctx.SetTransferFunc(func(source, destination types.Pubkey, amount uint64) error {
		gotSource, gotDestination, gotAmount = source, destination, amount
		return nil
	})

	// The external primitive is used even for amounts the default would
	// reject, and the in-context balances are untouched.
	if err := ctx.Transfer(src.Pubkey, dst.Pubkey, 500); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if gotSource != src.Pubkey || gotDestination != dst.Pubkey || gotAmount != 500 {
		t.Error("transfer primitive received wrong arguments")
	}
	if *src.Lamports != 10 || *dst.Lamports != 0 {
		t.Error("external transfer mutated in-context balances")
	}
}
