// Package runtime provides the execution context handed to the pool
// program: the ordered account feed supplied with an instruction and the
// transfer primitive the program invokes to move funds.
//
// Execution is single-threaded and synchronous. Atomicity across a whole
// instruction is owned by the host, which commits or discards every effect
// as a unit; the context performs no locking and no rollback of its own.
package runtime

import (
	"errors"
	"fmt"

	"github.com/fluxvm/pool-ledger/pkg/types"
)

// Context errors
var (
	// ErrNotEnoughAccounts indicates the account feed was exhausted before
	// the instruction got all the accounts it requires.
	ErrNotEnoughAccounts = errors.New("not enough accounts")

	// ErrAccountNotFound indicates a pubkey is not in the account list.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientLamports indicates a lamport transfer exceeds the
	// source account's balance.
	ErrInsufficientLamports = errors.New("insufficient lamports")
)

// AccountInfo is one account handle from the ordered list supplied with an
// instruction.
type AccountInfo struct {
	Pubkey     types.Pubkey
	Lamports   *uint64 // Shared with the host so transfers are visible to it
	Data       []byte
	Owner      types.Pubkey
	IsSigner   bool
	IsWritable bool
}

// TransferFunc moves amount from source to destination. It is treated as
// atomic and fallible; any error aborts the instruction.
type TransferFunc func(source, destination types.Pubkey, amount uint64) error

// ExecutionContext holds the per-instruction execution state.
type ExecutionContext struct {
	// ProgramID is the program being executed.
	ProgramID types.Pubkey

	// Accounts is the ordered account list accompanying the instruction.
	Accounts []*AccountInfo

	// InstructionData is the raw opcode + payload buffer.
	InstructionData []byte

	accountIndex map[types.Pubkey]int
	cursor       int
	transfer     TransferFunc
}

// NewExecutionContext creates a context over an ordered account list.
func NewExecutionContext(programID types.Pubkey, accounts []*AccountInfo, instructionData []byte) *ExecutionContext {
	ctx := &ExecutionContext{
		ProgramID:       programID,
		Accounts:        accounts,
		InstructionData: instructionData,
		accountIndex:    make(map[types.Pubkey]int, len(accounts)),
	}
	for i, acc := range accounts {
		ctx.accountIndex[acc.Pubkey] = i
	}
	return ctx
}

// SetTransferFunc installs the external transfer primitive. Without one the
// context falls back to moving lamports between in-context accounts.
func (ctx *ExecutionContext) SetTransferFunc(fn TransferFunc) {
	ctx.transfer = fn
}

// NextAccount consumes and returns the next account from the feed.
func (ctx *ExecutionContext) NextAccount() (*AccountInfo, error) {
	if ctx.cursor >= len(ctx.Accounts) {
		return nil, fmt.Errorf("%w: position %d", ErrNotEnoughAccounts, ctx.cursor)
	}
	acc := ctx.Accounts[ctx.cursor]
	ctx.cursor++
	return acc, nil
}

// AccountCount returns the number of accounts in the list.
func (ctx *ExecutionContext) AccountCount() int {
	return len(ctx.Accounts)
}

// GetAccount returns an account by pubkey.
func (ctx *ExecutionContext) GetAccount(pubkey types.Pubkey) (*AccountInfo, error) {
	idx, ok := ctx.accountIndex[pubkey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey.String())
	}
	return ctx.Accounts[idx], nil
}

// Transfer invokes the transfer primitive to move amount from source to
// destination.
func (ctx *ExecutionContext) Transfer(source, destination types.Pubkey, amount uint64) error {
	if ctx.transfer != nil {
		return ctx.transfer(source, destination, amount)
	}
	return ctx.transferLamports(source, destination, amount)
}

// transferLamports moves lamports between two in-context accounts.
func (ctx *ExecutionContext) transferLamports(source, destination types.Pubkey, amount uint64) error {
	src, err := ctx.GetAccount(source)
	if err != nil {
		return err
	}
	dst, err := ctx.GetAccount(destination)
	if err != nil {
		return err
	}
	if *src.Lamports < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientLamports, source.String(), *src.Lamports, amount)
	}
	*src.Lamports -= amount
	*dst.Lamports += amount
	return nil
}
