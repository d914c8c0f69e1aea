// Package pool implements the pool ledger program: a single-asset
// account-balance ledger driven by deposit, withdraw and balance-query
// instructions.
//
// The program operates on a pool state account whose data buffer holds the
// serialized PoolState. Every instruction carries an ordered account list;
// position 0 is always the pool state account and the remaining positions
// are handler-specific. Fund movement goes through the runtime's transfer
// primitive; the host provides atomicity, so a failing instruction leaves
// no effects behind.
package pool

import (
	"fmt"

	"github.com/fluxvm/pool-ledger/pkg/runtime"
	"github.com/fluxvm/pool-ledger/pkg/types"
)

// PoolProgram implements the pool ledger program.
type PoolProgram struct {
	// ProgramID is the pool program's public key
	ProgramID types.Pubkey
}

// New creates a new PoolProgram instance.
func New() *PoolProgram {
	return &PoolProgram{
		ProgramID: types.PoolProgramID,
	}
}

// Execute executes a pool program instruction.
// The instruction format is:
//   - First byte: instruction discriminator
//   - Bytes 1..9: amount (u64 LE) for Deposit and Withdraw
//
// The pool state account is consumed from position 0 of the account feed
// and must be owned by the program. After a handler returns successfully
// the state is re-encoded and written back unconditionally, even when the
// handler performed no mutation. The encoding is dynamically sized, so the
// account's data buffer is replaced rather than patched in place.
func (p *PoolProgram) Execute(ctx *runtime.ExecutionContext, data []byte) error {
	stateAcc, err := ctx.NextAccount()
	if err != nil {
		return err
	}
	if stateAcc.Owner != p.ProgramID {
		return fmt.Errorf("%w: pool state owned by %s, expected %s",
			ErrIncorrectAuthority, stateAcc.Owner.String(), p.ProgramID.String())
	}

	state, err := DeserializePoolState(stateAcc.Data)
	if err != nil {
		return err
	}

	discriminator, err := ParseInstructionDiscriminator(data)
	if err != nil {
		return err
	}

	switch discriminator {
	case InstructionDeposit:
		var inst DepositInstruction
		if err := inst.Decode(data[1:]); err != nil {
			return err
		}
		if err := handleDeposit(ctx, state, &inst); err != nil {
			return err
		}

	case InstructionWithdraw:
		var inst WithdrawInstruction
		if err := inst.Decode(data[1:]); err != nil {
			return err
		}
		if err := handleWithdraw(ctx, state, &inst); err != nil {
			return err
		}

	case InstructionQueryBalance:
		if err := handleQueryBalance(ctx, state); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %d", ErrInvalidOpcode, discriminator)
	}

	stateAcc.Data = state.Serialize()
	return nil
}

// GetProgramID returns the pool program's public key.
func (p *PoolProgram) GetProgramID() types.Pubkey {
	return p.ProgramID
}

// IsPoolProgram checks if a pubkey is the pool program.
func IsPoolProgram(pubkey types.Pubkey) bool {
	return pubkey == types.PoolProgramID
}
