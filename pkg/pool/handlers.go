package pool

import (
	"encoding/binary"
	"fmt"

	"github.com/fluxvm/pool-ledger/pkg/runtime"
)

// handleDeposit handles the Deposit instruction.
// Account layout (after the pool state account at position 0):
//
//	[1] depositor - the crediting party
//	[2] depositor funds - first 8 bytes hold the available balance (u64 LE)
func handleDeposit(ctx *runtime.ExecutionContext, state *PoolState, inst *DepositInstruction) error {
	depositor, err := ctx.NextAccount()
	if err != nil {
		return err
	}
	fundsAcc, err := ctx.NextAccount()
	if err != nil {
		return err
	}

	if len(fundsAcc.Data) < 8 {
		return fmt.Errorf("%w: depositor funds buffer requires 8 bytes, got %d",
			ErrInvalidAccountData, len(fundsAcc.Data))
	}
	available := binary.LittleEndian.Uint64(fundsAcc.Data[0:8])
	if available < inst.Amount {
		return fmt.Errorf("%w: depositor has %d, need %d",
			ErrInsufficientFunds, available, inst.Amount)
	}

	// Check for overflow before moving any funds
	if state.TotalLiquidity > ^uint64(0)-inst.Amount {
		return ErrOverflow
	}
	if state.BalanceOf(depositor.Pubkey) > ^uint64(0)-inst.Amount {
		return ErrOverflow
	}

	if err := ctx.Transfer(depositor.Pubkey, state.TokenAccount, inst.Amount); err != nil {
		return err
	}

	state.TotalLiquidity += inst.Amount
	state.Credit(depositor.Pubkey, inst.Amount)

	return nil
}

// handleWithdraw handles the Withdraw instruction.
// Account layout (after the pool state account at position 0):
//
//	[1] withdrawer - the receiving party
//
// The sufficiency check is against aggregate liquidity only; the
// withdrawer's own recorded balance is not consulted. The per-user debit
// has no floor and wraps on underflow, and an unrecorded withdrawer gets
// no entry while total liquidity still decreases.
func handleWithdraw(ctx *runtime.ExecutionContext, state *PoolState, inst *WithdrawInstruction) error {
	withdrawer, err := ctx.NextAccount()
	if err != nil {
		return err
	}

	if inst.Amount > state.TotalLiquidity {
		return fmt.Errorf("%w: pool holds %d, need %d",
			ErrInsufficientFunds, state.TotalLiquidity, inst.Amount)
	}

	if err := ctx.Transfer(state.TokenAccount, withdrawer.Pubkey, inst.Amount); err != nil {
		return err
	}

	state.TotalLiquidity -= inst.Amount
	state.Debit(withdrawer.Pubkey, inst.Amount)

	return nil
}

// handleQueryBalance handles the QueryBalance instruction.
// Account layout (after the pool state account at position 0):
//
//	[1] requester (writable) - receives its balance in its own data buffer
//
// The balance is written as 8 little-endian bytes into the first 8 bytes
// of the requester's data buffer, clobbering whatever those bytes held.
// An address with no recorded entry reads as 0.
func handleQueryBalance(ctx *runtime.ExecutionContext, state *PoolState) error {
	requester, err := ctx.NextAccount()
	if err != nil {
		return err
	}

	if len(requester.Data) < 8 {
		return fmt.Errorf("%w: requester buffer requires 8 bytes, got %d",
			ErrInvalidAccountData, len(requester.Data))
	}

	balance := state.BalanceOf(requester.Pubkey)
	binary.LittleEndian.PutUint64(requester.Data[0:8], balance)

	return nil
}
