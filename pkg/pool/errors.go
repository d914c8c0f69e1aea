package pool

import "errors"

// Pool program errors. Every error is fatal for the instruction that
// raised it; the host discards all uncommitted effects.
var (
	// ErrIncorrectAuthority indicates the pool state account is not owned
	// by the pool program.
	ErrIncorrectAuthority = errors.New("incorrect authority")

	// ErrInvalidOpcode indicates an unknown instruction discriminator.
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrInsufficientFunds indicates a deposit exceeds the depositor's
	// available funding, or a withdrawal exceeds total pool liquidity.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAccountData indicates an account data buffer is malformed
	// or too short for a required fixed-width field.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrInvalidInstructionData indicates the instruction payload is
	// malformed or too short.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrOverflow indicates an arithmetic overflow crediting a balance.
	ErrOverflow = errors.New("overflow")
)
