package pool

import (
	"encoding/binary"
	"fmt"
)

// Pool program instruction discriminators (first byte of instruction data)
const (
	InstructionDeposit      uint8 = 0
	InstructionWithdraw     uint8 = 1
	InstructionQueryBalance uint8 = 2
)

// DepositInstruction represents a Deposit instruction.
// Accounts:
//
//	[0] pool state (writable) - owned by the pool program
//	[1] depositor - the crediting party
//	[2] depositor funds - first 8 bytes hold the available balance (u64 LE)
type DepositInstruction struct {
	Amount uint64 // Amount of lamports to deposit
}

// Decode decodes a Deposit instruction from bytes.
func (inst *DepositInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Deposit requires 8 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a Deposit instruction to bytes.
func (inst *DepositInstruction) Encode() []byte {
	data := make([]byte, 9)
	data[0] = InstructionDeposit
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// WithdrawInstruction represents a Withdraw instruction.
// Accounts:
//
//	[0] pool state (writable) - owned by the pool program
//	[1] withdrawer - the receiving party
type WithdrawInstruction struct {
	Amount uint64 // Amount of lamports to withdraw
}

// Decode decodes a Withdraw instruction from bytes.
func (inst *WithdrawInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Withdraw requires 8 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a Withdraw instruction to bytes.
func (inst *WithdrawInstruction) Encode() []byte {
	data := make([]byte, 9)
	data[0] = InstructionWithdraw
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// QueryBalanceInstruction represents a QueryBalance instruction.
// Accounts:
//
//	[0] pool state (writable) - owned by the pool program
//	[1] requester (writable) - receives its balance in its first 8 data bytes
type QueryBalanceInstruction struct {
	// No additional data required
}

// Decode decodes a QueryBalance instruction from bytes.
func (inst *QueryBalanceInstruction) Decode(_ []byte) error {
	return nil
}

// Encode encodes a QueryBalance instruction to bytes.
func (inst *QueryBalanceInstruction) Encode() []byte {
	return []byte{InstructionQueryBalance}
}

// ParseInstructionDiscriminator extracts the discriminator from instruction data.
func ParseInstructionDiscriminator(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("%w: instruction data too short", ErrInvalidInstructionData)
	}
	return data[0], nil
}
