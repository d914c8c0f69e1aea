package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fluxvm/pool-ledger/pkg/types"
)

// Serialization format:
// - lamports: 8 bytes (little-endian uint64)
// - data_len: 4 bytes (little-endian uint32)
// - data:     data_len bytes
// - owner:    32 bytes
//
// Total fixed size: 8 + 4 + 32 = 44 bytes + variable data

const (
	recordHeaderSize = 8 + 4 // lamports + data_len
	recordFooterSize = 32    // owner
	recordMinSize    = recordHeaderSize + recordFooterSize
)

// ErrInvalidRecord is returned when a serialized account is malformed.
var ErrInvalidRecord = errors.New("invalid account record")

// SerializeAccount serializes an account to binary format.
func SerializeAccount(account *types.Account) ([]byte, error) {
	if account == nil {
		return nil, errors.New("cannot serialize nil account")
	}

	dataLen := len(account.Data)
	buf := make([]byte, recordMinSize+dataLen)

	offset := 0
	binary.LittleEndian.PutUint64(buf[offset:], uint64(account.Lamports))
	offset += 8
	binary.LittleEndian.PutUint32(buf[offset:], uint32(dataLen))
	offset += 4
	if dataLen > 0 {
		copy(buf[offset:], account.Data)
		offset += dataLen
	}
	copy(buf[offset:], account.Owner[:])

	return buf, nil
}

// DeserializeAccount deserializes an account from binary format.
func DeserializeAccount(buf []byte) (*types.Account, error) {
	if len(buf) < recordMinSize {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d",
			ErrInvalidRecord, recordMinSize, len(buf))
	}

	offset := 0
	lamports := binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	dataLen := int(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4

	if len(buf) < recordMinSize+dataLen {
		return nil, fmt.Errorf("%w: declared data length %d exceeds buffer",
			ErrInvalidRecord, dataLen)
	}

	account := &types.Account{
		Lamports: types.Lamports(lamports),
	}
	if dataLen > 0 {
		account.Data = make([]byte, dataLen)
		copy(account.Data, buf[offset:offset+dataLen])
		offset += dataLen
	}
	copy(account.Owner[:], buf[offset:offset+32])

	return account, nil
}
