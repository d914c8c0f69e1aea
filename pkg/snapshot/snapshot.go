// Package snapshot dumps and restores the whole account store as a single
// compressed, integrity-checked file.
//
// File layout:
//   - magic:    8 bytes "POOLSNAP"
//   - version:  4 bytes (little-endian uint32)
//   - count:    8 bytes (little-endian uint64) - number of accounts
//   - checksum: 32 bytes - BLAKE2b-256 of the compressed payload
//   - payload:  zstd-compressed stream of account entries
//
// Each payload entry is: pubkey (32 bytes) + record_len (4 bytes LE) +
// serialized account record (see pkg/accounts serialization format).
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	"github.com/fluxvm/pool-ledger/pkg/accounts"
	"github.com/fluxvm/pool-ledger/pkg/types"
)

const (
	snapshotVersion uint32 = 1
	headerSize             = 8 + 4 + 8 + 32
)

var snapshotMagic = [8]byte{'P', 'O', 'O', 'L', 'S', 'N', 'A', 'P'}

// Snapshot errors
var (
	// ErrBadMagic indicates the file is not a pool ledger snapshot.
	ErrBadMagic = errors.New("bad snapshot magic")

	// ErrUnsupportedVersion indicates an unknown snapshot version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrChecksumMismatch indicates the payload failed integrity checking.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrTruncated indicates the snapshot ends mid-entry.
	ErrTruncated = errors.New("truncated snapshot")
)

// Save writes every account in the store to a snapshot file at path.
func Save(path string, store accounts.Store) error {
	var payload bytes.Buffer
	var count uint64

	err := store.ForEach(func(pubkey types.Pubkey, account *types.Account) error {
		record, err := accounts.SerializeAccount(account)
		if err != nil {
			return err
		}
		payload.Write(pubkey[:])
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(record)))
		payload.Write(lenBuf[:])
		payload.Write(record)
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to collect accounts: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(payload.Bytes(), nil)
	enc.Close()

	checksum := blake2b.Sum256(compressed)

	buf := make([]byte, 0, headerSize+len(compressed))
	buf = append(buf, snapshotMagic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, snapshotVersion)
	buf = binary.LittleEndian.AppendUint64(buf, count)
	buf = append(buf, checksum[:]...)
	buf = append(buf, compressed...)

	return os.WriteFile(path, buf, 0o644)
}

// Load reads a snapshot file and puts every account into the store.
// Returns the number of accounts restored.
func Load(path string, store accounts.Store) (uint64, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(buf) < headerSize {
		return 0, fmt.Errorf("%w: %d bytes is smaller than the header", ErrTruncated, len(buf))
	}
	if !bytes.Equal(buf[0:8], snapshotMagic[:]) {
		return 0, ErrBadMagic
	}
	version := binary.LittleEndian.Uint32(buf[8:12])
	if version != snapshotVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	count := binary.LittleEndian.Uint64(buf[12:20])

	var checksum [32]byte
	copy(checksum[:], buf[20:52])
	compressed := buf[headerSize:]

	if blake2b.Sum256(compressed) != checksum {
		return 0, ErrChecksumMismatch
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var restored uint64
	offset := 0
	for restored < count {
		if offset+36 > len(payload) {
			return restored, fmt.Errorf("%w: entry %d", ErrTruncated, restored)
		}
		var pubkey types.Pubkey
		copy(pubkey[:], payload[offset:offset+32])
		recordLen := int(binary.LittleEndian.Uint32(payload[offset+32 : offset+36]))
		offset += 36

		if offset+recordLen > len(payload) {
			return restored, fmt.Errorf("%w: entry %d", ErrTruncated, restored)
		}
		account, err := accounts.DeserializeAccount(payload[offset : offset+recordLen])
		if err != nil {
			return restored, err
		}
		offset += recordLen

		if err := store.Put(pubkey, account); err != nil {
			return restored, err
		}
		restored++
	}

	return restored, nil
}
