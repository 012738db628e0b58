// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OwnershipTag discriminates the two forms a RecordID's trailing ownership
// string may take.
type OwnershipTag uint8

const (
	// OwnershipAddress means the trailing string is a human-readable
	// address.
	OwnershipAddress OwnershipTag = iota

	// OwnershipLockHash means the trailing string is a hex-encoded
	// lock-script hash.
	OwnershipLockHash
)

// Ownership is the decoded tail of a RecordID: a tag plus the string it
// qualifies.
type Ownership struct {
	Tag   OwnershipTag
	Value string
}

// recordIDFixedLen is the length of the fixed-width prefix: 32-byte
// tx-hash, 4-byte big-endian output-index, 1-byte tag.
const recordIDFixedLen = chainhash.HashSize + 4 + 1

// EncodeRecordID serializes an OutPoint and Ownership into the binary
// format of spec §6: big-endian tx-hash ‖ big-endian 4-byte output-index ‖
// 1-byte ownership-tag ‖ UTF-8 ownership-string.
//
// chainhash.Hash is already stored and compared internally in the byte
// order the chain uses for hashes, so the "big-endian tx-hash" requirement
// is satisfied by writing it out verbatim; only the 4-byte index needs an
// explicit byte-order choice.
func EncodeRecordID(op OutPoint, ownership Ownership) []byte {
	buf := make([]byte, recordIDFixedLen+len(ownership.Value))
	copy(buf[:chainhash.HashSize], op.TxHash[:])
	binary.BigEndian.PutUint32(buf[chainhash.HashSize:chainhash.HashSize+4], op.Index)
	buf[chainhash.HashSize+4] = byte(ownership.Tag)
	copy(buf[recordIDFixedLen:], ownership.Value)
	return buf
}

// DecodeRecordID parses the binary format produced by EncodeRecordID,
// rejecting any tag it does not recognize (spec §9: treat as a binary
// tagged union with an explicit discriminator, reject unknown tags).
func DecodeRecordID(data []byte) (OutPoint, Ownership, error) {
	if len(data) < recordIDFixedLen {
		return OutPoint{}, Ownership{}, fmt.Errorf("record id too short: %d bytes", len(data))
	}

	var op OutPoint
	copy(op.TxHash[:], data[:chainhash.HashSize])
	op.Index = binary.BigEndian.Uint32(data[chainhash.HashSize : chainhash.HashSize+4])

	tag := OwnershipTag(data[chainhash.HashSize+4])
	switch tag {
	case OwnershipAddress, OwnershipLockHash:
	default:
		return OutPoint{}, Ownership{}, fmt.Errorf("unknown ownership tag: %d", tag)
	}

	value := string(data[recordIDFixedLen:])
	return op, Ownership{Tag: tag, Value: value}, nil
}
