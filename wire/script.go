// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HashType selects how a Script's CodeHash is interpreted when the chain
// resolves which cell-dep serves the script's code.
type HashType uint8

const (
	// HashTypeData matches the dep's cell data by its blake160 hash
	// verbatim; the dep cell's data is run as-is.
	HashTypeData HashType = iota

	// HashTypeType matches the dep's type-script hash; the script is
	// upgradeable so long as the type script is preserved.
	HashTypeType

	// HashTypeData1 is HashTypeData using the newer data hashing rule;
	// kept distinct because old cells were hashed under the original
	// rule and are not reachable by re-hashing under the new one.
	HashTypeData1
)

// Script is a lock or type script: a template (CodeHash, HashType) plus
// Args, the template's instance data (e.g. a blake160 identity for a
// single-sig lock, or a UDT's issuer-scoped discriminator for a type).
type Script struct {
	CodeHash chainhash.Hash
	HashType HashType
	Args     []byte
}

// Equal reports whether two scripts are byte-for-byte identical.
func (s Script) Equal(other Script) bool {
	return s.CodeHash == other.CodeHash &&
		s.HashType == other.HashType &&
		bytes.Equal(s.Args, other.Args)
}

// Hash returns the script's hash, the value used to key script groups and
// to populate a lock-hash or type-hash filter against the indexer.
func (s Script) Hash() chainhash.Hash {
	buf := make([]byte, 0, chainhash.HashSize+1+len(s.Args))
	buf = append(buf, s.CodeHash[:]...)
	buf = append(buf, byte(s.HashType))
	buf = append(buf, s.Args...)
	return chainhash.HashH(buf)
}

// IsZero reports whether the script is the zero value (used to represent
// "no type script" without an extra pointer-nilness check at call sites
// that already hold a Script by value).
func (s Script) IsZero() bool {
	return s.CodeHash == chainhash.Hash{} && len(s.Args) == 0
}
