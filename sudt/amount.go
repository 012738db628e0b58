// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sudt implements the SUDT (simple user-defined token) data
// encoding (spec §3: "UDT balance is encoded in the first 16 bytes of cell
// data, little-endian unsigned 128-bit").
package sudt

import (
	"math/big"
)

// AmountSize is the fixed width of an encoded UDT amount within cell data.
const AmountSize = 16

var maxAmount = new(big.Int).Lsh(big.NewInt(1), 128)

// Decode reads the little-endian 128-bit UDT amount from the head of data.
// A cell whose data is shorter than AmountSize (e.g. a freshly created ACP
// cell that has not yet had a SUDT type attached) decodes as zero.
func Decode(data []byte) *big.Int {
	if len(data) < AmountSize {
		return new(big.Int)
	}
	n := len(data)
	if n > AmountSize {
		n = AmountSize
	}
	be := make([]byte, n)
	for i := 0; i < n; i++ {
		be[i] = data[n-1-i]
	}
	return new(big.Int).SetBytes(be)
}

// Encode writes amount as the little-endian 128-bit prefix of a cell's
// data, preserving any trailing bytes already present after the amount
// field (SUDT cells carry no trailing data in this engine, but a type
// script's own extension data, if any, is not this package's concern).
func Encode(amount *big.Int, tail []byte) ([]byte, error) {
	if amount.Sign() < 0 {
		return nil, errNegativeAmount
	}
	if amount.Cmp(maxAmount) >= 0 {
		return nil, errAmountOverflow
	}
	be := amount.FillBytes(make([]byte, AmountSize))
	out := make([]byte, AmountSize+len(tail))
	for i := 0; i < AmountSize; i++ {
		out[i] = be[AmountSize-1-i]
	}
	copy(out[AmountSize:], tail)
	return out, nil
}

// Zero returns the data payload for a zero-balance SUDT cell.
func Zero() []byte {
	return make([]byte, AmountSize)
}
