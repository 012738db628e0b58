// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// SerializeSize estimates the byte length of tx's on-wire encoding, for fee
// calculation only (spec §4.7): the on-chain canonical encoding is the
// chain node's concern, not this engine's, but the fee fixed-point needs a
// stable, monotonic size figure to converge against, and this is it.
func (tx Transaction) SerializeSize() int {
	const fieldLenBytes = 4
	const hashBytes = chainhash.HashSize
	const outPointBytes = hashBytes + fieldLenBytes
	const cellDepBytes = outPointBytes + 1
	const cellInputBytes = outPointBytes + 8
	const scriptFixedBytes = hashBytes + 1 + fieldLenBytes

	size := fieldLenBytes // version

	size += fieldLenBytes + len(tx.CellDeps)*cellDepBytes
	size += fieldLenBytes + len(tx.HeaderDeps)*hashBytes
	size += fieldLenBytes + len(tx.Inputs)*cellInputBytes

	size += fieldLenBytes
	for _, o := range tx.Outputs {
		size += 8 // capacity
		size += scriptFixedBytes + len(o.Lock.Args)
		size += 1 // type-script presence flag
		if o.Type != nil {
			size += scriptFixedBytes + len(o.Type.Args)
		}
	}

	size += fieldLenBytes
	for _, d := range tx.OutputsData {
		size += fieldLenBytes + len(d)
	}

	size += fieldLenBytes
	for _, w := range tx.Witnesses {
		size += fieldLenBytes + len(w)
	}

	return size
}
