// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash returns the transaction hash: chainhash.HashH over a canonical
// serialization of every field except Witnesses, mirroring the cell
// model's separation of a transaction's identity from its signatures (an
// input's witness can be filled in later without changing what it spends
// or produces).
func (tx Transaction) Hash() chainhash.Hash {
	var buf bytes.Buffer
	writeUint32(&buf, tx.Version)

	writeUint32(&buf, uint32(len(tx.CellDeps)))
	for _, d := range tx.CellDeps {
		buf.Write(d.OutPoint.TxHash[:])
		writeUint32(&buf, d.OutPoint.Index)
		buf.WriteByte(byte(d.DepType))
	}

	writeUint32(&buf, uint32(len(tx.HeaderDeps)))
	for _, hd := range tx.HeaderDeps {
		buf.Write(hd[:])
	}

	writeUint32(&buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf.Write(in.PreviousOutput.TxHash[:])
		writeUint32(&buf, in.PreviousOutput.Index)
		writeUint64(&buf, in.Since)
	}

	writeUint32(&buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		writeUint64(&buf, out.Capacity)
		buf.Write(out.Lock.CodeHash[:])
		buf.WriteByte(byte(out.Lock.HashType))
		writeUint32(&buf, uint32(len(out.Lock.Args)))
		buf.Write(out.Lock.Args)
		if out.Type != nil {
			buf.WriteByte(1)
			buf.Write(out.Type.CodeHash[:])
			buf.WriteByte(byte(out.Type.HashType))
			writeUint32(&buf, uint32(len(out.Type.Args)))
			buf.Write(out.Type.Args)
		} else {
			buf.WriteByte(0)
		}
	}

	writeUint32(&buf, uint32(len(tx.OutputsData)))
	for _, d := range tx.OutputsData {
		writeUint32(&buf, uint32(len(d)))
		buf.Write(d)
	}

	return chainhash.HashH(buf.Bytes())
}

// TxHash is a free-function form of Transaction.Hash, convenient at call
// sites holding a value rather than wanting a method expression.
func TxHash(tx Transaction) chainhash.Hash {
	return tx.Hash()
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
