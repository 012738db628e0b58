// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// OutPoint uniquely identifies a cell by the transaction that created it and
// the index of that cell among the transaction's outputs.
type OutPoint struct {
	TxHash chainhash.Hash
	Index  uint32
}

// NewOutPoint returns a new OutPoint for the given hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) OutPoint {
	return OutPoint{TxHash: *hash, Index: index}
}

// String returns the canonical "hash:index" form used in logs and error
// details.
func (o OutPoint) String() string {
	return o.TxHash.String() + ":" + uitoa(uint64(o.Index))
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// CellOutput is a cell's on-chain header: its capacity reservation and the
// scripts that gate who may spend it (Lock) and how its Data may evolve
// (Type, optional).
type CellOutput struct {
	Capacity uint64
	Lock     Script
	Type     *Script
}

// Cell is the indexer's view of a cell: the identifying OutPoint, its
// CellOutput header, its opaque Data, and the position at which it was
// created — used to order results and to decide maturity/since questions
// relative to the current tip. CreatedEpoch is the chain epoch the cell's
// creating transaction was committed in; classifiers and planners use it
// (rather than re-deriving epoch from BlockNumber, a chain-parameter-
// dependent computation this engine does not own) to evaluate cheque and
// DAO time locks.
type Cell struct {
	OutPoint     OutPoint
	Output       CellOutput
	Data         []byte
	BlockNumber  uint64
	TxIndex      uint32
	CreatedEpoch uint64
}

// DepType distinguishes a cell-dep that points directly at code from one
// that points at a dep-group cell whose data is itself a list of OutPoints
// to resolve transitively.
type DepType uint8

const (
	DepTypeCode DepType = iota
	DepTypeDepGroup
)

// CellDep references a cell whose data or type is required to validate a
// transaction but which is not spent by it.
type CellDep struct {
	OutPoint OutPoint
	DepType  DepType
}

// CellInput references the cell being consumed, and a Since value encoding
// any relative/absolute maturity constraint placed on when it may appear as
// an input (used by cheque reclaim and DAO phase timing).
type CellInput struct {
	PreviousOutput OutPoint
	Since          uint64
}
