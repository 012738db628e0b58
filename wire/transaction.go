// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// TxVersion is the only transaction format version this engine emits.
const TxVersion uint32 = 0

// Transaction is an unsigned transaction as produced by this engine: every
// slice is populated in full except Witnesses, whose entries for
// signing-required input groups are zero-filled placeholders of the
// correct length (see scriptgroup.Group.WitnessPlaceholderSize) until a signer
// fills them in. Building, not signing or broadcasting, is this package's
// concern.
type Transaction struct {
	Version     uint32
	CellDeps    []CellDep
	HeaderDeps  []chainhash.Hash
	Inputs      []CellInput
	Outputs     []CellOutput
	OutputsData [][]byte
	Witnesses   [][]byte
}

// New returns an empty Transaction ready for a planner to populate.
func New() *Transaction {
	return &Transaction{Version: TxVersion}
}

// InputCapacity sums the capacities of the cells referenced by a resolver
// function over the transaction's inputs. The planner and balancer both
// need this repeatedly while closing the capacity equation, and they
// always have the resolved Cell for each input at hand (the transaction
// itself only carries OutPoints, not the cells they point to).
func InputCapacity(inputs []CellInput, resolve func(OutPoint) (Cell, bool)) uint64 {
	var total uint64
	for _, in := range inputs {
		if c, ok := resolve(in.PreviousOutput); ok {
			total += c.Output.Capacity
		}
	}
	return total
}

// OutputCapacity sums the capacity of a transaction's outputs.
func OutputCapacity(outputs []CellOutput) uint64 {
	var total uint64
	for _, o := range outputs {
		total += o.Capacity
	}
	return total
}

// HasInput reports whether the transaction already consumes the given
// OutPoint — invariant 4 of the data model (no input appears twice) is
// enforced by checking this before every append.
func HasInput(inputs []CellInput, op OutPoint) bool {
	for _, in := range inputs {
		if in.PreviousOutput == op {
			return true
		}
	}
	return false
}
