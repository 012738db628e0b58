// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cellcfg

import "github.com/toole-brendan/shell-mercury/wire"

// Occupied computes occupied(cell) (spec §3, §6): the minimum capacity a
// cell must carry, one shannon-unit of ByteShannons per byte of its
// serialized form — the capacity field itself, the lock script, the
// optional type script, and the cell's data. This is the floor invariant 1
// and 3 hold every built output to; it does not itself apply a family's
// extra capacity rule (StandardSudtCapacity, ChequeCellCapacity, ACP
// min-deposit), which the registry's CapacityRule layers on top.
func (p Params) Occupied(output wire.CellOutput, dataLen int) uint64 {
	return uint64(p.occupiedBytes(output, dataLen)) * p.ByteShannons
}

func (p Params) occupiedBytes(output wire.CellOutput, dataLen int) int {
	const capacityFieldBytes = 8
	const hashTypeBytes = 1
	const codeHashBytes = 32

	size := capacityFieldBytes
	size += codeHashBytes + hashTypeBytes + len(output.Lock.Args)
	if output.Type != nil {
		size += codeHashBytes + hashTypeBytes + len(output.Type.Args)
	}
	size += dataLen
	return size
}
