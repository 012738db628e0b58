// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scriptgroup implements the Script-Group Assembler (spec §4.8):
// groups a finished transaction's inputs by lock script, attaches witness
// placeholder slots, and assembles the final cell-dep set in insertion
// order.
package scriptgroup

import (
	"github.com/toole-brendan/shell-mercury/classifier"
	"github.com/toole-brendan/shell-mercury/wire"
)

// SecpWitnessSize is the zero-filled witness placeholder width for a
// secp256k1 (or any secp-style, e.g. ACP/cheque/DAO) signing group.
const SecpWitnessSize = 65

// PWLockWitnessSize is the zero-filled witness placeholder width for a
// pw-lock signing group (spec §6).
const PWLockWitnessSize = 85

// Group is one signing entry: every input index sharing the same lock (or
// type) script, in the order those inputs appear in the transaction.
type Group struct {
	Script              wire.Script
	InputIndices        []int
	WitnessPlaceholderSize int
}

// Result is the assembler's full output: lock-script groups, type-script
// groups, and the final cell-dep set.
type Result struct {
	LockGroups []Group
	TypeGroups []Group
	CellDeps   []wire.CellDep
}

// Assemble groups tx's inputs by lock and type script. lockFamily classifies
// a lock script's family for witness-size purposes (spec §6: 65 bytes for
// secp-style locks, 85 for pw-lock); requiredDeps names the cell-deps each
// input's lock and type script needs, collected deduplicated in insertion
// order into Result.CellDeps. The planner's own deps are combined with
// these separately, by MergeDeps.
func Assemble(tx *wire.Transaction, resolve func(wire.OutPoint) (wire.Cell, bool), lockFamily func(wire.Script) classifier.Family, requiredDeps func(wire.Script) []wire.CellDep) Result {
	var result Result

	lockIndex := make(map[string]int)
	typeIndex := make(map[string]int)

	depSeen := make(map[wire.CellDep]struct{})

	addDep := func(d wire.CellDep) {
		if _, ok := depSeen[d]; ok {
			return
		}
		depSeen[d] = struct{}{}
		result.CellDeps = append(result.CellDeps, d)
	}

	for i, in := range tx.Inputs {
		cell, ok := resolve(in.PreviousOutput)
		if !ok {
			continue
		}

		lockKey := scriptKey(cell.Output.Lock)
		if idx, ok := lockIndex[lockKey]; ok {
			result.LockGroups[idx].InputIndices = append(result.LockGroups[idx].InputIndices, i)
		} else {
			lockIndex[lockKey] = len(result.LockGroups)
			result.LockGroups = append(result.LockGroups, Group{
				Script:                 cell.Output.Lock,
				InputIndices:           []int{i},
				WitnessPlaceholderSize: witnessSize(lockFamily(cell.Output.Lock)),
			})
		}
		for _, d := range requiredDeps(cell.Output.Lock) {
			addDep(d)
		}

		if cell.Output.Type == nil {
			continue
		}
		typeKey := scriptKey(*cell.Output.Type)
		if idx, ok := typeIndex[typeKey]; ok {
			result.TypeGroups[idx].InputIndices = append(result.TypeGroups[idx].InputIndices, i)
		} else {
			typeIndex[typeKey] = len(result.TypeGroups)
			result.TypeGroups = append(result.TypeGroups, Group{
				Script:       *cell.Output.Type,
				InputIndices: []int{i},
			})
		}
		for _, d := range requiredDeps(*cell.Output.Type) {
			addDep(d)
		}
	}

	return result
}

// MergeDeps appends plannerDeps (already insertion-order-deduplicated by the
// planner) ahead of any deps Assemble discovers on its own, preserving
// overall insertion order: planner-known deps first, then any additional
// deps implied by classified families not already present.
func MergeDeps(plannerDeps []wire.CellDep, assembled []wire.CellDep) []wire.CellDep {
	seen := make(map[wire.CellDep]struct{}, len(plannerDeps)+len(assembled))
	out := make([]wire.CellDep, 0, len(plannerDeps)+len(assembled))
	for _, d := range plannerDeps {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	for _, d := range assembled {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// FillWitnessPlaceholders sizes tx.Witnesses to len(tx.Inputs) and sets a
// zero-filled placeholder of the group's WitnessPlaceholderSize at each
// lock group's first input index, leaving every other entry empty — the
// convention a single signature covers its whole group (spec §4.8).
func FillWitnessPlaceholders(tx *wire.Transaction, result Result) {
	witnesses := make([][]byte, len(tx.Inputs))
	for _, g := range result.LockGroups {
		if len(g.InputIndices) == 0 {
			continue
		}
		witnesses[g.InputIndices[0]] = make([]byte, g.WitnessPlaceholderSize)
	}
	tx.Witnesses = witnesses
}

func witnessSize(family classifier.Family) int {
	if family == classifier.FamilyPWLock {
		return PWLockWitnessSize
	}
	return SecpWitnessSize
}

func scriptKey(s wire.Script) string {
	h := s.Hash()
	return string(h[:])
}
