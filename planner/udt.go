// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package planner

import (
	"math/big"
	"sort"

	"github.com/toole-brendan/shell-mercury/acpengine"
	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/chequeengine"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/sudt"
	"github.com/toole-brendan/shell-mercury/wire"
)

// selectUDT greedily selects from candidates (each already confirmed to
// carry sudtType) in descending UDT-amount order until the running total
// reaches target, mirroring SelectCapacity's descending-order policy for
// the UDT side of a transfer.
func selectUDT(candidates []wire.Cell, target *big.Int) ([]wire.Cell, *big.Int) {
	sorted := make([]wire.Cell, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sudt.Decode(sorted[i].Data).Cmp(sudt.Decode(sorted[j].Data)) > 0
	})

	total := big.NewInt(0)
	var picked []wire.Cell
	for _, c := range sorted {
		if total.Cmp(target) >= 0 {
			break
		}
		picked = append(picked, c)
		total.Add(total, sudt.Decode(c.Data))
	}
	return picked, total
}

func sumCapacity(cells []wire.Cell) uint64 {
	var total uint64
	for _, c := range cells {
		total += c.Output.Capacity
	}
	return total
}

// remainingByOutPoint returns the subset of all not present in used, keyed
// by OutPoint — needed where a single candidate pool (UDTPayWithAcp's
// ACP cells) serves both the UDT-amount selection and a subsequent
// capacity top-up, so the two selections must not double-pick a cell.
func remainingByOutPoint(all, used []wire.Cell) []wire.Cell {
	if len(used) == 0 {
		return all
	}
	seen := make(map[wire.OutPoint]struct{}, len(used))
	for _, c := range used {
		seen[c.OutPoint] = struct{}{}
	}
	out := make([]wire.Cell, 0, len(all))
	for _, c := range all {
		if _, ok := seen[c.OutPoint]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// UDTHoldByFromCheque builds a UDT transfer routed via a cheque cell (spec
// §4.5.3): the from side allocates a fixed-capacity cheque output carrying
// amount, selects sudt-bearing cells from fromUDTCandidates to cover it
// (returning any surplus to a bare sudt change cell at the sender's own
// lock), and pays the cheque capacity plus fee from fromCapacityCandidates.
// Refuses when receiver and sender resolve to the same lock-hash.
func UDTHoldByFromCheque(op string, reg *registry.Registry, params cellcfg.Params, receiverLockHash, senderLockHash [wire.Blake160Size]byte, senderLock wire.Script, sudtType wire.Script, amount *big.Int, fromUDTCandidates, fromCapacityCandidates []wire.Cell, fee uint64) (*Components, error) {
	if receiverLockHash == senderLockHash {
		return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonSenderEqualsReceiver,
			"cheque receiver and sender must differ")
	}

	comp := NewComponents()

	chequeOutput, chequeData, err := chequeengine.NewOutput(reg, params, receiverLockHash, senderLockHash, sudtType, amount)
	if err != nil {
		return nil, err
	}
	comp.AddOutput(chequeOutput, chequeData)

	udtPicked, udtTotal := selectUDT(fromUDTCandidates, amount)
	if udtTotal.Cmp(amount) < 0 {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientUDT,
			"from cells do not cover the cheque UDT amount")
	}
	for _, c := range udtPicked {
		comp.AddInput(c, 0)
	}

	capacityCovered := sumCapacity(udtPicked)
	capacityTarget := chequeOutput.Capacity + fee

	remainder := new(big.Int).Sub(udtTotal, amount)
	if remainder.Sign() > 0 {
		changeData, encErr := sudt.Encode(remainder, nil)
		if encErr != nil {
			return nil, cellerrors.Wrap(op, cellerrors.InputValidation, cellerrors.ReasonInsufficientUDT, encErr)
		}
		comp.AddOutput(wire.CellOutput{Capacity: params.StandardSudtCapacity, Lock: senderLock, Type: &sudtType}, changeData)
		capacityTarget += params.StandardSudtCapacity
	}

	if capacityCovered < capacityTarget {
		picked, total := SelectCapacity(fromCapacityCandidates, capacityCovered, capacityTarget)
		for _, c := range picked {
			comp.AddInput(c, 0)
		}
		capacityCovered = total
	}
	if capacityCovered < capacityTarget {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
			"from cells do not cover cheque capacity and fee")
	}

	log.Debugf("%s: issued cheque for %s UDT, %d capacity inputs", op, amount.String(), len(comp.Inputs))
	return comp, nil
}

// UDTHoldByTo builds a UDT transfer into the recipient's own ACP cell (spec
// §4.5.4): the ACP is consumed and re-emitted with its UDT balance
// increased by amount; the from side provides the UDT amount from its own
// sudt-bearing cells (ACPs, cheque-claimables, or bare sudt cells) and
// native capacity/fee from its own bare-capacity cells.
func UDTHoldByTo(op string, params cellcfg.Params, recipientACP *wire.Cell, sudtType wire.Script, amount *big.Int, fromUDTCandidates, fromCapacityCandidates []wire.Cell, senderLock wire.Script, fee uint64) (*Components, error) {
	if recipientACP == nil {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonNoACP,
			"recipient has no ACP cell for this asset")
	}

	comp := NewComponents()
	comp.AddInput(*recipientACP, 0)
	newData, err := acpengine.TopUpUDT(recipientACP.Data, amount)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.InputValidation, cellerrors.ReasonInsufficientUDT, err)
	}
	comp.AddOutput(recipientACP.Output, newData)

	udtPicked, udtTotal := selectUDT(fromUDTCandidates, amount)
	if udtTotal.Cmp(amount) < 0 {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientUDT,
			"from cells do not cover the transferred UDT amount")
	}
	for _, c := range udtPicked {
		comp.AddInput(c, 0)
	}

	capacityCovered := sumCapacity(udtPicked)
	capacityTarget := fee

	remainder := new(big.Int).Sub(udtTotal, amount)
	if remainder.Sign() > 0 {
		changeData, encErr := sudt.Encode(remainder, nil)
		if encErr != nil {
			return nil, cellerrors.Wrap(op, cellerrors.InputValidation, cellerrors.ReasonInsufficientUDT, encErr)
		}
		comp.AddOutput(wire.CellOutput{Capacity: params.StandardSudtCapacity, Lock: senderLock, Type: &sudtType}, changeData)
		capacityTarget += params.StandardSudtCapacity
	}

	if capacityCovered < capacityTarget {
		picked, total := SelectCapacity(fromCapacityCandidates, capacityCovered, capacityTarget)
		for _, c := range picked {
			comp.AddInput(c, 0)
		}
		capacityCovered = total
	}
	if capacityCovered < capacityTarget {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
			"from cells do not cover fee")
	}

	log.Debugf("%s: topped up recipient ACP UDT balance by %s", op, amount.String())
	return comp, nil
}

// UDTPayWithAcp builds a UDT transfer where the from side provides both UDT
// and native capacity via its own ACP cells, and the recipient receives a
// fresh ACP-locked cell of standard sudt size (spec §4.5.5).
func UDTPayWithAcp(op string, reg *registry.Registry, params cellcfg.Params, fromACPCandidates []wire.Cell, recipientLock, sudtType wire.Script, amount *big.Int, fee uint64) (*Components, error) {
	comp := NewComponents()

	udtPicked, udtTotal := selectUDT(fromACPCandidates, amount)
	if udtTotal.Cmp(amount) < 0 {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientUDT,
			"from ACP cells do not cover the transferred UDT amount")
	}
	for _, c := range udtPicked {
		comp.AddInput(c, 0)
	}

	recipientData, err := sudt.Encode(amount, nil)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.InputValidation, cellerrors.ReasonInsufficientUDT, err)
	}
	comp.AddOutput(wire.CellOutput{Capacity: params.StandardSudtCapacity, Lock: recipientLock, Type: &sudtType}, recipientData)

	capacityCovered := sumCapacity(udtPicked)
	capacityTarget := params.StandardSudtCapacity + fee

	remainder := new(big.Int).Sub(udtTotal, amount)
	if remainder.Sign() > 0 {
		changeData, encErr := sudt.Encode(remainder, nil)
		if encErr != nil {
			return nil, cellerrors.Wrap(op, cellerrors.InputValidation, cellerrors.ReasonInsufficientUDT, encErr)
		}
		normalizedLock, normErr := acpengine.Normalize(udtPicked[0].Output.Lock, reg)
		if normErr != nil {
			return nil, normErr
		}
		comp.AddOutput(wire.CellOutput{Capacity: params.StandardSudtCapacity, Lock: normalizedLock, Type: &sudtType}, changeData)
		capacityTarget += params.StandardSudtCapacity
	}

	if capacityCovered < capacityTarget {
		remainingACP := remainingByOutPoint(fromACPCandidates, udtPicked)
		picked, total := SelectCapacity(remainingACP, capacityCovered, capacityTarget)
		for _, c := range picked {
			comp.AddInput(c, 0)
		}
		capacityCovered = total
	}
	if capacityCovered < capacityTarget {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
			"from ACP cells do not cover the new recipient cell's capacity and fee")
	}

	log.Debugf("%s: paid %s UDT to a fresh ACP cell from %d source ACPs", op, amount.String(), len(udtPicked))
	return comp, nil
}
