// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package planner

import (
	"github.com/toole-brendan/shell-mercury/acpengine"
	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/wire"
)

// NativeHoldByFrom builds the input/output set for a native-capacity
// transfer paid for entirely by the from side (spec §4.5.1): one output per
// recipient, inputs selected greedily by descending capacity from
// fromCandidates to cover the requested amounts plus fee plus a
// min-cell-capacity buffer for whatever change the balancer later opens.
// since is applied uniformly to every selected from-input (zero means no
// constraint).
func NativeHoldByFrom(op string, params cellcfg.Params, fromCandidates []wire.Cell, to []ToInfo, fee, since uint64) (*Components, error) {
	if len(to) == 0 {
		return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode, "native transfer requires at least one recipient")
	}

	comp := NewComponents()
	var outputTotal uint64
	for _, t := range to {
		comp.AddOutput(wire.CellOutput{Capacity: t.Amount, Lock: t.Lock}, nil)
		outputTotal += t.Amount
	}

	target := outputTotal + fee + params.MinCellCapacity
	picked, total := SelectCapacity(fromCandidates, 0, target)
	for _, cell := range picked {
		comp.AddInput(cell, since)
	}
	if total < outputTotal+fee {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
			"from cells do not cover the requested transfer amount and fee")
	}

	log.Debugf("%s: selected %d from-inputs totalling %d shannons for %d recipients", op, len(picked), total, len(to))
	return comp, nil
}

// NativeHoldByTo builds the input/output set for a native-capacity transfer
// into the recipient's own ACP cell (spec §4.5.2): the ACP cell is consumed
// and re-emitted with capacity += amount, data unchanged; the from side
// covers fee from its own cells. recipientACP is nil when the recipient has
// no suitable ACP cell, which is NoACP.
func NativeHoldByTo(op string, params cellcfg.Params, recipientACP *wire.Cell, fromCandidates []wire.Cell, amount, fee uint64) (*Components, error) {
	if recipientACP == nil {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonNoACP,
			"recipient has no ACP cell for this asset")
	}

	comp := NewComponents()
	comp.AddInput(*recipientACP, 0)
	comp.AddOutput(acpengine.TopUp(recipientACP.Output, amount), recipientACP.Data)

	target := fee + params.MinCellCapacity
	picked, total := SelectCapacity(fromCandidates, 0, target)
	for _, cell := range picked {
		comp.AddInput(cell, 0)
	}
	if total < fee {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
			"from cells do not cover fee")
	}

	log.Debugf("%s: topped up recipient ACP by %d shannons, %d fee-paying inputs", op, amount, len(picked))
	return comp, nil
}
