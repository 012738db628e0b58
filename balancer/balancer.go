// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package balancer implements the Capacity Balancer (spec §4.6): closes the
// capacity equation for an assumed fee by pulling additional payer-owned
// bare-capacity cells and either opening a change output or folding a small
// remainder into an existing payer-owned output.
package balancer

import (
	"sort"

	"github.com/btcsuite/btclog"

	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/wire"
)

// log is this package's logger, set via UseLogger.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the balancer.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// CandidateCell is a payer-owned bare-capacity cell available to cover a
// shortfall, paired with the Cell it was resolved from.
type CandidateCell struct {
	Cell wire.Cell
}

// FoldTarget identifies an existing output the balancer may fold a change
// remainder into: an output already appended to the transaction by the
// planner that is payer-owned, not a cheque output, and not an ACP output.
// Balance opens a fresh change cell whenever the remainder reaches
// MinCellCapacity and folds into the FoldTarget only when the remainder is
// below that minimum.
type FoldTarget struct {
	OutputIndex int
}

// Request bundles everything Balance needs to close the equation for one
// fee assumption.
type Request struct {
	Params cellcfg.Params

	// InputCapacity is the total capacity already committed by the
	// planner's own input selection, before the balancer adds any more.
	InputCapacity uint64

	// OutputCapacity is the total capacity of the planner's outputs
	// before any change output is appended.
	OutputCapacity uint64

	// Fee is the assumed fee this call must close the equation against.
	Fee uint64

	// Candidates are additional payer-owned bare-capacity cells,
	// presorted by the caller is not required: Balance sorts them by
	// descending capacity itself (spec §4.6: "in descending capacity
	// order").
	Candidates []CandidateCell

	// FoldTarget, if non-nil, names an existing payer-owned non-cheque
	// non-ACP output the balancer may fold a sub-minimum remainder into.
	FoldTarget *FoldTarget

	// ChangeLock is the lock script a freshly opened change output would
	// use.
	ChangeLock wire.Script
}

// Result is what the balancer decided.
type Result struct {
	// ExtraInputs are the candidate cells the balancer selected, in the
	// order selected (descending capacity).
	ExtraInputs []wire.Cell

	// NewChangeOutput is set when the balancer opened a fresh change
	// output rather than folding into an existing one.
	NewChangeOutput *wire.CellOutput

	// FoldedInto, when non-nil, names the output index the remainder was
	// folded into, and the amount added.
	FoldedInto     *int
	FoldedAmount   uint64
}

// Balance solves Σinputs = Σoutputs + fee for req.Fee, selecting additional
// inputs and deciding the change strategy (spec §4.6).
func Balance(op string, req Request) (Result, error) {
	sorted := make([]CandidateCell, len(req.Candidates))
	copy(sorted, req.Candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Cell.Output.Capacity > sorted[j].Cell.Output.Capacity
	})

	inputTotal := req.InputCapacity
	target := req.OutputCapacity + req.Fee

	var extra []wire.Cell
	for inputTotal < target {
		if len(sorted) == 0 {
			break
		}
		next := sorted[0]
		sorted = sorted[1:]
		extra = append(extra, next.Cell)
		inputTotal += next.Cell.Output.Capacity
	}

	if inputTotal < target {
		return Result{}, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
			"no payer-owned cells remain to cover capacity and fee")
	}

	remainder := inputTotal - target
	if remainder == 0 {
		log.Debugf("%s: capacity equation closes exactly, no change needed", op)
		return Result{ExtraInputs: extra}, nil
	}

	if remainder >= req.Params.MinCellCapacity {
		change := wire.CellOutput{Capacity: remainder, Lock: req.ChangeLock}
		return Result{ExtraInputs: extra, NewChangeOutput: &change}, nil
	}

	if req.FoldTarget == nil {
		return Result{}, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonChangeBelowMin,
			"change remainder below MIN_CKB_CAPACITY and no existing output to fold into")
	}

	idx := req.FoldTarget.OutputIndex
	log.Debugf("%s: folding %d-shannon remainder into output %d", op, remainder, idx)
	return Result{ExtraInputs: extra, FoldedInto: &idx, FoldedAmount: remainder}, nil
}
