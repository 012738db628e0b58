// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package planner implements the Transfer Planner (spec §4.5): given
// resolved candidate cells for an operation's Items, it produces the
// ordered inputs, outputs, and data of spec §3's TransferComponents.
package planner

import (
	"sort"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/wire"
)

// log is this package's logger, set via UseLogger.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the planner.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Components is spec §3's TransferComponents: the working state built while
// composing one transaction. Every accessor preserves insertion order;
// AddInput rejects an OutPoint already present (invariant 4: no input
// appears twice).
type Components struct {
	Inputs      []wire.CellInput
	InputCells  []wire.Cell
	Outputs     []wire.CellOutput
	OutputsData [][]byte
	Deps        []wire.CellDep
	HeaderDeps  []chainhash.Hash

	depSeen       map[wire.CellDep]struct{}
	inputSeen     map[wire.OutPoint]struct{}
	headerDepSeen map[chainhash.Hash]struct{}
}

// NewComponents returns an empty Components ready for a planner operation
// to populate.
func NewComponents() *Components {
	return &Components{
		depSeen:       make(map[wire.CellDep]struct{}),
		inputSeen:     make(map[wire.OutPoint]struct{}),
		headerDepSeen: make(map[chainhash.Hash]struct{}),
	}
}

// AddHeaderDep appends h to the header-dep set, deduplicated, in insertion
// order (DAO withdraw/claim add the deposit and withdrawing blocks here).
func (c *Components) AddHeaderDep(h chainhash.Hash) {
	if _, ok := c.headerDepSeen[h]; ok {
		return
	}
	c.headerDepSeen[h] = struct{}{}
	c.HeaderDeps = append(c.HeaderDeps, h)
}

// AddInput appends cell as an input with the given Since value. Returns
// false without modifying Components if cell's OutPoint is already an
// input.
func (c *Components) AddInput(cell wire.Cell, since uint64) bool {
	if _, dup := c.inputSeen[cell.OutPoint]; dup {
		return false
	}
	c.inputSeen[cell.OutPoint] = struct{}{}
	c.Inputs = append(c.Inputs, wire.CellInput{PreviousOutput: cell.OutPoint, Since: since})
	c.InputCells = append(c.InputCells, cell)
	return true
}

// AddOutput appends output/data and returns the new output's index.
func (c *Components) AddOutput(output wire.CellOutput, data []byte) int {
	c.Outputs = append(c.Outputs, output)
	c.OutputsData = append(c.OutputsData, data)
	return len(c.Outputs) - 1
}

// AddDep appends dep to the script-dep set, deduplicated, in insertion
// order.
func (c *Components) AddDep(dep wire.CellDep) {
	if _, ok := c.depSeen[dep]; ok {
		return
	}
	c.depSeen[dep] = struct{}{}
	c.Deps = append(c.Deps, dep)
}

// InputCapacity sums the capacity of every resolved input cell.
func (c *Components) InputCapacity() uint64 {
	var total uint64
	for _, cell := range c.InputCells {
		total += cell.Output.Capacity
	}
	return total
}

// OutputCapacity sums the capacity of every output.
func (c *Components) OutputCapacity() uint64 {
	return wire.OutputCapacity(c.Outputs)
}

// Transaction renders Components into an unsigned wire.Transaction.
// Witnesses are left nil; the scriptgroup package fills placeholders.
func (c *Components) Transaction() *wire.Transaction {
	tx := wire.New()
	tx.CellDeps = c.Deps
	tx.HeaderDeps = c.HeaderDeps
	tx.Inputs = c.Inputs
	tx.Outputs = c.Outputs
	tx.OutputsData = c.OutputsData
	return tx
}

// SelectCapacity greedily selects from candidates in descending-capacity
// order until the running total (starting at alreadyHave) reaches target
// (spec §4.5.1/§4.6: "greedy by descending capacity"/"in descending
// capacity order"). Returns the selected cells, in selection order, and the
// resulting running total (which may still be below target if candidates
// are exhausted — callers check for that themselves).
func SelectCapacity(candidates []wire.Cell, alreadyHave, target uint64) ([]wire.Cell, uint64) {
	sorted := make([]wire.Cell, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Output.Capacity > sorted[j].Output.Capacity
	})

	total := alreadyHave
	var picked []wire.Cell
	for _, c := range sorted {
		if total >= target {
			break
		}
		picked = append(picked, c)
		total += c.Output.Capacity
	}
	return picked, total
}

// ToInfo is a single transfer recipient: a resolved lock script and the
// amount (native shannons or UDT units, depending on the calling
// operation) it should receive.
type ToInfo struct {
	Lock   wire.Script
	Amount uint64
}
