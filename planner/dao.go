// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package planner

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/daoengine"
	"github.com/toole-brendan/shell-mercury/wire"
)

// DAODeposit builds a fresh DAO deposit cell (spec §4.5.7): one deposit per
// call, type=DAO, data all-zero, capacity=amount. Fee and change are the
// balancer's concern, applied by the caller after this returns.
func DAODeposit(daoType, to wire.Script, amount uint64) *Components {
	comp := NewComponents()
	comp.AddOutput(wire.CellOutput{Capacity: amount, Lock: to, Type: &daoType}, daoengine.DepositData())
	return comp
}

// DAOWithdraw builds the phase-1 withdrawing transaction (spec §4.5.8):
// rewrites deposit into a withdrawing cell at the same lock and capacity,
// data replaced by withdrawBlockNumber, with a header dep on the deposit's
// own creating block. Returns NoDepositCell when deposit is nil.
func DAOWithdraw(op string, deposit *wire.Cell, depositBlockHash chainhash.Hash, withdrawBlockNumber uint64) (*Components, error) {
	if deposit == nil {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonNoDepositCell,
			"identity has no DAO deposit cell")
	}
	comp := NewComponents()
	comp.AddInput(*deposit, 0)
	output, data := daoengine.WithdrawingOutput(deposit.Output, withdrawBlockNumber)
	comp.AddOutput(output, data)
	comp.AddHeaderDep(depositBlockHash)
	return comp, nil
}

// WithdrawingCell bundles a phase-1 withdrawing cell with the epoch values,
// header hashes, and accumulated-rate fields DAOClaim needs to evaluate
// maturity and compute the reward (spec §4.5.9).
type WithdrawingCell struct {
	Cell              wire.Cell
	DepositEpoch      uint64
	WithdrawEpoch     uint64
	DepositBlockHash  chainhash.Hash
	WithdrawBlockHash chainhash.Hash
	ARDeposit         uint64
	ARWithdraw        uint64
}

// DAOClaim builds the phase-2 claim transaction (spec §4.5.9): consumes
// every cell in matured, header-deps each one's deposit and withdraw
// blocks, and emits one output locked by to carrying the summed matured
// capacity minus fee. Returns NoMatureWithdrawing if matured is empty or
// any entry has not in fact reached maturity as of tipEpoch.
func DAOClaim(op string, lockupEpochs uint64, matured []WithdrawingCell, to wire.Script, tipEpoch, fee uint64) (*Components, error) {
	if len(matured) == 0 {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonNoMatureWithdrawing,
			"identity has no matured DAO withdrawing cell")
	}

	comp := NewComponents()
	var totalMatured uint64
	for _, w := range matured {
		if !daoengine.IsMature(lockupEpochs, w.DepositEpoch, w.WithdrawEpoch, tipEpoch) {
			return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonNoMatureWithdrawing,
				"a requested withdrawing cell has not reached maturity")
		}
		comp.AddInput(w.Cell, 0)
		comp.AddHeaderDep(w.DepositBlockHash)
		comp.AddHeaderDep(w.WithdrawBlockHash)

		maturedCapacity, err := daoengine.MaturedCapacity(w.Cell.Output.Capacity, w.ARDeposit, w.ARWithdraw)
		if err != nil {
			return nil, cellerrors.Wrap(op, cellerrors.Internal, "", err)
		}
		totalMatured += maturedCapacity
	}

	if totalMatured < fee {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
			"matured capacity does not cover fee")
	}
	comp.AddOutput(wire.CellOutput{Capacity: totalMatured - fee, Lock: to}, nil)

	log.Debugf("%s: claimed %d withdrawing cells, matured capacity %d", op, len(matured), totalMatured)
	return comp, nil
}
