// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ops

import (
	"context"

	"github.com/toole-brendan/shell-mercury/balancer"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/planner"
	"github.com/toole-brendan/shell-mercury/resolver"
	"github.com/toole-brendan/shell-mercury/wire"
)

// BuildAdjustAccount implements build_adjust_account (spec §4.9 / §4.5.6).
// Requires a UDT asset: an ACP "account" is always scoped to one sudt
// type, so a CKB asset without SUDTType set is AdjustAccountWithoutUDTInfo.
func (e *Engine) BuildAdjustAccount(ctx context.Context, cmd BuildAdjustAccountCmd) (*BuildAdjustAccountResult, error) {
	const op = "build_adjust_account"
	if cmd.Asset.Native {
		return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonAdjustAccountWithoutUDTInfo,
			"adjust_account requires a UDT asset")
	}

	tip, err := e.Chain.GetTipHeader(ctx)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}

	itemCells, err := e.gatherItems(ctx, op, []resolver.Item{cmd.Item})
	if err != nil {
		return nil, err
	}
	id := itemIdentity(cmd.Item)
	sudtType := cmd.Asset.SUDTType
	itemBuckets := e.classify(op, itemCells, id, &sudtType, tip.Epoch)

	var currentACPs []wire.Cell
	for _, c := range itemBuckets.acp {
		currentACPs = append(currentACPs, c)
	}
	orderedACPs := orderByIndexerPosition(currentACPs)

	accountNumber := 1
	if cmd.AccountNumber != nil {
		accountNumber = *cmd.AccountNumber
	}
	extraCKB := e.Params.ByteShannons
	if cmd.ExtraCKB != nil {
		extraCKB = *cmd.ExtraCKB
	}

	if accountNumber == len(orderedACPs) {
		return &BuildAdjustAccountResult{}, nil
	}

	fromItems := cmd.From
	if len(fromItems) == 0 {
		fromItems = []resolver.Item{cmd.Item}
	}
	fromCells, err := e.gatherItems(ctx, op, fromItems)
	if err != nil {
		return nil, err
	}
	fromBuckets := e.classify(op, fromCells, itemIdentity(fromItems[0]), nil, tip.Epoch)

	changeLock, err := e.defaultChangeLock(op, cmd.Item)
	if err != nil {
		return nil, err
	}

	if accountNumber > len(orderedACPs) {
		step := func(fee uint64) (*planner.Components, []wire.Cell, wire.Script, *balancer.FoldTarget, error) {
			comp, ok, err := planner.AdjustAccount(op, e.Registry, e.Params, id, sudtType, orderedACPs, accountNumber, extraCKB, fromBuckets.capacity, fee)
			if err != nil {
				return nil, nil, wire.Script{}, nil, err
			}
			if !ok {
				return nil, nil, wire.Script{}, nil, cellerrors.New(op, cellerrors.Internal, "", "account count changed between probe and build")
			}
			remaining := remainingCandidates(fromBuckets.capacity, comp.InputCells)
			return comp, remaining, changeLock, nil, nil
		}
		tx, groups, err := e.runFeeLoop(op, e.resolveFeeRate(cmd.FeeRate), step)
		if err != nil {
			return nil, err
		}
		return &BuildAdjustAccountResult{Tx: tx, ScriptGroups: groups}, nil
	}

	step := func(fee uint64) (*planner.Components, error) {
		comp, ok, err := planner.AdjustAccount(op, e.Registry, e.Params, id, sudtType, orderedACPs, accountNumber, extraCKB, nil, fee)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, cellerrors.New(op, cellerrors.Internal, "", "account count changed between probe and build")
		}
		return comp, nil
	}
	tx, groups, err := e.runFeeLoopNoBalance(op, e.resolveFeeRate(cmd.FeeRate), step)
	if err != nil {
		return nil, err
	}
	return &BuildAdjustAccountResult{Tx: tx, ScriptGroups: groups}, nil
}

// orderByIndexerPosition sorts cells by (block_number, tx_index,
// output_index) ascending, the indexer's natural order (spec §4.4): a
// collect's "first one" (AdjustAccount's currentACPs[:toCollect]) is only
// well-defined relative to this order.
func orderByIndexerPosition(cells []wire.Cell) []wire.Cell {
	out := make([]wire.Cell, len(cells))
	copy(out, cells)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if a.BlockNumber < b.BlockNumber ||
				(a.BlockNumber == b.BlockNumber && a.TxIndex < b.TxIndex) ||
				(a.BlockNumber == b.BlockNumber && a.TxIndex == b.TxIndex && a.OutPoint.Index <= b.OutPoint.Index) {
				break
			}
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
