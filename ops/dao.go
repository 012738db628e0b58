// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ops

import (
	"context"

	"github.com/toole-brendan/shell-mercury/balancer"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/daoengine"
	"github.com/toole-brendan/shell-mercury/planner"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/resolver"
	"github.com/toole-brendan/shell-mercury/wire"
)

// daoType returns the registered DAO type script template with no args.
func (e *Engine) daoType(op string) (wire.Script, error) {
	entry, ok := e.Registry.Lookup(registry.NameDAO)
	if !ok {
		return wire.Script{}, cellerrors.New(op, cellerrors.Internal, "", "registry has no dao entry")
	}
	return wire.Script{CodeHash: entry.CodeHash, HashType: entry.HashType}, nil
}

// findDAOCells partitions an identity's live DAO-typed cells into deposit
// (all-zero data) and withdrawing (data = withdraw block number) form, per
// daoengine's data-field convention.
func (e *Engine) findDAOCells(ctx context.Context, op string, item resolver.Item, tip uint64) (deposits, withdrawing []wire.Cell, err error) {
	cells, err := e.gatherItems(ctx, op, []resolver.Item{item})
	if err != nil {
		return nil, nil, err
	}
	id := itemIdentity(item)
	daoT, err := e.daoType(op)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range cells {
		if c.Output.Type == nil || !c.Output.Type.Equal(daoT) {
			continue
		}
		cls, clsErr := e.Classifier.Classify(op, c, id, tip)
		if clsErr != nil || !cls.SpendableByIdentity {
			continue
		}
		bn, readErr := daoengine.ReadBlockNumber(c.Data)
		if readErr != nil {
			continue
		}
		if bn == 0 {
			deposits = append(deposits, c)
		} else {
			withdrawing = append(withdrawing, c)
		}
	}
	return deposits, withdrawing, nil
}

// BuildDAODeposit implements build_dao_deposit (spec §4.9 / §4.5.7).
func (e *Engine) BuildDAODeposit(ctx context.Context, cmd BuildDAODepositCmd) (*BuildResult, error) {
	const op = "build_dao_deposit"

	daoT, err := e.daoType(op)
	if err != nil {
		return nil, err
	}
	changeLock, err := e.defaultChangeLock(op, cmd.From)
	if err != nil {
		return nil, err
	}
	to := changeLock
	if cmd.To != nil {
		to = *cmd.To
	}

	cells, err := e.gatherItems(ctx, op, []resolver.Item{cmd.From})
	if err != nil {
		return nil, err
	}
	tip, err := e.Chain.GetTipHeader(ctx)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}
	fromBuckets := e.classify(op, cells, itemIdentity(cmd.From), nil, tip.Epoch)

	step := func(fee uint64) (*planner.Components, []wire.Cell, wire.Script, *balancer.FoldTarget, error) {
		comp := planner.DAODeposit(daoT, to, cmd.Amount)
		return comp, fromBuckets.capacity, changeLock, nil, nil
	}
	tx, groups, err := e.runFeeLoop(op, e.resolveFeeRate(cmd.FeeRate), step)
	if err != nil {
		return nil, err
	}
	return &BuildResult{Tx: tx, ScriptGroups: groups}, nil
}

// BuildDAOWithdraw implements build_dao_withdraw (spec §4.9 / §4.5.8): moves
// one deposit cell into its phase-1 withdrawing form.
func (e *Engine) BuildDAOWithdraw(ctx context.Context, cmd BuildDAOWithdrawCmd) (*BuildResult, error) {
	const op = "build_dao_withdraw"

	tip, err := e.Chain.GetTipHeader(ctx)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}

	deposits, _, err := e.findDAOCells(ctx, op, cmd.From, tip.Epoch)
	if err != nil {
		return nil, err
	}
	if len(deposits) == 0 {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonNoDepositCell,
			"identity has no DAO deposit cell")
	}
	deposit := orderByIndexerPosition(deposits)[0]

	depositHeader, err := e.Chain.GetHeaderByNumber(ctx, deposit.BlockNumber)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}

	payFeeItem := cmd.From
	if cmd.PayFee != nil {
		payFeeItem = *cmd.PayFee
	}
	payFeeCells, err := e.gatherItems(ctx, op, []resolver.Item{payFeeItem})
	if err != nil {
		return nil, err
	}
	payFeeBuckets := e.classify(op, payFeeCells, itemIdentity(payFeeItem), nil, tip.Epoch)
	changeLock, err := e.defaultChangeLock(op, payFeeItem)
	if err != nil {
		return nil, err
	}

	step := func(fee uint64) (*planner.Components, []wire.Cell, wire.Script, *balancer.FoldTarget, error) {
		comp, err := planner.DAOWithdraw(op, &deposit, depositHeader.Hash, tip.Number)
		if err != nil {
			return nil, nil, wire.Script{}, nil, err
		}
		remaining := remainingCandidates(payFeeBuckets.capacity, comp.InputCells)
		return comp, remaining, changeLock, findFoldTarget(comp, changeLock), nil
	}
	tx, groups, err := e.runFeeLoop(op, e.resolveFeeRate(cmd.FeeRate), step)
	if err != nil {
		return nil, err
	}
	return &BuildResult{Tx: tx, ScriptGroups: groups}, nil
}

// BuildDAOClaim implements build_dao_claim (spec §4.9 / §4.5.9): consumes
// every matured withdrawing cell and emits one output carrying the summed
// matured capacity minus fee, deducted directly (no balancer pass, since
// there is only ever this one output to adjust).
func (e *Engine) BuildDAOClaim(ctx context.Context, cmd BuildDAOClaimCmd) (*BuildResult, error) {
	const op = "build_dao_claim"

	tip, err := e.Chain.GetTipHeader(ctx)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}

	_, withdrawing, err := e.findDAOCells(ctx, op, cmd.From, tip.Epoch)
	if err != nil {
		return nil, err
	}
	if len(withdrawing) == 0 {
		return nil, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonNoMatureWithdrawing,
			"identity has no DAO withdrawing cell")
	}

	to, err := e.defaultChangeLock(op, cmd.From)
	if err != nil {
		return nil, err
	}
	if cmd.To != nil {
		to = *cmd.To
	}

	var matured []planner.WithdrawingCell
	for _, c := range withdrawing {
		// The withdrawing cell's data holds the withdraw transaction's own
		// commit block number (daoengine.WithdrawingData); the deposit
		// block that transaction header-depped on is only recoverable from
		// the transaction itself, since the rewrite discards it from data.
		withdrawTx, withdrawHeader, txErr := e.Chain.GetTransaction(ctx, c.OutPoint.TxHash)
		if txErr != nil {
			return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, txErr)
		}
		if len(withdrawTx.HeaderDeps) == 0 {
			return nil, cellerrors.New(op, cellerrors.Internal, "", "withdrawing transaction carries no deposit header dep")
		}
		depositHeader, hdrErr := e.Chain.GetHeaderByHash(ctx, withdrawTx.HeaderDeps[0])
		if hdrErr != nil {
			return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, hdrErr)
		}
		matured = append(matured, planner.WithdrawingCell{
			Cell:              c,
			DepositEpoch:      depositHeader.Epoch,
			WithdrawEpoch:     withdrawHeader.Epoch,
			DepositBlockHash:  depositHeader.Hash,
			WithdrawBlockHash: withdrawHeader.Hash,
			ARDeposit:         depositHeader.DaoARField,
			ARWithdraw:        withdrawHeader.DaoARField,
		})
	}

	step := func(fee uint64) (*planner.Components, error) {
		return planner.DAOClaim(op, e.Params.DaoLockupEpochs, matured, to, tip.Epoch, fee)
	}
	tx, groups, err := e.runFeeLoopNoBalance(op, e.resolveFeeRate(cmd.FeeRate), step)
	if err != nil {
		return nil, err
	}
	return &BuildResult{Tx: tx, ScriptGroups: groups}, nil
}
