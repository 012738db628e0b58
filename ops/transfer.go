// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ops

import (
	"context"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/balancer"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/identity"
	"github.com/toole-brendan/shell-mercury/indexerclient"
	"github.com/toole-brendan/shell-mercury/planner"
	"github.com/toole-brendan/shell-mercury/resolver"
	"github.com/toole-brendan/shell-mercury/wire"
)

// findCellByLock looks up the single live cell at lock's hash carrying
// sudtType (nil meaning "no type script"), the shape an explicit recipient
// lock's ACP cell is found by in HoldByTo — the recipient is fully known,
// so there is no need to route through the resolver's Item expansion.
func (e *Engine) findCellByLock(ctx context.Context, op string, lock wire.Script, sudtType *wire.Script) (*wire.Cell, error) {
	page, err := e.Indexer.GetLiveCells(ctx, indexerclient.LiveCellQuery{
		LockHashes: []chainhash.Hash{lock.Hash()},
		Pagination: indexerclient.Pagination{Limit: 100},
	})
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure, err)
	}
	for i := range page.Items {
		c := page.Items[i]
		if sudtType == nil {
			if c.Output.Type == nil {
				return &c, nil
			}
			continue
		}
		if c.Output.Type != nil && c.Output.Type.Equal(*sudtType) {
			return &c, nil
		}
	}
	return nil, nil
}

// transferContext bundles the candidates and configuration every build_transfer
// mode branch needs, assembled once per call.
type transferContext struct {
	changeLock    wire.Script
	fromID        identity.Identity
	fromBuckets   buckets
	payFeeBuckets buckets
	sudtType      *wire.Script
	tipEpoch      uint64
}

func (e *Engine) prepareTransfer(ctx context.Context, op string, asset Asset, from []resolver.Item, payFee *resolver.Item, change *wire.Script) (*transferContext, error) {
	if len(from) == 0 {
		return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode, "from must not be empty")
	}

	tip, err := e.Chain.GetTipHeader(ctx)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}

	payFeeItem := from[0]
	if payFee != nil {
		payFeeItem = *payFee
	}
	changeLock := wire.Script{}
	if change != nil {
		changeLock = *change
	} else if changeLock, err = e.defaultChangeLock(op, payFeeItem); err != nil {
		return nil, err
	}

	var sudtType *wire.Script
	if !asset.Native {
		s := asset.SUDTType
		sudtType = &s
	}

	fromCells, err := e.gatherItems(ctx, op, from)
	if err != nil {
		return nil, err
	}
	fromID := itemIdentity(from[0])
	fromBuckets := e.classify(op, fromCells, fromID, sudtType, tip.Epoch)

	payFeeBuckets := fromBuckets
	if payFee != nil {
		payFeeCells, err := e.gatherItems(ctx, op, []resolver.Item{*payFee})
		if err != nil {
			return nil, err
		}
		payFeeBuckets = e.classify(op, payFeeCells, itemIdentity(*payFee), sudtType, tip.Epoch)
	}

	return &transferContext{
		changeLock:    changeLock,
		fromID:        fromID,
		fromBuckets:   fromBuckets,
		payFeeBuckets: payFeeBuckets,
		sudtType:      sudtType,
		tipEpoch:      tip.Epoch,
	}, nil
}

// BuildTransfer implements build_transfer (spec §4.9).
func (e *Engine) BuildTransfer(ctx context.Context, cmd BuildTransferCmd) (*BuildTransferResult, error) {
	const op = "build_transfer"
	if len(cmd.To) == 0 {
		return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode, "to must not be empty")
	}

	tc, err := e.prepareTransfer(ctx, op, cmd.Asset, cmd.From, cmd.PayFee, cmd.Change)
	if err != nil {
		return nil, err
	}

	step, err := e.transferStep(ctx, op, cmd.Asset, cmd.To, cmd.Mode, cmd.Since, tc)
	if err != nil {
		return nil, err
	}

	tx, groups, err := e.runFeeLoop(op, e.resolveFeeRate(cmd.FeeRate), step)
	if err != nil {
		return nil, err
	}
	return &BuildTransferResult{Tx: tx, ScriptGroups: groups}, nil
}

// BuildSimpleTransfer implements build_simple_transfer (spec §4.9): from is
// plain addresses, and mode is chosen automatically — HoldByTo when the
// single recipient already owns a suitable ACP cell for asset, else
// HoldByFrom (native transfer, or cheque issue for a UDT asset).
func (e *Engine) BuildSimpleTransfer(ctx context.Context, cmd BuildSimpleTransferCmd) (*BuildTransferResult, error) {
	const op = "build_simple_transfer"
	if len(cmd.To) == 0 {
		return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode, "to must not be empty")
	}

	from := make([]resolver.Item, len(cmd.From))
	for i, addr := range cmd.From {
		from[i] = resolver.FromAddress(addr)
	}

	tc, err := e.prepareTransfer(ctx, op, cmd.Asset, from, nil, cmd.Change)
	if err != nil {
		return nil, err
	}

	mode := ModeHoldByFrom
	if len(cmd.To) == 1 {
		existing, err := e.findCellByLock(ctx, op, cmd.To[0].Lock, tc.sudtType)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			mode = ModeHoldByTo
		}
	}

	step, err := e.transferStep(ctx, op, cmd.Asset, cmd.To, mode, cmd.Since, tc)
	if err != nil {
		return nil, err
	}

	tx, groups, err := e.runFeeLoop(op, e.resolveFeeRate(cmd.FeeRate), step)
	if err != nil {
		return nil, err
	}
	return &BuildTransferResult{Tx: tx, ScriptGroups: groups}, nil
}

// transferStep dispatches to the planner operation matching mode and asset,
// returning the buildStep runFeeLoop drives to convergence.
func (e *Engine) transferStep(ctx context.Context, op string, asset Asset, to []Receiver, mode Mode, since *SinceConfig, tc *transferContext) (buildStep, error) {
	sinceValue := uint64(0)
	if since != nil {
		sinceValue = since.Encode()
	}

	switch mode {
	case ModeHoldByFrom:
		if asset.Native {
			toInfo := make([]planner.ToInfo, len(to))
			for i, r := range to {
				toInfo[i] = planner.ToInfo{Lock: r.Lock, Amount: r.Amount}
			}
			return func(fee uint64) (*planner.Components, []wire.Cell, wire.Script, *balancer.FoldTarget, error) {
				comp, err := planner.NativeHoldByFrom(op, e.Params, tc.fromBuckets.capacity, toInfo, fee, sinceValue)
				if err != nil {
					return nil, nil, wire.Script{}, nil, err
				}
				remaining := remainingCandidates(tc.payFeeBuckets.capacity, comp.InputCells)
				return comp, remaining, tc.changeLock, nil, nil
			}, nil
		}

		if len(to) != 1 {
			return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode,
				"cheque issue accepts exactly one recipient")
		}
		receiverID, ok := identity.FromLock(to[0].Lock)
		if !ok {
			return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode,
				"cheque recipient lock carries no derivable identity")
		}
		receiverHash, ok := identity.ChequeLockHash(e.Registry, receiverID)
		if !ok {
			return nil, cellerrors.New(op, cellerrors.Internal, "", "registry has no secp256k1 entry")
		}
		senderHash, ok := identity.ChequeLockHash(e.Registry, tc.fromID)
		if !ok {
			return nil, cellerrors.New(op, cellerrors.Internal, "", "registry has no secp256k1 entry")
		}
		amount := new(big.Int).SetUint64(to[0].Amount)
		return func(fee uint64) (*planner.Components, []wire.Cell, wire.Script, *balancer.FoldTarget, error) {
			comp, err := planner.UDTHoldByFromCheque(op, e.Registry, e.Params, receiverHash, senderHash,
				tc.changeLock, asset.SUDTType, amount, tc.fromBuckets.udt, tc.fromBuckets.capacity, fee)
			if err != nil {
				return nil, nil, wire.Script{}, nil, err
			}
			remaining := remainingCandidates(tc.payFeeBuckets.capacity, comp.InputCells)
			return comp, remaining, tc.changeLock, findFoldTarget(comp, tc.changeLock), nil
		}, nil

	case ModeHoldByTo:
		if len(to) != 1 {
			return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode,
				"HoldByTo accepts exactly one recipient")
		}
		recipientLock := to[0].Lock
		recipientAmount := to[0].Amount

		if asset.Native {
			recipientACP, err := e.findCellByLock(ctx, op, recipientLock, nil)
			if err != nil {
				return nil, err
			}
			return func(fee uint64) (*planner.Components, []wire.Cell, wire.Script, *balancer.FoldTarget, error) {
				comp, err := planner.NativeHoldByTo(op, e.Params, recipientACP, tc.fromBuckets.capacity, recipientAmount, fee)
				if err != nil {
					return nil, nil, wire.Script{}, nil, err
				}
				remaining := remainingCandidates(tc.payFeeBuckets.capacity, comp.InputCells)
				return comp, remaining, tc.changeLock, nil, nil
			}, nil
		}

		recipientACP, err := e.findCellByLock(ctx, op, recipientLock, &asset.SUDTType)
		if err != nil {
			return nil, err
		}
		amount := new(big.Int).SetUint64(recipientAmount)
		return func(fee uint64) (*planner.Components, []wire.Cell, wire.Script, *balancer.FoldTarget, error) {
			comp, err := planner.UDTHoldByTo(op, e.Params, recipientACP, asset.SUDTType, amount,
				tc.fromBuckets.udt, tc.fromBuckets.capacity, tc.changeLock, fee)
			if err != nil {
				return nil, nil, wire.Script{}, nil, err
			}
			remaining := remainingCandidates(tc.payFeeBuckets.capacity, comp.InputCells)
			return comp, remaining, tc.changeLock, findFoldTarget(comp, tc.changeLock), nil
		}, nil

	case ModePayWithAcp:
		if asset.Native {
			return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode,
				"PayWithAcp applies only to UDT assets")
		}
		if len(to) != 1 {
			return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode,
				"PayWithAcp accepts exactly one recipient")
		}
		amount := new(big.Int).SetUint64(to[0].Amount)
		recipientLock := to[0].Lock
		return func(fee uint64) (*planner.Components, []wire.Cell, wire.Script, *balancer.FoldTarget, error) {
			comp, err := planner.UDTPayWithAcp(op, e.Registry, e.Params, tc.fromBuckets.acp, recipientLock, asset.SUDTType, amount, fee)
			if err != nil {
				return nil, nil, wire.Script{}, nil, err
			}
			remaining := remainingCandidates(tc.payFeeBuckets.acp, comp.InputCells)
			return comp, remaining, tc.changeLock, findFoldTarget(comp, tc.changeLock), nil
		}, nil

	default:
		return nil, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidMode, "unknown mode")
	}
}
