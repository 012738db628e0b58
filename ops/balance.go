// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ops

import (
	"context"
	"math/big"

	"github.com/toole-brendan/shell-mercury/address"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/classifier"
	"github.com/toole-brendan/shell-mercury/resolver"
	"github.com/toole-brendan/shell-mercury/sudt"
	"github.com/toole-brendan/shell-mercury/wire"
)

// balanceBucket accumulates the four wallet-balance categories of spec §3:
// free (spendable now), occupied (capacity committed to a cell's own
// structural minimum, inapplicable to UDT amounts), frozen (locked by an
// unmet since-constraint), claimable (held by a cheque this identity could
// claim or reclaim right now, a distinct action from an ordinary spend).
type balanceBucket struct {
	free, occupied, frozen, claimable big.Int
}

func (b *balanceBucket) addFree(n uint64)      { b.free.Add(&b.free, new(big.Int).SetUint64(n)) }
func (b *balanceBucket) addOccupied(n uint64)  { b.occupied.Add(&b.occupied, new(big.Int).SetUint64(n)) }
func (b *balanceBucket) addFrozen(n uint64)    { b.frozen.Add(&b.frozen, new(big.Int).SetUint64(n)) }
func (b *balanceBucket) addClaimable(n uint64) { b.claimable.Add(&b.claimable, new(big.Int).SetUint64(n)) }

// GetBalance implements get_balance (spec §4.9 / §3's Balance shape): one
// row per requested Asset, each split into free/occupied/frozen/claimable.
func (e *Engine) GetBalance(ctx context.Context, cmd GetBalanceCmd) (*GetBalanceResult, error) {
	const op = "get_balance"

	tip, err := e.Chain.GetTipHeader(ctx)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}
	tipBlock := tip.Number
	if cmd.TipBlock != nil {
		tipBlock = *cmd.TipBlock
	}

	id := itemIdentity(cmd.Item)

	filter, err := e.Resolver.Resolve(cmd.Item)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.InputValidation, "", err)
	}
	candidates, err := e.gatherCandidates(ctx, op, filter, &tipBlock)
	if err != nil {
		return nil, err
	}

	balances := make([]Balance, len(cmd.AssetInfos))
	for i, asset := range cmd.AssetInfos {
		bucket := balanceBucket{}
		for _, c := range candidates {
			cls, clsErr := e.Classifier.Classify(op, c, id, tip.Epoch)
			if clsErr != nil {
				continue
			}

			if asset.Native {
				if c.Output.Type != nil {
					// Capacity held inside a typed cell is committed to
					// that cell's own asset, not spendable as plain CKB.
					if cls.SpendableByIdentity {
						bucket.addOccupied(c.Output.Capacity)
					}
					continue
				}
				e.accumulateCapacity(&bucket, cls, c.Output, len(c.Data))
				continue
			}

			if c.Output.Type == nil || !c.Output.Type.Equal(asset.SUDTType) {
				continue
			}
			amount := sudt.Decode(c.Data)
			if !amount.IsUint64() {
				continue
			}
			accumulateUDT(&bucket, cls, amount.Uint64())
		}

		balances[i] = Balance{
			Asset:     asset,
			Free:      bucket.free.String(),
			Occupied:  bucket.occupied.String(),
			Frozen:    bucket.frozen.String(),
			Claimable: bucket.claimable.String(),
		}
	}

	return &GetBalanceResult{Balances: balances, BlockNumber: tipBlock}, nil
}

// accumulateCapacity splits a bare capacity cell's own native balance
// between free (spendable surplus over its structural floor) and occupied
// (the floor itself), or frozen/claimable when a since-constraint or
// cheque-escrow applies.
func (e *Engine) accumulateCapacity(b *balanceBucket, cls classifier.Classification, output wire.CellOutput, dataLen int) {
	capacity := output.Capacity
	if cls.LockFamily == classifier.FamilyCheque {
		if cls.SpendableByIdentity {
			b.addClaimable(capacity)
		} else {
			b.addFrozen(capacity)
		}
		return
	}
	if !cls.SpendableByIdentity || !cls.SinceSatisfied {
		b.addFrozen(capacity)
		return
	}
	occupied := e.Params.Occupied(output, dataLen)
	if occupied > capacity {
		occupied = capacity
	}
	b.addOccupied(occupied)
	b.addFree(capacity - occupied)
}

// accumulateUDT places a UDT-typed cell's balance into free/frozen/
// claimable. A DAO cell never carries a UDT type script, so HoldsDAOState
// is checked defensively rather than assumed unreachable.
func accumulateUDT(b *balanceBucket, cls classifier.Classification, amount uint64) {
	if cls.HoldsDAOState {
		return
	}
	if cls.LockFamily == classifier.FamilyCheque {
		if cls.SpendableByIdentity {
			b.addClaimable(amount)
		} else {
			b.addFrozen(amount)
		}
		return
	}
	if !cls.SpendableByIdentity || !cls.SinceSatisfied {
		b.addFrozen(amount)
		return
	}
	b.addFree(amount)
}

// GetAccountInfo implements get_account_info (spec §4.9): reports how many
// ACP "account" cells an identity currently holds for asset, and the
// address form of its first one (if any).
func (e *Engine) GetAccountInfo(ctx context.Context, cmd GetAccountInfoCmd) (*GetAccountInfoResult, error) {
	const op = "get_account_info"

	tip, err := e.Chain.GetTipHeader(ctx)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}

	cells, err := e.gatherItems(ctx, op, []resolver.Item{cmd.Item})
	if err != nil {
		return nil, err
	}
	id := itemIdentity(cmd.Item)
	sudtType := cmd.AssetInfo.SUDTType
	b := e.classify(op, cells, id, &sudtType, tip.Epoch)

	result := &GetAccountInfoResult{AccountNumber: len(b.acp), AccountType: "acp"}
	if len(b.acp) > 0 {
		ordered := orderByIndexerPosition(b.acp)
		addr, encErr := address.Encode(e.Resolver.Network(), ordered[0].Output.Lock)
		if encErr != nil {
			return nil, cellerrors.Wrap(op, cellerrors.Internal, "", encErr)
		}
		result.AccountAddress = addr
	}
	return result, nil
}
