// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chequeengine builds and spends cheque cells: the time-locked
// claimable vouchers of spec §3/§4.5.3, grounded in the teacher's
// settlement/claimable/claimable.go time-predicated claimable balance (the
// closest 1:1 analogue). A cheque's predicate collapses the teacher's
// richer AND/OR/NOT composite predicate tree to the one shape spec.md
// needs: before deadline the receiver claims, at/after it only the sender
// reclaims. No composite predicates are needed because a cheque never
// combines more than this single time split.
package chequeengine

import (
	"math/big"

	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/sudt"
	"github.com/toole-brendan/shell-mercury/wire"
)

// Args builds a cheque lock's 40-byte args: receiver hash20 ‖ sender
// hash20 (spec §8 invariant 4).
func Args(receiverLockHash, senderLockHash [20]byte) []byte {
	args := make([]byte, 0, 40)
	args = append(args, receiverLockHash[:]...)
	args = append(args, senderLockHash[:]...)
	return args
}

// NewOutput builds the cheque output and its data for a UDT transfer
// HoldByFrom (spec §4.5.3): fixed ChequeCellCapacity regardless of amount,
// SUDT type script, amount in data.
func NewOutput(reg *registry.Registry, params cellcfg.Params, receiverLockHash, senderLockHash [20]byte, sudtType wire.Script, amount *big.Int) (wire.CellOutput, []byte, error) {
	entry, ok := reg.Lookup(registry.NameCheque)
	if !ok {
		return wire.CellOutput{}, nil, cellerrors.New("cheque_issue", cellerrors.Internal, "", "cheque script not registered")
	}
	lock := wire.Script{
		CodeHash: entry.CodeHash,
		HashType: entry.HashType,
		Args:     Args(receiverLockHash, senderLockHash),
	}
	data, err := sudt.Encode(amount, nil)
	if err != nil {
		return wire.CellOutput{}, nil, cellerrors.Wrap("cheque_issue", cellerrors.InputValidation, cellerrors.ReasonInsufficientUDT, err)
	}
	output := wire.CellOutput{
		Capacity: params.ChequeCellCapacity,
		Lock:     lock,
		Type:     &sudtType,
	}
	return output, data, nil
}

// DeadlineEpoch computes the epoch at and after which only the sender may
// reclaim a cheque created at createdEpoch (spec §4.5.3: "six epochs by
// default").
func DeadlineEpoch(params cellcfg.Params, createdEpoch uint64) uint64 {
	return createdEpoch + params.ChequeSinceEpochs
}

// ReclaimSince returns the CellInput.Since value the sender must set to
// reclaim a cheque whose deadline is deadlineEpoch: an absolute epoch-metric
// constraint, since the sender path is gated on chain-wide elapsed epochs,
// not on anything relative to the spent cell itself.
func ReclaimSince(deadlineEpoch uint64) uint64 {
	return wire.EncodeSince(wire.SinceAbsolute, wire.SinceMetricEpoch, deadlineEpoch)
}

// ReceiverCanClaim reports whether tipEpoch is still before the cheque's
// deadline, the window in which only the receiver may consume the cell.
func ReceiverCanClaim(params cellcfg.Params, createdEpoch, tipEpoch uint64) bool {
	return tipEpoch < DeadlineEpoch(params, createdEpoch)
}

// SenderCanReclaim reports whether tipEpoch has reached the cheque's
// deadline, the window in which only the sender may consume the cell.
func SenderCanReclaim(params cellcfg.Params, createdEpoch, tipEpoch uint64) bool {
	return !ReceiverCanClaim(params, createdEpoch, tipEpoch)
}
