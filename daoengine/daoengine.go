// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package daoengine builds the three DAO lifecycle transactions (spec
// §4.5.7-9): deposit, phase-1 withdraw, phase-2 claim. Grounded in the
// teacher's covenants/vault time-delayed covenant spending (the closest
// analogue to a deposit/maturity/claim lifecycle) and liquidity/reward.go's
// integer fixed-point weight arithmetic, adapted from that package's
// basis-point volume*uptime*spread formula to the DAO's two-accumulated-
// rate capacity formula. The vault's hot/cold multisig threshold machinery
// has no DAO counterpart (DAO phases are single-lock and time-gated, never
// threshold-sig-gated) and is not carried here.
package daoengine

import (
	"encoding/binary"
	"math/big"

	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/wire"
)

// DataSize is the fixed width of a DAO cell's data field.
const DataSize = 8

// DepositData returns the zero-filled data of a fresh DAO deposit cell
// (spec §4.5.7).
func DepositData() []byte {
	return make([]byte, DataSize)
}

// WithdrawingData returns the data of a phase-1 withdrawing cell: the block
// number the withdrawing transaction was committed in, little-endian (spec
// §4.5.8).
func WithdrawingData(withdrawBlockNumber uint64) []byte {
	data := make([]byte, DataSize)
	binary.LittleEndian.PutUint64(data, withdrawBlockNumber)
	return data
}

// ReadBlockNumber decodes the 8-byte little-endian block number held in a
// DAO cell's data: zero for a deposit (DepositData), or the withdraw block
// number written by WithdrawingData for a withdrawing cell.
func ReadBlockNumber(data []byte) (uint64, error) {
	if len(data) != DataSize {
		return 0, cellerrors.New("dao_read_data", cellerrors.InputValidation, "", "DAO cell data must be exactly 8 bytes")
	}
	return binary.LittleEndian.Uint64(data), nil
}

// IsMature reports whether a withdrawing cell deposited at depositEpoch and
// declared withdrawing at withdrawEpoch has aged past the lock-up period as
// of tipEpoch (spec §4.5.9: "maturity (4 epochs since deposit)").
func IsMature(lockupEpochs, depositEpoch, withdrawEpoch, tipEpoch uint64) bool {
	maturityEpoch := withdrawEpoch
	if depositEpoch+lockupEpochs > maturityEpoch {
		maturityEpoch = depositEpoch + lockupEpochs
	}
	return tipEpoch >= maturityEpoch
}

// arPrecision is the fixed-point scale AR (accumulated rate) values are
// carried at on-chain; dividing by it converts a raw AR ratio back to a
// plain multiplier. Matches the canonical Nervos DAO convention of a
// 1e16-scaled accumulated rate.
const arPrecision = uint64(1_0000_0000_0000_0000)

// Reward computes the matured capacity released by a DAO claim (spec
// §4.5.9, §9's flagged Open Question): the canonical Nervos DAO formula
//
//	reward = capacity * (AR_withdraw - AR_deposit) / AR_deposit
//
// using the two accumulated-rate values read from the header deps added at
// withdraw phase 1 (AR_deposit, the deposit block's rate) and present at
// claim time (AR_withdraw, the withdrawing block's rate). Returned value is
// the *additional* interest; the claim output's total capacity is
// capacity + Reward(...). Integer division matches the teacher's
// basis-point fixed-point style (liquidity/reward.go) rather than floats.
func Reward(capacity, arDeposit, arWithdraw uint64) (uint64, error) {
	if arDeposit == 0 {
		return 0, cellerrors.New("dao_claim", cellerrors.Internal, "", "AR_deposit must not be zero")
	}
	if arWithdraw < arDeposit {
		return 0, cellerrors.New("dao_claim", cellerrors.Internal, "", "AR_withdraw must not be less than AR_deposit")
	}

	cap := new(big.Int).SetUint64(capacity)
	delta := new(big.Int).SetUint64(arWithdraw - arDeposit)
	denom := new(big.Int).SetUint64(arDeposit)

	reward := new(big.Int).Mul(cap, delta)
	reward.Div(reward, denom)

	if !reward.IsUint64() {
		return 0, cellerrors.New("dao_claim", cellerrors.Internal, "", "reward overflowed uint64")
	}
	return reward.Uint64(), nil
}

// MaturedCapacity is Reward plus the original deposit capacity: the total
// capacity of the claim output before fee deduction.
func MaturedCapacity(capacity, arDeposit, arWithdraw uint64) (uint64, error) {
	reward, err := Reward(capacity, arDeposit, arWithdraw)
	if err != nil {
		return 0, err
	}
	return capacity + reward, nil
}

// WithdrawingOutput rewrites a deposit cell's output into its phase-1
// withdrawing form: same lock, same capacity, data replaced (spec §4.5.8).
func WithdrawingOutput(deposit wire.CellOutput, withdrawBlockNumber uint64) (wire.CellOutput, []byte) {
	return deposit, WithdrawingData(withdrawBlockNumber)
}
