// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cellcfg carries the engine's network parameters as an explicit,
// immutable value built once at construction, generalizing chaincfg.Params'
// per-network struct away from this repo's proof-of-work/consensus concerns
// and toward the cell-model constants the transaction-construction engine
// needs (script registry seeds, capacity floors, fee defaults, lock-up
// periods). There is deliberately no package-level global Params var: every
// engine package takes a Params value (or the Registry built from it)
// through its constructor, per the explicit-injection redesign.
package cellcfg

import "github.com/toole-brendan/shell-mercury/wire"

// ScriptSeed is one entry of the Script Registry's startup seed table: the
// symbolic name, on-chain code hash/hash-type, and the dep group used to
// bring the script's code into a transaction's cell-deps.
type ScriptSeed struct {
	Name         string
	CodeHash     [32]byte
	HashType     uint8
	DepGroupHash [32]byte
	DepGroupIdx  uint32
}

// Params is the immutable set of network parameters the engine is
// constructed with.
type Params struct {
	Name    string
	Network wire.Network

	// ScriptSeeds populates the Script Registry at construction. One
	// entry per well-known script family (secp256k1, acp, pw-lock,
	// cheque, sudt, dao); additional families arrive only via the
	// registry's plug-in interface, never by adding entries here.
	ScriptSeeds []ScriptSeed

	// ByteShannons is the number of shannons (the chain's smallest
	// capacity unit) per native token.
	ByteShannons uint64

	// StandardSudtCapacity is the capacity a freshly created ACP cell
	// carrying a SUDT type script must reserve.
	StandardSudtCapacity uint64

	// ChequeCellCapacity is the fixed capacity every cheque output must
	// carry, regardless of the UDT amount it conveys.
	ChequeCellCapacity uint64

	// MinCellCapacity is the floor below which no bare-capacity output
	// (a transfer output or a change cell) may be created.
	MinCellCapacity uint64

	// DefaultFeeRate is the fee rate, in shannons per kilobyte of
	// serialized transaction size, used when a build payload does not
	// specify one.
	DefaultFeeRate uint64

	// InitEstimateFee is the fee fixed-point's starting guess.
	InitEstimateFee uint64

	// ChequeSinceEpochs is the number of epochs after which a cheque's
	// receiver-claim window closes and its sender-reclaim window opens.
	ChequeSinceEpochs uint64

	// DaoLockupEpochs is the minimum number of epochs a DAO deposit must
	// age before its withdrawing cell may be claimed.
	DaoLockupEpochs uint64
}

// Default byte/shannon and cell-capacity constants, per spec §6.
const (
	byteShannons          = 100_000_000
	standardSudtCapacity  = 142 * byteShannons
	chequeCellCapacity    = 162 * byteShannons
	minCellCapacity       = 61 * byteShannons
	defaultFeeRate        = 1000
	initEstimateFee       = 100_000
	chequeSinceEpochs     = 6
	daoLockupEpochs       = 4
)

// MainNetParams are the production network parameters. ScriptSeeds is left
// for the embedding application to populate with the chain's live code
// hashes; the constants below do not vary by network.
var MainNetParams = Params{
	Name:                 "main",
	Network:              wire.NetworkMain,
	ByteShannons:         byteShannons,
	StandardSudtCapacity: standardSudtCapacity,
	ChequeCellCapacity:   chequeCellCapacity,
	MinCellCapacity:      minCellCapacity,
	DefaultFeeRate:       defaultFeeRate,
	InitEstimateFee:      initEstimateFee,
	ChequeSinceEpochs:    chequeSinceEpochs,
	DaoLockupEpochs:      daoLockupEpochs,
}

// TestNetParams are the public test network parameters.
var TestNetParams = Params{
	Name:                 "test",
	Network:              wire.NetworkTest,
	ByteShannons:         byteShannons,
	StandardSudtCapacity: standardSudtCapacity,
	ChequeCellCapacity:   chequeCellCapacity,
	MinCellCapacity:      minCellCapacity,
	DefaultFeeRate:       defaultFeeRate,
	InitEstimateFee:      initEstimateFee,
	ChequeSinceEpochs:    chequeSinceEpochs,
	DaoLockupEpochs:      daoLockupEpochs,
}
