// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package acpengine implements the ACP-consuming operations: adjust-account
// create/collect (spec §4.5.6) and the ACP top-up side of native/UDT
// transfer HoldByTo and PayWithAcp (spec §4.5.2, §4.5.4, §4.5.5). Lock
// normalization on collect (ACP→secp) is grounded in the registry's
// NormalizeToSignable plug-in hook (§5.1 of the expanded design).
package acpengine

import (
	"math/big"

	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/identity"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/sudt"
	"github.com/toole-brendan/shell-mercury/wire"
)

// acpArgsTailSize is the length of the anyone-can-pay min-deposit args tail
// appended after the owning identity's flag‖blake160 prefix.
const acpArgsTailSize = 2

// NewCell builds a fresh ACP cell for id holding sudtType at zero balance,
// with minDeposit encoded as its args tail (spec §3 invariant 6) and
// extraCapacity padding on top of StandardSudtCapacity.
func NewCell(reg *registry.Registry, params cellcfg.Params, id identity.Identity, sudtType wire.Script, minDeposit uint16, extraCapacity uint64) (wire.CellOutput, []byte, error) {
	entry, ok := reg.Lookup(registry.NameACP)
	if !ok {
		return wire.CellOutput{}, nil, cellerrors.New("adjust_account", cellerrors.Internal, "", "acp script not registered")
	}
	args := acpArgs(id, minDeposit)
	lock := wire.Script{CodeHash: entry.CodeHash, HashType: entry.HashType, Args: args}
	output := wire.CellOutput{
		Capacity: params.StandardSudtCapacity + extraCapacity,
		Lock:     lock,
		Type:     &sudtType,
	}
	return output, sudt.Zero(), nil
}

func acpArgs(id identity.Identity, minDeposit uint16) []byte {
	args := make([]byte, 0, 1+wire.Blake160Size+acpArgsTailSize)
	args = append(args, byte(id.Flag))
	args = append(args, id.Blake160[:]...)
	args = append(args, byte(minDeposit), byte(minDeposit>>8))
	return args
}

// TopUp increases an existing ACP cell's capacity (native transfer
// HoldByTo, spec §4.5.2) without touching its data, consistent with an ACP
// cell accepting inbound top-ups without the owner's signature.
func TopUp(cell wire.CellOutput, amount uint64) wire.CellOutput {
	cell.Capacity += amount
	return cell
}

// TopUpUDT increases an ACP cell's UDT balance (UDT transfer HoldByTo, spec
// §4.5.4), leaving capacity and lock untouched.
func TopUpUDT(data []byte, amount *big.Int) ([]byte, error) {
	current := sudt.Decode(data)
	total := new(big.Int).Add(current, amount)
	return sudt.Encode(total, data[sudt.AmountSize:])
}

// Normalize rewrites an ACP lock into its signable collect-target form: for
// the built-in ACP family this strips the min-deposit args tail, leaving
// the bare flag‖blake160 identity args a plain secp/pw-lock signature can
// spend (spec §4.5.6: "first one is rewritten to its normalized lock").
// Plug-in lock families use their own NormalizeToSignable instead.
func Normalize(lock wire.Script, reg *registry.Registry) (wire.Script, error) {
	if h, ok := reg.PluginFor(lock); ok {
		return h.NormalizeToSignable(lock)
	}
	entry, ok := reg.LookupByCodeHash(lock.CodeHash)
	if !ok || entry.Name != registry.NameACP {
		return lock, nil
	}
	if len(lock.Args) < 1+wire.Blake160Size {
		return wire.Script{}, cellerrors.New("adjust_account", cellerrors.InputValidation, "", "ACP lock args too short to normalize")
	}
	secpEntry, ok := reg.Lookup(registry.NameSecp256k1)
	if !ok {
		return wire.Script{}, cellerrors.New("adjust_account", cellerrors.Internal, "", "secp256k1 script not registered")
	}
	normalized := wire.Script{
		CodeHash: secpEntry.CodeHash,
		HashType: secpEntry.HashType,
		Args:     append([]byte(nil), lock.Args[:1+wire.Blake160Size]...),
	}
	return normalized, nil
}

// CollectResult is the merged output of an adjust-account collect (spec
// §4.5.6).
type CollectResult struct {
	Output wire.CellOutput
	Data   []byte
}

// Collect merges cells (each an ACP cell being collected, in insertion
// order) into one output at cells[0]'s normalized lock. When collectingAll
// is true (the requested account_number is zero: every ACP for this asset
// is being given up) the result carries no type script and totalUDT must be
// zero, else NotZeroInputUDTAmount; otherwise the result keeps sudtType and
// carries totalUDT, becoming a bare sudt-bearing cell at the normalized
// lock (spec §4.5.6).
func Collect(reg *registry.Registry, cells []wire.CellOutput, sudtType wire.Script, totalUDT *big.Int, collectingAll bool) (CollectResult, error) {
	if len(cells) == 0 {
		return CollectResult{}, cellerrors.New("adjust_account", cellerrors.Internal, "", "collect requires at least one cell")
	}
	if collectingAll && totalUDT.Sign() != 0 {
		return CollectResult{}, cellerrors.New("adjust_account", cellerrors.Resource,
			cellerrors.ReasonNotZeroInputUDTAmount, "cannot collect every ACP while UDT balance is non-zero")
	}

	normalizedLock, err := Normalize(cells[0].Lock, reg)
	if err != nil {
		return CollectResult{}, err
	}

	var totalCapacity uint64
	for _, c := range cells {
		totalCapacity += c.Capacity
	}

	if collectingAll {
		return CollectResult{Output: wire.CellOutput{Capacity: totalCapacity, Lock: normalizedLock}}, nil
	}

	data, encErr := sudt.Encode(totalUDT, nil)
	if encErr != nil {
		return CollectResult{}, cellerrors.Wrap("adjust_account", cellerrors.InputValidation, cellerrors.ReasonInsufficientUDT, encErr)
	}
	output := wire.CellOutput{Capacity: totalCapacity, Lock: normalizedLock, Type: &sudtType}
	return CollectResult{Output: output, Data: data}, nil
}
