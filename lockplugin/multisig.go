// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package lockplugin supplies additional registry.LockHandler implementations
// beyond the six built-in script families the registry seeds directly,
// demonstrating the plug-in path spec §4.1 describes. Multisig is grounded
// in the teacher's crypto/musig2 key-aggregation routine: an M-of-N
// multisig lock's args are the blake160 of the MuSig2-aggregated public
// key, so classification and normalization only ever need the aggregate,
// never the individual signer set or a live signing session.
package lockplugin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/wire"
)

// Multisig classifies and normalizes an M-of-N aggregated-key lock script.
// It does not perform any signing; building a witness for a multisig group
// is the signer's concern, out of this engine's scope.
type Multisig struct {
	codeHash chainhash.Hash
	dep      wire.CellDep
}

// NewMultisig returns a Multisig handler for the given on-chain code hash
// and cell-dep.
func NewMultisig(codeHash chainhash.Hash, dep wire.CellDep) *Multisig {
	return &Multisig{codeHash: codeHash, dep: dep}
}

func (m *Multisig) Name() registry.Name { return "multisig" }

// Classify matches by code hash only, exactly like the six built-in
// families; a multisig lock's args (the blake160 of its aggregate key)
// carry no further family-identifying information.
func (m *Multisig) Classify(lock wire.Script) bool {
	return lock.CodeHash == m.codeHash
}

// NormalizeToSignable is the identity transform: a multisig lock is already
// directly spendable by the aggregate key's signers, so collecting into it
// (the adjust-account collect path) never needs to rewrite its args, unlike
// ACP's args-tail strip.
func (m *Multisig) NormalizeToSignable(lock wire.Script) (wire.Script, error) {
	if !m.Classify(lock) {
		return wire.Script{}, fmt.Errorf("lockplugin: lock is not a multisig script")
	}
	return lock, nil
}

func (m *Multisig) RequiredDeps(lock wire.Script) []registry.Name {
	return []registry.Name{m.Name()}
}

// ArgsForKeys computes the lock args for an M-of-N multisig over pubKeys:
// the blake160 of the MuSig2-aggregated public key. No threshold is taken
// or encoded: the args carry only the aggregate key, so two different
// (M, N) committees that aggregate to the same key produce the same args.
func ArgsForKeys(pubKeys []*btcec.PublicKey) ([]byte, error) {
	if len(pubKeys) == 0 {
		return nil, fmt.Errorf("lockplugin: multisig requires at least one key")
	}
	keys := make([]btcec.PublicKey, len(pubKeys))
	for i, k := range pubKeys {
		if k == nil {
			return nil, fmt.Errorf("lockplugin: nil public key at index %d", i)
		}
		keys[i] = *k
	}
	agg, err := keyAgg(keys)
	if err != nil {
		return nil, fmt.Errorf("lockplugin: key aggregation failed: %w", err)
	}
	hash := wire.Blake160(agg.SerializeCompressed())
	return hash[:], nil
}
