// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry implements the Script Registry: a static, process-wide
// table of known script templates populated at construction from chain
// config, plus a plug-in mechanism for additional lock handlers. Unlike the
// teacher's package-level lazily-initialized code-hash vars, the Registry is
// an explicit value built once by registry.New and threaded through every
// call that needs it — no hidden globals (spec §9).
package registry

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/wire"
)

// Name identifies a well-known script family by its symbolic registry key.
type Name string

const (
	NameSecp256k1 Name = "secp256k1"
	NameACP       Name = "acp"
	NamePWLock    Name = "pw_lock"
	NameCheque    Name = "cheque"
	NameSUDT      Name = "sudt"
	NameDAO       Name = "dao"
)

// CapacityRule describes how a family's minimum capacity is computed beyond
// the generic occupied(cell) floor every cell must satisfy.
type CapacityRule uint8

const (
	// CapacityRuleOccupiedOnly applies no extra floor beyond occupied(cell).
	CapacityRuleOccupiedOnly CapacityRule = iota

	// CapacityRuleStandardSudt applies StandardSudtCapacity (spec §6).
	CapacityRuleStandardSudt

	// CapacityRuleChequeFixed applies the fixed ChequeCellCapacity
	// (spec §4.5.3) regardless of UDT amount.
	CapacityRuleChequeFixed

	// CapacityRuleACPMinDeposit applies the min-deposit encoded in the
	// ACP lock's own args (spec §3 invariant 6).
	CapacityRuleACPMinDeposit
)

// Entry is one row of the Script Registry: a script template's identity,
// the dep it requires, and the capacity rule governing cells locked or
// typed by it.
type Entry struct {
	Name         Name
	CodeHash     chainhash.Hash
	HashType     wire.HashType
	Dep          wire.CellDep
	CapacityRule CapacityRule
}

// LockHandler is the plug-in interface for additional lock script families
// beyond the six built-ins. Classify decides if a cell's lock matches this
// handler; NormalizeToSignable rewrites a collect-target lock into the form
// a plain signature can spend (the ACP→secp rewrite in adjust-account is
// the built-in instance of this, but any plug-in lock family that supports
// being "collected into" needs the same hook); RequiredDeps names the
// cell-deps this lock needs when used as an input or output.
type LockHandler interface {
	Name() Name
	Classify(lock wire.Script) bool
	NormalizeToSignable(lock wire.Script) (wire.Script, error)
	RequiredDeps(lock wire.Script) []Name
}

// Registry is the Script Registry: built once from cellcfg.Params, looked
// up by Name or by reverse code-hash, read-only after construction.
type Registry struct {
	byName     map[Name]Entry
	byCodeHash map[chainhash.Hash]Entry
	plugins    []LockHandler
}

// New builds a Registry from the seed table in params. Plug-in handlers are
// registered afterward via Register; New never populates plugins itself.
func New(params cellcfg.Params) *Registry {
	r := &Registry{
		byName:     make(map[Name]Entry, len(params.ScriptSeeds)),
		byCodeHash: make(map[chainhash.Hash]Entry, len(params.ScriptSeeds)),
	}
	for _, seed := range params.ScriptSeeds {
		entry := Entry{
			Name:     Name(seed.Name),
			CodeHash: chainhash.Hash(seed.CodeHash),
			HashType: wire.HashType(seed.HashType),
			Dep: wire.CellDep{
				OutPoint: wire.OutPoint{
					TxHash: chainhash.Hash(seed.DepGroupHash),
					Index:  seed.DepGroupIdx,
				},
				DepType: wire.DepTypeDepGroup,
			},
			CapacityRule: capacityRuleFor(Name(seed.Name)),
		}
		r.byName[entry.Name] = entry
		r.byCodeHash[entry.CodeHash] = entry
	}
	return r
}

func capacityRuleFor(name Name) CapacityRule {
	switch name {
	case NameSUDT, NameACP:
		return CapacityRuleStandardSudt
	case NameCheque:
		return CapacityRuleChequeFixed
	default:
		return CapacityRuleOccupiedOnly
	}
}

// Lookup returns the Entry registered under name.
func (r *Registry) Lookup(name Name) (Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// LookupByCodeHash returns the Entry whose CodeHash matches h. Only the
// static table is searched; plug-in handlers are found via PluginFor.
func (r *Registry) LookupByCodeHash(h chainhash.Hash) (Entry, bool) {
	e, ok := r.byCodeHash[h]
	return e, ok
}

// Register adds a plug-in LockHandler to the registry. Intended to be
// called during engine construction, before any classification or planning
// begins; Registry is otherwise treated as read-only.
func (r *Registry) Register(h LockHandler) {
	r.plugins = append(r.plugins, h)
}

// Plugins returns the registered plug-in handlers in registration order.
func (r *Registry) Plugins() []LockHandler {
	return r.plugins
}

// PluginFor returns the first registered plug-in whose Classify matches
// lock, if any.
func (r *Registry) PluginFor(lock wire.Script) (LockHandler, bool) {
	for _, p := range r.plugins {
		if p.Classify(lock) {
			return p, true
		}
	}
	return nil, false
}

// MustCodeHash decodes a hex-encoded 32-byte code hash, panicking on a
// malformed literal. Used only for registry seed construction in tests and
// application wiring, never on a value read from the chain.
func MustCodeHash(hex string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(hex)
	if err != nil {
		panic(err)
	}
	return *h
}
