// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resolver

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	addrpkg "github.com/toole-brendan/shell-mercury/address"
	"github.com/toole-brendan/shell-mercury/identity"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/wire"
)

// PartialArgQuery describes a get_scripts_by_partial_arg indexer call: find
// scripts of CodeHash/HashType whose Args byte slice contains Needle at
// [OffsetStart, OffsetEnd). Used exclusively for cheque lookups, since a
// cheque's lock script is unique per cheque (it embeds both parties'
// hashes) and so cannot be found by an exact lock-hash filter the way
// secp/acp/pw-lock locks can.
type PartialArgQuery struct {
	CodeHash    chainhash.Hash
	HashType    wire.HashType
	Needle      []byte
	OffsetStart int
	OffsetEnd   int
}

// Filter is the resolver's output: the set of exact lock-hash filters and
// partial-arg queries the Live-Cell Source should run to enumerate every
// cell an Item could plausibly spend, plus (for a Record item) the single
// OutPoint to fetch directly and the ownership tag to validate against it.
type Filter struct {
	LockHashes    []chainhash.Hash
	PartialArgs   []PartialArgQuery
	RecordOutPoint *wire.OutPoint
	RecordOwnership wire.Ownership
}

// Resolver expands Items into Filters against a Registry.
type Resolver struct {
	reg     *registry.Registry
	expand  func(identity.Identity) []wire.Script
	network wire.Network
}

// New returns a Resolver backed by reg, encoding/decoding addresses for
// network.
func New(reg *registry.Registry, network wire.Network) *Resolver {
	return &Resolver{reg: reg, expand: identity.Expand(reg), network: network}
}

// Network returns the network this Resolver encodes/decodes addresses for.
func (r *Resolver) Network() wire.Network {
	return r.network
}

// Resolve dispatches on item.Kind.
func (r *Resolver) Resolve(item Item) (Filter, error) {
	switch item.Kind {
	case ItemKindIdentity:
		return r.resolveIdentity(item.Identity), nil
	case ItemKindAddress:
		return r.resolveAddress(item.Address)
	case ItemKindRecord:
		return Filter{RecordOutPoint: &item.RecordOutPoint, RecordOwnership: item.RecordOwnership}, nil
	default:
		return Filter{}, fmt.Errorf("resolver: unknown item kind %d", item.Kind)
	}
}

func (r *Resolver) resolveIdentity(id identity.Identity) Filter {
	var f Filter
	for _, script := range r.expand(id) {
		h := script.Hash()
		f.LockHashes = append(f.LockHashes, h)
	}
	f.PartialArgs = append(f.PartialArgs, r.chequeQueriesFor(id)...)
	return f
}

// chequeQueriesFor builds the two partial-arg queries that find every
// cheque cell where id is either the receiver or the sender, per spec
// §4.3: "cheque where receiver-hash20 or sender-hash20 equals a known
// lock-hash derived from this identity".
func (r *Resolver) chequeQueriesFor(id identity.Identity) []PartialArgQuery {
	entry, ok := r.reg.Lookup(registry.NameCheque)
	if !ok {
		return nil
	}
	lockHash, ok := identity.ChequeLockHash(r.reg, id)
	if !ok {
		return nil
	}
	return []PartialArgQuery{
		{CodeHash: entry.CodeHash, HashType: entry.HashType, Needle: lockHash[:], OffsetStart: 0, OffsetEnd: wire.Blake160Size},
		{CodeHash: entry.CodeHash, HashType: entry.HashType, Needle: lockHash[:], OffsetStart: wire.Blake160Size, OffsetEnd: 2 * wire.Blake160Size},
	}
}

func (r *Resolver) resolveAddress(addr string) (Filter, error) {
	_, script, err := addrpkg.Decode(addr)
	if err != nil {
		return Filter{}, err
	}

	f := Filter{LockHashes: []chainhash.Hash{script.Hash()}}

	// If the decoded script carries a blake160 (every built-in family
	// does), pull its ACP/cheque relatives in too, same as an Identity
	// resolution would.
	if id, ok := identity.FromLock(script); ok {
		rel := r.resolveIdentity(id)
		f.LockHashes = append(f.LockHashes, rel.LockHashes...)
		f.PartialArgs = append(f.PartialArgs, rel.PartialArgs...)
	}

	return dedupeFilter(f), nil
}

func dedupeFilter(f Filter) Filter {
	seen := make(map[chainhash.Hash]struct{}, len(f.LockHashes))
	out := f.LockHashes[:0]
	for _, h := range f.LockHashes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	f.LockHashes = out
	return f
}
