// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity implements the Identity variant of spec §3's Item
// tagged union and its expansion into lock scripts (spec §4.3).
package identity

import (
	"bytes"

	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/wire"
)

// Flag selects which key-derivation scheme an Identity's Blake160 was
// derived under.
type Flag uint8

const (
	FlagCkb Flag = iota
	FlagEthereum
)

// Identity is a (flag, blake160) pair: the minimal handle this engine needs
// to derive every lock script a party can spend from.
type Identity struct {
	Flag      Flag
	Blake160  [wire.Blake160Size]byte
}

// New returns an Identity for the given flag and blake160 hash.
func New(flag Flag, blake160 [wire.Blake160Size]byte) Identity {
	return Identity{Flag: flag, Blake160: blake160}
}

// Equal reports whether two identities are the same (flag, blake160) pair.
func (id Identity) Equal(other Identity) bool {
	return id.Flag == other.Flag && id.Blake160 == other.Blake160
}

// secpArgs builds the args layout for a secp256k1/acp lock:
// flag-prefixed 20-byte blake160.
func secpArgs(id Identity) []byte {
	args := make([]byte, 1+wire.Blake160Size)
	args[0] = byte(id.Flag)
	copy(args[1:], id.Blake160[:])
	return args
}

// Expand produces the set of lock scripts spec §4.3 says an Identity may
// own: secp (args=flag‖id20), acp (same args prefix, anyone-can-pay
// semantics layered on top by the registry entry, not by a different args
// layout), and pw-lock when flag is Ethereum. No separate dao script is
// produced: a DAO cell's lock is the plain secp lock already listed first,
// and DAO-ness lives in the cell's type script, not its lock.
func Expand(reg *registry.Registry) func(Identity) []wire.Script {
	return func(id Identity) []wire.Script {
		var scripts []wire.Script

		if entry, ok := reg.Lookup(registry.NameSecp256k1); ok {
			scripts = append(scripts, wire.Script{
				CodeHash: entry.CodeHash,
				HashType: entry.HashType,
				Args:     secpArgs(id),
			})
		}
		if entry, ok := reg.Lookup(registry.NameACP); ok {
			scripts = append(scripts, wire.Script{
				CodeHash: entry.CodeHash,
				HashType: entry.HashType,
				Args:     secpArgs(id),
			})
		}
		if id.Flag == FlagEthereum {
			if entry, ok := reg.Lookup(registry.NamePWLock); ok {
				var args [wire.Blake160Size]byte
				args = id.Blake160
				scripts = append(scripts, wire.Script{
					CodeHash: entry.CodeHash,
					HashType: entry.HashType,
					Args:     args[:],
				})
			}
		}

		return scripts
	}
}

// LockMatchesIdentity reports whether lock is a secp256k1/pw-lock/dao/acp
// style lock whose embedded blake160 equals id's. It accepts id.Blake160
// either right after a one-byte flag (the flag-prefixed secp/acp layout,
// including an ACP min-deposit tail) or as the trailing 20 bytes (the
// bare-20-byte pw-lock layout).
func LockMatchesIdentity(lock wire.Script, id Identity) bool {
	if len(lock.Args) < wire.Blake160Size {
		return false
	}
	if len(lock.Args) >= 1+wire.Blake160Size &&
		bytes.Equal(lock.Args[1:1+wire.Blake160Size], id.Blake160[:]) {
		return true
	}
	tail := lock.Args[len(lock.Args)-wire.Blake160Size:]
	for i, b := range id.Blake160 {
		if tail[i] != b {
			return false
		}
	}
	return true
}

// FromLock recovers the Identity embedded in a secp/acp/pw-lock style
// script: flag-prefixed for secp/acp, bare blake160 for pw-lock. Returns
// false for a script too short to carry one. Used to derive the owning
// identity from a decoded address script, where no separate Identity value
// is available.
func FromLock(lock wire.Script) (Identity, bool) {
	if len(lock.Args) < wire.Blake160Size {
		return Identity{}, false
	}
	var blake160 [wire.Blake160Size]byte
	flag := FlagCkb
	if len(lock.Args) >= 1+wire.Blake160Size {
		flag = Flag(lock.Args[0])
		copy(blake160[:], lock.Args[1:1+wire.Blake160Size])
	} else {
		copy(blake160[:], lock.Args)
	}
	return New(flag, blake160), true
}

// ChequeLockHash derives the 20-byte hash used to identify this identity
// within a cheque lock's receiver/sender halves: the blake160 of its
// canonical secp256k1 lock script (spec §4.3's "known lock-hash derived
// from this identity"). Since a cheque's args only ever store a
// blake160 of the counterparty's *lock*, not of their raw identity, the
// resolver must compute this via the registry to know what hash to look
// for, rather than comparing raw identity blake160s directly.
func ChequeLockHash(reg *registry.Registry, id Identity) ([wire.Blake160Size]byte, bool) {
	entry, ok := reg.Lookup(registry.NameSecp256k1)
	if !ok {
		return [wire.Blake160Size]byte{}, false
	}
	script := wire.Script{CodeHash: entry.CodeHash, HashType: entry.HashType, Args: secpArgs(id)}
	h := script.Hash()
	return wire.Blake160(h[:]), true
}
