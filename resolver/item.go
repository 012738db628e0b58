// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package resolver implements the Asset Resolver (spec §4.3): given an
// Item, it produces the set of lock scripts to query the indexer for.
package resolver

import (
	"github.com/toole-brendan/shell-mercury/identity"
	"github.com/toole-brendan/shell-mercury/wire"
)

// ItemKind tags which variant of Item a value holds.
type ItemKind uint8

const (
	ItemKindIdentity ItemKind = iota
	ItemKindAddress
	ItemKindRecord
)

// Item is the tagged union of spec §3: an abstract input origin the
// resolver expands into lock-script filters.
type Item struct {
	Kind ItemKind

	Identity identity.Identity // valid when Kind == ItemKindIdentity
	Address  string            // valid when Kind == ItemKindAddress

	RecordOutPoint  wire.OutPoint     // valid when Kind == ItemKindRecord
	RecordOwnership wire.Ownership    // valid when Kind == ItemKindRecord
}

// FromIdentity wraps id as an Item.
func FromIdentity(id identity.Identity) Item {
	return Item{Kind: ItemKindIdentity, Identity: id}
}

// FromAddress wraps an address string as an Item.
func FromAddress(addr string) Item {
	return Item{Kind: ItemKindAddress, Address: addr}
}

// FromRecordID decodes a RecordID (spec §6 format) into a Record Item.
func FromRecordID(recordID []byte) (Item, error) {
	op, ownership, err := wire.DecodeRecordID(recordID)
	if err != nil {
		return Item{}, err
	}
	return Item{Kind: ItemKindRecord, RecordOutPoint: op, RecordOwnership: ownership}, nil
}
