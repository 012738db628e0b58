// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package indexerclient implements the Live-Cell Source (spec §4.4) and the
// Indexer external-interface contract (spec §6). Client is the interface
// the rest of the engine depends on; JSONRPCClient is the production
// implementation, grounded in the teacher's liquidity/attestor.go HTTP
// client idiom (timeout-bound http.Client, JSON request/response bodies).
package indexerclient

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/wire"
)

// SortOrder selects ascending or descending pagination order.
type SortOrder uint8

const (
	OrderAsc SortOrder = iota
	OrderDesc
)

// Pagination is the cursor-based paging contract of spec §4.4/§6: Cursor is
// an opaque integer row id, stable across requests; Limit bounds the page
// size; ReturnCount, when true, asks the indexer to also report the total
// matching row count.
type Pagination struct {
	Cursor      int64
	Order       SortOrder
	Limit       uint32
	ReturnCount bool
}

// Page is a single page of paginated results.
type Page[T any] struct {
	Items      []T
	NextCursor int64
	HasMore    bool
	TotalCount *uint64 // set only when Pagination.ReturnCount was true
}

// BlockRange optionally bounds a query to [From, To] block numbers.
type BlockRange struct {
	From, To uint64
}

// LiveCellQuery is the full parameter set of get_live_cells /
// get_historical_live_cells (spec §6), covering both the exact lock-hash
// filters and the partial-arg cheque-style filters the Asset Resolver
// produces (resolver.Filter).
type LiveCellQuery struct {
	OutPoint           *wire.OutPoint
	LockHashes         []chainhash.Hash
	TypeHashes         []chainhash.Hash
	LockCodeHashFilter *chainhash.Hash
	TypeCodeHashFilter *chainhash.Hash
	BlockRange         *BlockRange
	TipBlock           *uint64 // exclude cells spent at or before this block
	IncludeUncommitted bool
	Pagination         Pagination
}

// PartialArgQuery mirrors resolver.PartialArgQuery at the indexer-client
// boundary, kept as its own type here so this package does not import
// resolver (avoiding a dependency cycle; ops wires the two together).
type PartialArgQuery struct {
	CodeHash    chainhash.Hash
	HashType    wire.HashType
	Needle      []byte
	OffsetStart int
	OffsetEnd   int
}

// TxWrapper is the indexer's transaction-with-context result for
// get_transactions: the transaction plus the block it was committed in.
type TxWrapper struct {
	Transaction wire.Transaction
	BlockNumber uint64
	BlockHash   chainhash.Hash
	TxIndex     uint32
}

// Block is the minimal block shape the engine needs from get_block: enough
// to resolve header deps and epoch/AR lookups for DAO.
type Block struct {
	Hash        chainhash.Hash
	Number      uint64
	Epoch       uint64
	DaoARField  uint64 // the accumulated-rate value from this block's DAO header field
	Transactions []wire.Transaction
}

// AddressRegistration is one (lock_hash, address) pair submitted to
// register_addresses.
type AddressRegistration struct {
	LockHash chainhash.Hash
	Address  string
}

// Client is the Indexer contract this engine consumes (spec §6). All
// methods take a context so every call is a cancellable suspension point
// per spec §5.
type Client interface {
	GetLiveCells(ctx context.Context, q LiveCellQuery) (Page[wire.Cell], error)
	GetHistoricalLiveCells(ctx context.Context, lockHashes, typeHashes []chainhash.Hash, tip uint64, outPoint *wire.OutPoint, p Pagination) (Page[wire.Cell], error)
	GetTransactions(ctx context.Context, lockHashes, typeHashes []chainhash.Hash, p Pagination) (Page[TxWrapper], error)
	GetBlock(ctx context.Context, hash *chainhash.Hash, number *uint64) (Block, error)
	GetScriptsByPartialArg(ctx context.Context, q PartialArgQuery) ([]wire.Script, error)
	RegisterAddresses(ctx context.Context, regs []AddressRegistration) ([]chainhash.Hash, error)
	GetTip(ctx context.Context) (number uint64, hash chainhash.Hash, err error)
}
