// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainrpc implements the chain-node RPC contract this engine
// consumes outside of the indexer: transaction lookups and header/epoch
// lookups for header-dep resolution and DAO reward computation (spec §6).
package chainrpc

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/wire"
)

// Header is the subset of a block header this engine needs: enough to
// satisfy a header dep and to read the DAO accumulated-rate field used by
// the claim-phase reward formula (spec §4.7).
type Header struct {
	Hash       chainhash.Hash
	Number     uint64
	Epoch      uint64
	Timestamp  uint64
	DaoARField uint64
}

// Epoch describes an epoch's boundary block numbers, used to translate a
// target epoch (e.g. a cheque deadline) into a block-number comparison
// when the caller only has a tip block number in hand.
type Epoch struct {
	Number      uint64
	StartNumber uint64
	Length      uint64
}

// Client is the chain-node RPC contract. All methods take a context so
// every call is a cancellable suspension point per spec §5.
type Client interface {
	GetTransaction(ctx context.Context, hash chainhash.Hash) (wire.Transaction, Header, error)
	GetHeaderByNumber(ctx context.Context, number uint64) (Header, error)
	GetHeaderByHash(ctx context.Context, hash chainhash.Hash) (Header, error)
	GetEpochByNumber(ctx context.Context, epochNumber uint64) (Epoch, error)
	GetTipHeader(ctx context.Context) (Header, error)
}
