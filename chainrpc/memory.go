// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainrpc

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/wire"
)

// MemoryClient is an in-memory Client used by engine tests.
type MemoryClient struct {
	txs      map[chainhash.Hash]wire.Transaction
	txHeader map[chainhash.Hash]Header
	headers  map[uint64]Header
	byHash   map[chainhash.Hash]Header
	epochs   map[uint64]Epoch
	tip      Header
}

// NewMemoryClient returns an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		txs:      make(map[chainhash.Hash]wire.Transaction),
		txHeader: make(map[chainhash.Hash]Header),
		headers:  make(map[uint64]Header),
		byHash:   make(map[chainhash.Hash]Header),
		epochs:   make(map[uint64]Epoch),
	}
}

// AddTransaction registers a committed transaction and the header it was
// included in.
func (m *MemoryClient) AddTransaction(tx wire.Transaction, h Header) {
	hash := tx.Hash()
	m.txs[hash] = tx
	m.txHeader[hash] = h
}

// AddHeader registers a header, indexable by both number and hash.
func (m *MemoryClient) AddHeader(h Header) {
	m.headers[h.Number] = h
	m.byHash[h.Hash] = h
}

// AddEpoch registers an epoch's boundary data.
func (m *MemoryClient) AddEpoch(e Epoch) {
	m.epochs[e.Number] = e
}

// SetTip sets the header GetTipHeader returns.
func (m *MemoryClient) SetTip(h Header) {
	m.tip = h
}

func (m *MemoryClient) GetTransaction(_ context.Context, hash chainhash.Hash) (wire.Transaction, Header, error) {
	tx, ok := m.txs[hash]
	if !ok {
		return wire.Transaction{}, Header{}, fmt.Errorf("chainrpc: unknown transaction %s", hash)
	}
	return tx, m.txHeader[hash], nil
}

func (m *MemoryClient) GetHeaderByNumber(_ context.Context, number uint64) (Header, error) {
	h, ok := m.headers[number]
	if !ok {
		return Header{}, fmt.Errorf("chainrpc: unknown header number %d", number)
	}
	return h, nil
}

func (m *MemoryClient) GetHeaderByHash(_ context.Context, hash chainhash.Hash) (Header, error) {
	h, ok := m.byHash[hash]
	if !ok {
		return Header{}, fmt.Errorf("chainrpc: unknown header hash %s", hash)
	}
	return h, nil
}

func (m *MemoryClient) GetEpochByNumber(_ context.Context, epochNumber uint64) (Epoch, error) {
	e, ok := m.epochs[epochNumber]
	if !ok {
		return Epoch{}, fmt.Errorf("chainrpc: unknown epoch %d", epochNumber)
	}
	return e, nil
}

func (m *MemoryClient) GetTipHeader(_ context.Context) (Header, error) {
	return m.tip, nil
}

var _ Client = (*MemoryClient)(nil)
