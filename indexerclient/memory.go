// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexerclient

import (
	"bytes"
	"context"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/wire"
)

// MemoryClient is an in-memory Client used by engine tests: it never makes
// an HTTP call, so planner/balancer/ops tests can construct a fixed cell
// set and exercise build calls deterministically.
type MemoryClient struct {
	cells     []wire.Cell
	spent     map[wire.OutPoint]struct{}
	tipNumber uint64
	tipHash   chainhash.Hash
	registered []AddressRegistration
}

// NewMemoryClient returns an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{spent: make(map[wire.OutPoint]struct{})}
}

// AddCell inserts a live cell into the fake indexer.
func (m *MemoryClient) AddCell(c wire.Cell) {
	m.cells = append(m.cells, c)
	sort.Slice(m.cells, func(i, j int) bool {
		a, b := m.cells[i], m.cells[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}
		return a.OutPoint.Index < b.OutPoint.Index
	})
}

// MarkSpent removes a cell from future GetLiveCells results, simulating a
// transaction this fake process has already committed.
func (m *MemoryClient) MarkSpent(op wire.OutPoint) {
	m.spent[op] = struct{}{}
}

// SetTip sets the value GetTip returns.
func (m *MemoryClient) SetTip(number uint64, hash chainhash.Hash) {
	m.tipNumber = number
	m.tipHash = hash
}

func matchesLockHash(c wire.Cell, hashes []chainhash.Hash) bool {
	if len(hashes) == 0 {
		return false
	}
	h := c.Output.Lock.Hash()
	for _, want := range hashes {
		if h == want {
			return true
		}
	}
	return false
}

func matchesTypeHash(c wire.Cell, hashes []chainhash.Hash) bool {
	if len(hashes) == 0 {
		return true // no type filter requested
	}
	if c.Output.Type == nil {
		return false
	}
	h := c.Output.Type.Hash()
	for _, want := range hashes {
		if h == want {
			return true
		}
	}
	return false
}

func (m *MemoryClient) GetLiveCells(_ context.Context, q LiveCellQuery) (Page[wire.Cell], error) {
	var out []wire.Cell
	for _, c := range m.cells {
		if _, dead := m.spent[c.OutPoint]; dead {
			continue
		}
		if q.OutPoint != nil {
			if c.OutPoint != *q.OutPoint {
				continue
			}
			out = append(out, c)
			continue
		}
		if !matchesLockHash(c, q.LockHashes) {
			continue
		}
		if !matchesTypeHash(c, q.TypeHashes) {
			continue
		}
		if q.TipBlock != nil && c.BlockNumber > *q.TipBlock {
			continue
		}
		out = append(out, c)
	}
	return paginate(out, q.Pagination), nil
}

func (m *MemoryClient) GetHistoricalLiveCells(_ context.Context, lockHashes, typeHashes []chainhash.Hash, _ uint64, outPoint *wire.OutPoint, p Pagination) (Page[wire.Cell], error) {
	var out []wire.Cell
	for _, c := range m.cells {
		if outPoint != nil && c.OutPoint != *outPoint {
			continue
		}
		if outPoint == nil && (!matchesLockHash(c, lockHashes) || !matchesTypeHash(c, typeHashes)) {
			continue
		}
		out = append(out, c)
	}
	return paginate(out, p), nil
}

func (m *MemoryClient) GetTransactions(_ context.Context, _, _ []chainhash.Hash, p Pagination) (Page[TxWrapper], error) {
	return paginate[TxWrapper](nil, p), nil
}

func (m *MemoryClient) GetBlock(_ context.Context, _ *chainhash.Hash, _ *uint64) (Block, error) {
	return Block{}, nil
}

func (m *MemoryClient) GetScriptsByPartialArg(_ context.Context, q PartialArgQuery) ([]wire.Script, error) {
	var scripts []wire.Script
	seen := make(map[string]struct{})
	for _, c := range m.cells {
		lock := c.Output.Lock
		if lock.CodeHash != q.CodeHash || lock.HashType != q.HashType {
			continue
		}
		if q.OffsetEnd > len(lock.Args) {
			continue
		}
		if !bytes.Equal(lock.Args[q.OffsetStart:q.OffsetEnd], q.Needle) {
			continue
		}
		key := string(lock.Args)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		scripts = append(scripts, lock)
	}
	return scripts, nil
}

func (m *MemoryClient) RegisterAddresses(_ context.Context, regs []AddressRegistration) ([]chainhash.Hash, error) {
	m.registered = append(m.registered, regs...)
	hashes := make([]chainhash.Hash, len(regs))
	for i, r := range regs {
		hashes[i] = r.LockHash
	}
	return hashes, nil
}

func (m *MemoryClient) GetTip(_ context.Context) (uint64, chainhash.Hash, error) {
	return m.tipNumber, m.tipHash, nil
}

func paginate[T any](items []T, p Pagination) Page[T] {
	start := int(p.Cursor)
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	limit := int(p.Limit)
	if limit <= 0 || limit > len(items)-start {
		limit = len(items) - start
	}
	end := start + limit
	page := Page[T]{Items: items[start:end]}
	if end < len(items) {
		page.NextCursor = int64(end)
		page.HasMore = true
	} else {
		page.NextCursor = int64(len(items))
	}
	if p.ReturnCount {
		total := uint64(len(items))
		page.TotalCount = &total
	}
	return page
}

var _ Client = (*MemoryClient)(nil)
