// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cellcfg

import "sync/atomic"

// Tip is an immutable snapshot of the chain's current block number and
// epoch, as published by the block-ingestion collaborator.
type Tip struct {
	BlockNumber uint64
	Epoch       uint64
}

// TipSnapshot holds the process-wide tip, updated by the ingestion
// collaborator and read by every build call via Load. Reads never block a
// concurrent Store, mirroring mempool's atomic.StoreInt64/LoadInt64 use for
// its lastUpdated timestamp: a single 64-bit word swap is cheaper than a
// mutex for a value with one writer and many readers.
type TipSnapshot struct {
	blockNumber atomic.Uint64
	epoch       atomic.Uint64
}

// NewTipSnapshot returns a TipSnapshot initialized to the given tip.
func NewTipSnapshot(initial Tip) *TipSnapshot {
	t := &TipSnapshot{}
	t.Store(initial)
	return t
}

// Store publishes a new tip. Called by the ingestion collaborator; never by
// the engine itself.
func (t *TipSnapshot) Store(tip Tip) {
	t.blockNumber.Store(tip.BlockNumber)
	t.epoch.Store(tip.Epoch)
}

// Load acquires a consistent-enough snapshot of the current tip. The two
// words are not updated atomically as a pair, so a caller observing this
// mid-Store may see a new block number with the old epoch for one read;
// every consumer in this engine treats the tip as advisory staleness
// bounds, not a source of truth requiring exact pairing.
func (t *TipSnapshot) Load() Tip {
	return Tip{
		BlockNumber: t.blockNumber.Load(),
		Epoch:       t.epoch.Load(),
	}
}
