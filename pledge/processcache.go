// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pledge

import (
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/toole-brendan/shell-mercury/wire"
)

// ProcessCache is the process-wide pledged-cell set: every concurrent build
// task pledges its selected inputs here before returning a transaction, so
// a second task running concurrently against a lagging indexer snapshot
// does not also select a cell already claimed by the first. Reads vastly
// outnumber writes (every candidate cell is checked, only chosen ones are
// pledged), so this follows the mempool's RWMutex convention rather than a
// plain Mutex.
type ProcessCache struct {
	mtx     sync.RWMutex
	pledges map[wire.OutPoint]time.Time
	ttl     time.Duration

	db *leveldb.DB // nil unless opened with a backing store; see Open
}

// NewProcessCache returns an in-memory-only ProcessCache: pledges expire
// after ttl and are not persisted across process restarts.
func NewProcessCache(ttl time.Duration) *ProcessCache {
	return &ProcessCache{
		pledges: make(map[wire.OutPoint]time.Time),
		ttl:     ttl,
	}
}

// Open returns a ProcessCache backed by a leveldb database at path, so
// pledges survive a process restart within their ttl (useful when a
// build-serving process is restarted mid-flight and should not immediately
// re-offer cells it had just handed out).
func Open(path string, ttl time.Duration) (*ProcessCache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	pc := &ProcessCache{
		pledges: make(map[wire.OutPoint]time.Time),
		ttl:     ttl,
		db:      db,
	}
	if err := pc.loadFromDB(); err != nil {
		db.Close()
		return nil, err
	}
	return pc, nil
}

func (pc *ProcessCache) loadFromDB() error {
	iter := pc.db.NewIterator(nil, nil)
	defer iter.Release()
	now := time.Now()
	for iter.Next() {
		op, err := decodeOutPointKey(iter.Key())
		if err != nil {
			continue
		}
		expiresAt, err := decodeTimeValue(iter.Value())
		if err != nil {
			continue
		}
		if expiresAt.Before(now) {
			continue
		}
		pc.pledges[op] = expiresAt
	}
	return iter.Error()
}

// Close releases the backing database, if any.
func (pc *ProcessCache) Close() error {
	if pc.db == nil {
		return nil
	}
	return pc.db.Close()
}

// TryPledge pledges op for ttl if it is not currently pledged by another
// live task. Reports whether the pledge succeeded.
func (pc *ProcessCache) TryPledge(op wire.OutPoint) bool {
	pc.mtx.Lock()
	defer pc.mtx.Unlock()

	pc.evictExpiredLocked()
	if _, ok := pc.pledges[op]; ok {
		return false
	}
	expiresAt := time.Now().Add(pc.ttl)
	pc.pledges[op] = expiresAt
	if pc.db != nil {
		pc.db.Put(encodeOutPointKey(op), encodeTimeValue(expiresAt), nil)
	}
	return true
}

// Release un-pledges op, called once the transaction that pledged it has
// either been broadcast (so the indexer will soon report it spent) or
// discarded.
func (pc *ProcessCache) Release(op wire.OutPoint) {
	pc.mtx.Lock()
	defer pc.mtx.Unlock()
	delete(pc.pledges, op)
	if pc.db != nil {
		pc.db.Delete(encodeOutPointKey(op), nil)
	}
}

// IsPledged reports whether op is currently pledged by any task.
func (pc *ProcessCache) IsPledged(op wire.OutPoint) bool {
	pc.mtx.RLock()
	defer pc.mtx.RUnlock()
	expiresAt, ok := pc.pledges[op]
	if !ok {
		return false
	}
	return expiresAt.After(time.Now())
}

// evictExpiredLocked drops pledges past their ttl. Called with mtx held
// for writes.
func (pc *ProcessCache) evictExpiredLocked() {
	now := time.Now()
	for op, expiresAt := range pc.pledges {
		if expiresAt.Before(now) {
			delete(pc.pledges, op)
			if pc.db != nil {
				pc.db.Delete(encodeOutPointKey(op), nil)
			}
		}
	}
}

func encodeOutPointKey(op wire.OutPoint) []byte {
	key := make([]byte, 0, 36)
	key = append(key, op.TxHash[:]...)
	key = append(key, byte(op.Index>>24), byte(op.Index>>16), byte(op.Index>>8), byte(op.Index))
	return key
}

func decodeOutPointKey(key []byte) (wire.OutPoint, error) {
	if len(key) != 36 {
		return wire.OutPoint{}, leveldb.ErrNotFound
	}
	var op wire.OutPoint
	copy(op.TxHash[:], key[:32])
	op.Index = uint32(key[32])<<24 | uint32(key[33])<<16 | uint32(key[34])<<8 | uint32(key[35])
	return op, nil
}

func encodeTimeValue(t time.Time) []byte {
	nanos := t.UnixNano()
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(nanos >> (56 - 8*i))
	}
	return buf
}

func decodeTimeValue(value []byte) (time.Time, error) {
	if len(value) != 8 {
		return time.Time{}, leveldb.ErrNotFound
	}
	var nanos int64
	for i := 0; i < 8; i++ {
		nanos = nanos<<8 | int64(value[i])
	}
	return time.Unix(0, nanos), nil
}
