// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pledge tracks which live cells are spoken for so two concurrent
// build operations never select the same cell as an input (spec §5:
// "within a single build call, selected cells are pledged against reuse").
package pledge

import "github.com/toole-brendan/shell-mercury/wire"

// TaskSet tracks the cells pledged within a single build operation. It is
// not safe for concurrent use: a build runs its input-selection loop
// sequentially, so no locking is needed here, only in ProcessCache where
// multiple tasks interact.
type TaskSet struct {
	pledged map[wire.OutPoint]struct{}
}

// NewTaskSet returns an empty TaskSet.
func NewTaskSet() *TaskSet {
	return &TaskSet{pledged: make(map[wire.OutPoint]struct{})}
}

// Pledge marks op as spoken for by this task. Reports false if op was
// already pledged.
func (s *TaskSet) Pledge(op wire.OutPoint) bool {
	if _, ok := s.pledged[op]; ok {
		return false
	}
	s.pledged[op] = struct{}{}
	return true
}

// IsPledged reports whether op has already been pledged by this task.
func (s *TaskSet) IsPledged(op wire.OutPoint) bool {
	_, ok := s.pledged[op]
	return ok
}

// Release un-pledges op, used when a candidate cell is rejected after
// pledging (e.g. it turns out to fail a since-constraint check).
func (s *TaskSet) Release(op wire.OutPoint) {
	delete(s.pledged, op)
}

// Len returns the number of currently pledged cells.
func (s *TaskSet) Len() int {
	return len(s.pledged)
}
