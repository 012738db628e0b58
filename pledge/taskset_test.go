package pledge

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"

	"github.com/toole-brendan/shell-mercury/wire"
)

func TestPledgeRejectsDuplicate(t *testing.T) {
	s := NewTaskSet()
	op := wire.OutPoint{TxHash: chainhash.Hash{1}, Index: 0}

	assert.True(t, s.Pledge(op))
	assert.False(t, s.Pledge(op))
	assert.Equal(t, 1, s.Len())
}

func TestIsPledgedReflectsCurrentState(t *testing.T) {
	s := NewTaskSet()
	op := wire.OutPoint{TxHash: chainhash.Hash{1}, Index: 0}

	assert.False(t, s.IsPledged(op))
	s.Pledge(op)
	assert.True(t, s.IsPledged(op))
}

func TestReleaseAllowsRePledging(t *testing.T) {
	s := NewTaskSet()
	op := wire.OutPoint{TxHash: chainhash.Hash{1}, Index: 0}

	s.Pledge(op)
	s.Release(op)
	assert.False(t, s.IsPledged(op))
	assert.True(t, s.Pledge(op))
}
