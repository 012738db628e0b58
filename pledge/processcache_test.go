package pledge

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/wire"
)

func TestTryPledgeRejectsAlreadyPledgedOutPoint(t *testing.T) {
	pc := NewProcessCache(time.Minute)
	op := wire.OutPoint{TxHash: chainhash.Hash{1}, Index: 0}

	assert.True(t, pc.TryPledge(op))
	assert.False(t, pc.TryPledge(op))
	assert.True(t, pc.IsPledged(op))
}

func TestReleaseClearsPledge(t *testing.T) {
	pc := NewProcessCache(time.Minute)
	op := wire.OutPoint{TxHash: chainhash.Hash{1}, Index: 0}

	pc.TryPledge(op)
	pc.Release(op)
	assert.False(t, pc.IsPledged(op))
	assert.True(t, pc.TryPledge(op))
}

func TestPledgeExpiresAfterTTL(t *testing.T) {
	pc := NewProcessCache(10 * time.Millisecond)
	op := wire.OutPoint{TxHash: chainhash.Hash{1}, Index: 0}

	require.True(t, pc.TryPledge(op))
	time.Sleep(25 * time.Millisecond)
	assert.False(t, pc.IsPledged(op))
	assert.True(t, pc.TryPledge(op))
}

func TestOpenPersistsPledgesAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pledges")
	op := wire.OutPoint{TxHash: chainhash.Hash{7}, Index: 3}

	pc, err := Open(dir, time.Minute)
	require.NoError(t, err)
	require.True(t, pc.TryPledge(op))
	require.NoError(t, pc.Close())

	reopened, err := Open(dir, time.Minute)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.IsPledged(op))
	assert.False(t, reopened.TryPledge(op))
}

func TestOpenDropsExpiredPledgesOnLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pledges")
	op := wire.OutPoint{TxHash: chainhash.Hash{8}, Index: 0}

	pc, err := Open(dir, 5*time.Millisecond)
	require.NoError(t, err)
	require.True(t, pc.TryPledge(op))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, pc.Close())

	reopened, err := Open(dir, time.Minute)
	require.NoError(t, err)
	defer reopened.Close()
	assert.False(t, reopened.IsPledged(op))
}
