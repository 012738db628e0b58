package chainrpc

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/wire"
)

func TestMemoryClientRoundTripsTransactionAndHeader(t *testing.T) {
	m := NewMemoryClient()
	txPtr := wire.New()
	txPtr.Version = 1
	tx := *txPtr
	header := Header{Hash: chainhash.Hash{1}, Number: 10}
	m.AddTransaction(tx, header)

	gotTx, gotHeader, err := m.GetTransaction(context.Background(), tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, tx, gotTx)
	assert.Equal(t, header, gotHeader)
}

func TestMemoryClientGetTransactionErrorsOnUnknownHash(t *testing.T) {
	m := NewMemoryClient()
	_, _, err := m.GetTransaction(context.Background(), chainhash.Hash{9})
	assert.Error(t, err)
}

func TestMemoryClientHeaderLookupsByNumberAndHash(t *testing.T) {
	m := NewMemoryClient()
	header := Header{Hash: chainhash.Hash{2}, Number: 5}
	m.AddHeader(header)

	byNumber, err := m.GetHeaderByNumber(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, header, byNumber)

	byHash, err := m.GetHeaderByHash(context.Background(), chainhash.Hash{2})
	require.NoError(t, err)
	assert.Equal(t, header, byHash)

	_, err = m.GetHeaderByNumber(context.Background(), 999)
	assert.Error(t, err)
}

func TestMemoryClientEpochLookup(t *testing.T) {
	m := NewMemoryClient()
	epoch := Epoch{Number: 3, StartNumber: 100, Length: 50}
	m.AddEpoch(epoch)

	got, err := m.GetEpochByNumber(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, epoch, got)

	_, err = m.GetEpochByNumber(context.Background(), 4)
	assert.Error(t, err)
}

func TestMemoryClientTip(t *testing.T) {
	m := NewMemoryClient()
	tip := Header{Number: 42}
	m.SetTip(tip)

	got, err := m.GetTipHeader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tip, got)
}
