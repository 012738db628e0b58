package acpengine

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/identity"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/sudt"
	"github.com/toole-brendan/shell-mercury/wire"
)

func testRegistry() *registry.Registry {
	p := cellcfg.MainNetParams
	p.ScriptSeeds = []cellcfg.ScriptSeed{
		{Name: string(registry.NameSecp256k1), CodeHash: [32]byte{1}, HashType: uint8(wire.HashTypeType)},
		{Name: string(registry.NameACP), CodeHash: [32]byte{2}, HashType: uint8(wire.HashTypeType)},
	}
	return registry.New(p)
}

func TestNewCellEncodesMinDepositAndZeroBalance(t *testing.T) {
	reg := testRegistry()
	params := cellcfg.MainNetParams
	id := identity.New(identity.FlagCkb, [wire.Blake160Size]byte{7})
	sudtType := wire.Script{CodeHash: chainhash.Hash{3}}

	output, data, err := NewCell(reg, params, id, sudtType, 1000, 500)
	require.NoError(t, err)
	assert.Equal(t, params.StandardSudtCapacity+500, output.Capacity)
	assert.Equal(t, sudtType, *output.Type)
	assert.Equal(t, sudt.Zero(), data)
	assert.Equal(t, chainhash.Hash{2}, output.Lock.CodeHash)
}

func TestTopUpIncreasesCapacityOnly(t *testing.T) {
	lock := wire.Script{CodeHash: chainhash.Hash{2}}
	out := wire.CellOutput{Capacity: 1000, Lock: lock}
	topped := TopUp(out, 500)
	assert.Equal(t, uint64(1500), topped.Capacity)
	assert.Equal(t, lock, topped.Lock)
}

func TestTopUpUDTAddsAmount(t *testing.T) {
	data := sudt.Zero()
	updated, err := TopUpUDT(data, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(100).Cmp(sudt.Decode(updated)))

	updated, err = TopUpUDT(updated, big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(150).Cmp(sudt.Decode(updated)))
}

func TestNormalizeStripsMinDepositTail(t *testing.T) {
	reg := testRegistry()
	id := identity.New(identity.FlagCkb, [wire.Blake160Size]byte{9})
	output, _, err := NewCell(reg, cellcfg.MainNetParams, id, wire.Script{}, 42, 0)
	require.NoError(t, err)

	normalized, err := Normalize(output.Lock, reg)
	require.NoError(t, err)
	assert.Equal(t, chainhash.Hash{1}, normalized.CodeHash)
	assert.Len(t, normalized.Args, 1+wire.Blake160Size)
}

func TestNormalizeLeavesNonACPLockUntouched(t *testing.T) {
	reg := testRegistry()
	lock := wire.Script{CodeHash: chainhash.Hash{1}, Args: []byte{1, 2, 3}}
	normalized, err := Normalize(lock, reg)
	require.NoError(t, err)
	assert.Equal(t, lock, normalized)
}

func TestCollectMergesCapacityAtNormalizedLock(t *testing.T) {
	reg := testRegistry()
	id := identity.New(identity.FlagCkb, [wire.Blake160Size]byte{3})
	sudtType := wire.Script{CodeHash: chainhash.Hash{3}}
	c1, _, _ := NewCell(reg, cellcfg.MainNetParams, id, sudtType, 0, 0)
	c2, _, _ := NewCell(reg, cellcfg.MainNetParams, id, sudtType, 0, 0)
	c2.Capacity += 1000

	result, err := Collect(reg, []wire.CellOutput{c1, c2}, sudtType, big.NewInt(250), false)
	require.NoError(t, err)
	assert.Equal(t, c1.Capacity+c2.Capacity, result.Output.Capacity)
	assert.Equal(t, 0, big.NewInt(250).Cmp(sudt.Decode(result.Data)))
	require.NotNil(t, result.Output.Type)
}

func TestCollectAllRequiresZeroUDT(t *testing.T) {
	reg := testRegistry()
	id := identity.New(identity.FlagCkb, [wire.Blake160Size]byte{3})
	sudtType := wire.Script{CodeHash: chainhash.Hash{3}}
	c1, _, _ := NewCell(reg, cellcfg.MainNetParams, id, sudtType, 0, 0)

	_, err := Collect(reg, []wire.CellOutput{c1}, sudtType, big.NewInt(1), true)
	assert.Error(t, err)

	result, err := Collect(reg, []wire.CellOutput{c1}, sudtType, big.NewInt(0), true)
	require.NoError(t, err)
	assert.Nil(t, result.Output.Type)
}
