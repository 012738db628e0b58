package identity

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/wire"
)

func testRegistry() *registry.Registry {
	p := cellcfg.MainNetParams
	p.ScriptSeeds = []cellcfg.ScriptSeed{
		{Name: string(registry.NameSecp256k1), CodeHash: [32]byte{1}, HashType: uint8(wire.HashTypeType)},
		{Name: string(registry.NameACP), CodeHash: [32]byte{2}, HashType: uint8(wire.HashTypeType)},
		{Name: string(registry.NamePWLock), CodeHash: [32]byte{3}, HashType: uint8(wire.HashTypeType)},
	}
	return registry.New(p)
}

func TestExpandProducesSecpAndACPForCkbFlag(t *testing.T) {
	reg := testRegistry()
	id := New(FlagCkb, [wire.Blake160Size]byte{1, 2, 3})

	scripts := Expand(reg)(id)
	require.Len(t, scripts, 2)
	assert.Equal(t, chainhash.Hash{1}, scripts[0].CodeHash)
	assert.Equal(t, chainhash.Hash{2}, scripts[1].CodeHash)
	assert.Equal(t, byte(FlagCkb), scripts[0].Args[0])
}

func TestExpandAddsPWLockForEthereumFlag(t *testing.T) {
	reg := testRegistry()
	id := New(FlagEthereum, [wire.Blake160Size]byte{9})

	scripts := Expand(reg)(id)
	require.Len(t, scripts, 3)
	assert.Equal(t, chainhash.Hash{3}, scripts[2].CodeHash)
	assert.Len(t, scripts[2].Args, wire.Blake160Size)
}

func TestLockMatchesIdentity(t *testing.T) {
	blake160 := [wire.Blake160Size]byte{5, 6, 7}
	id := New(FlagCkb, blake160)
	lock := wire.Script{Args: append([]byte{byte(FlagCkb)}, blake160[:]...)}

	assert.True(t, LockMatchesIdentity(lock, id))
	assert.False(t, LockMatchesIdentity(lock, New(FlagCkb, [wire.Blake160Size]byte{1})))
	assert.False(t, LockMatchesIdentity(wire.Script{Args: []byte{1, 2}}, id))
}

func TestFromLockRecoversIdentity(t *testing.T) {
	blake160 := [wire.Blake160Size]byte{8, 8, 8}
	lock := wire.Script{Args: append([]byte{byte(FlagEthereum)}, blake160[:]...)}

	id, ok := FromLock(lock)
	require.True(t, ok)
	assert.Equal(t, FlagEthereum, id.Flag)
	assert.Equal(t, blake160, id.Blake160)

	_, ok = FromLock(wire.Script{Args: []byte{1}})
	assert.False(t, ok)
}

func TestChequeLockHashIsDeterministic(t *testing.T) {
	reg := testRegistry()
	id := New(FlagCkb, [wire.Blake160Size]byte{4})

	h1, ok1 := ChequeLockHash(reg, id)
	h2, ok2 := ChequeLockHash(reg, id)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, h1, h2)

	other, _ := ChequeLockHash(reg, New(FlagCkb, [wire.Blake160Size]byte{5}))
	assert.NotEqual(t, h1, other)
}

func TestIdentityEqual(t *testing.T) {
	a := New(FlagCkb, [wire.Blake160Size]byte{1})
	b := New(FlagCkb, [wire.Blake160Size]byte{1})
	c := New(FlagEthereum, [wire.Blake160Size]byte{1})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
