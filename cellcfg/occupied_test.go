package cellcfg

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"

	"github.com/toole-brendan/shell-mercury/wire"
)

func TestOccupiedBareCapacityOutput(t *testing.T) {
	p := MainNetParams
	output := wire.CellOutput{
		Capacity: 1000 * p.ByteShannons,
		Lock:     wire.Script{CodeHash: chainhash.Hash{1}, Args: make([]byte, 20)},
	}
	// 8 (capacity) + 32 (code hash) + 1 (hash type) + 20 (args) = 61 bytes.
	assert.Equal(t, uint64(61)*p.ByteShannons, p.Occupied(output, 0))
}

func TestOccupiedGrowsWithTypeScriptAndData(t *testing.T) {
	p := MainNetParams
	base := wire.CellOutput{Lock: wire.Script{CodeHash: chainhash.Hash{1}, Args: make([]byte, 20)}}
	withType := base
	withType.Type = &wire.Script{CodeHash: chainhash.Hash{2}, Args: make([]byte, 32)}

	assert.Greater(t, p.Occupied(withType, 0), p.Occupied(base, 0))
	assert.Greater(t, p.Occupied(base, 16), p.Occupied(base, 0))
}
