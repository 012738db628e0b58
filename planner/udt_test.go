package planner

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/sudt"
	"github.com/toole-brendan/shell-mercury/wire"
)

func udtRegistry() *registry.Registry {
	p := cellcfg.MainNetParams
	p.ScriptSeeds = []cellcfg.ScriptSeed{
		{Name: string(registry.NameSecp256k1), CodeHash: [32]byte{1}, HashType: uint8(wire.HashTypeType)},
		{Name: string(registry.NameACP), CodeHash: [32]byte{2}, HashType: uint8(wire.HashTypeType)},
		{Name: string(registry.NameCheque), CodeHash: [32]byte{3}, HashType: uint8(wire.HashTypeType)},
		{Name: string(registry.NameSUDT), CodeHash: [32]byte{4}, HashType: uint8(wire.HashTypeType)},
	}
	return registry.New(p)
}

func sudtCell(n byte, capacity uint64, amount int64, sudtType wire.Script, lock wire.Script) wire.Cell {
	data, _ := sudt.Encode(big.NewInt(amount), nil)
	return wire.Cell{
		OutPoint: wire.OutPoint{TxHash: chainhash.Hash{n}},
		Output:   wire.CellOutput{Capacity: capacity, Lock: lock, Type: &sudtType},
		Data:     data,
	}
}

func TestUDTHoldByFromChequeRejectsSameSenderAndReceiver(t *testing.T) {
	reg := udtRegistry()
	params := cellcfg.MainNetParams
	sudtType := wire.Script{CodeHash: chainhash.Hash{9}}
	hash := [wire.Blake160Size]byte{1}
	_, err := UDTHoldByFromCheque("build_transfer", reg, params, hash, hash, wire.Script{}, sudtType, big.NewInt(100), nil, nil, 0)
	assert.Error(t, err)
}

func TestUDTHoldByFromChequeIssuesFixedCapacityCheque(t *testing.T) {
	reg := udtRegistry()
	params := cellcfg.MainNetParams
	sudtType := wire.Script{CodeHash: chainhash.Hash{9}}
	senderLock := wire.Script{CodeHash: chainhash.Hash{1}, Args: []byte{0xAA}}
	receiverHash := [wire.Blake160Size]byte{1}
	senderHash := [wire.Blake160Size]byte{2}

	udtCandidates := []wire.Cell{sudtCell(1, 1000, 500, sudtType, senderLock)}
	capacityCandidates := []wire.Cell{{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{2}}, Output: wire.CellOutput{Capacity: 100_000 * params.ByteShannons}}}

	comp, err := UDTHoldByFromCheque("build_transfer", reg, params, receiverHash, senderHash, senderLock, sudtType, big.NewInt(300), udtCandidates, capacityCandidates, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, comp.Outputs)
	assert.Equal(t, params.ChequeCellCapacity, comp.Outputs[0].Capacity)
	assert.Equal(t, chainhash.Hash{3}, comp.Outputs[0].Lock.CodeHash)
}

func TestUDTHoldByFromChequeProducesChangeWhenUDTExceedsAmount(t *testing.T) {
	reg := udtRegistry()
	params := cellcfg.MainNetParams
	sudtType := wire.Script{CodeHash: chainhash.Hash{9}}
	senderLock := wire.Script{CodeHash: chainhash.Hash{1}, Args: []byte{0xAA}}
	receiverHash := [wire.Blake160Size]byte{1}
	senderHash := [wire.Blake160Size]byte{2}

	udtCandidates := []wire.Cell{sudtCell(1, 100_000*params.ByteShannons, 1000, sudtType, senderLock)}
	capacityCandidates := []wire.Cell{{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{2}}, Output: wire.CellOutput{Capacity: 100_000 * params.ByteShannons}}}

	comp, err := UDTHoldByFromCheque("build_transfer", reg, params, receiverHash, senderHash, senderLock, sudtType, big.NewInt(300), udtCandidates, capacityCandidates, 0)
	require.NoError(t, err)
	require.Len(t, comp.Outputs, 2)
	assert.Equal(t, 0, big.NewInt(700).Cmp(sudt.Decode(comp.OutputsData[1])))
}

func TestUDTHoldByFromChequeErrorsOnInsufficientUDT(t *testing.T) {
	reg := udtRegistry()
	params := cellcfg.MainNetParams
	sudtType := wire.Script{CodeHash: chainhash.Hash{9}}
	senderLock := wire.Script{CodeHash: chainhash.Hash{1}}
	receiverHash := [wire.Blake160Size]byte{1}
	senderHash := [wire.Blake160Size]byte{2}

	udtCandidates := []wire.Cell{sudtCell(1, 1000, 10, sudtType, senderLock)}
	_, err := UDTHoldByFromCheque("build_transfer", reg, params, receiverHash, senderHash, senderLock, sudtType, big.NewInt(300), udtCandidates, nil, 0)
	assert.Error(t, err)
}

func TestUDTHoldByToErrorsWithoutRecipientACP(t *testing.T) {
	params := cellcfg.MainNetParams
	sudtType := wire.Script{CodeHash: chainhash.Hash{9}}
	_, err := UDTHoldByTo("build_transfer", params, nil, sudtType, big.NewInt(1), nil, nil, wire.Script{}, 0)
	assert.Error(t, err)
}

func TestUDTHoldByToToppsUpRecipientACPBalance(t *testing.T) {
	params := cellcfg.MainNetParams
	sudtType := wire.Script{CodeHash: chainhash.Hash{9}}
	acpLock := wire.Script{CodeHash: chainhash.Hash{2}, Args: []byte{0xBB}}
	acp := sudtCell(1, params.StandardSudtCapacity, 100, sudtType, acpLock)
	senderLock := wire.Script{CodeHash: chainhash.Hash{1}}

	udtCandidates := []wire.Cell{sudtCell(2, 1000, 50, sudtType, senderLock)}
	capacityCandidates := []wire.Cell{{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{3}}, Output: wire.CellOutput{Capacity: 100_000}}}

	comp, err := UDTHoldByTo("build_transfer", params, &acp, sudtType, big.NewInt(50), udtCandidates, capacityCandidates, senderLock, 0)
	require.NoError(t, err)
	require.NotEmpty(t, comp.Outputs)
	assert.Equal(t, 0, big.NewInt(150).Cmp(sudt.Decode(comp.Outputs[0].Data)))
	assert.True(t, wire.HasInput(comp.Inputs, acp.OutPoint))
}

func TestUDTPayWithAcpMintsFreshRecipientCell(t *testing.T) {
	reg := udtRegistry()
	params := cellcfg.MainNetParams
	sudtType := wire.Script{CodeHash: chainhash.Hash{9}}
	fromACPLock := wire.Script{CodeHash: chainhash.Hash{2}, Args: append([]byte{0xCC}, make([]byte, wire.Blake160Size)...)}
	recipientLock := wire.Script{CodeHash: chainhash.Hash{1}, Args: []byte{0xDD}}

	fromACPs := []wire.Cell{sudtCell(1, 100_000*params.ByteShannons, 1000, sudtType, fromACPLock)}

	comp, err := UDTPayWithAcp("build_transfer", reg, params, fromACPs, recipientLock, sudtType, big.NewInt(400), 0)
	require.NoError(t, err)
	require.NotEmpty(t, comp.Outputs)
	assert.Equal(t, params.StandardSudtCapacity, comp.Outputs[0].Capacity)
	assert.Equal(t, recipientLock, comp.Outputs[0].Lock)
	assert.Equal(t, 0, big.NewInt(400).Cmp(sudt.Decode(comp.Outputs[0].Data)))
}

func TestUDTPayWithAcpErrorsWhenUDTInsufficient(t *testing.T) {
	reg := udtRegistry()
	params := cellcfg.MainNetParams
	sudtType := wire.Script{CodeHash: chainhash.Hash{9}}
	fromACPLock := wire.Script{CodeHash: chainhash.Hash{2}}
	recipientLock := wire.Script{CodeHash: chainhash.Hash{1}}

	fromACPs := []wire.Cell{sudtCell(1, 100_000*params.ByteShannons, 10, sudtType, fromACPLock)}
	_, err := UDTPayWithAcp("build_transfer", reg, params, fromACPs, recipientLock, sudtType, big.NewInt(400), 0)
	assert.Error(t, err)
}
