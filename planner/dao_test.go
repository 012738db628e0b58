package planner

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/daoengine"
	"github.com/toole-brendan/shell-mercury/wire"
)

func TestDAODepositBuildsZeroDataTypedOutput(t *testing.T) {
	daoType := wire.Script{CodeHash: chainhash.Hash{5}}
	to := wire.Script{CodeHash: chainhash.Hash{1}}
	comp := DAODeposit(daoType, to, 10_000)
	require.Len(t, comp.Outputs, 1)
	assert.Equal(t, uint64(10_000), comp.Outputs[0].Capacity)
	assert.Equal(t, daoType, *comp.Outputs[0].Type)
	assert.Equal(t, daoengine.DepositData(), comp.OutputsData[0])
}

func TestDAOWithdrawErrorsWithoutDeposit(t *testing.T) {
	_, err := DAOWithdraw("build_dao_withdraw", nil, chainhash.Hash{}, 100)
	assert.Error(t, err)
}

func TestDAOWithdrawPreservesLockAndAddsHeaderDep(t *testing.T) {
	lock := wire.Script{CodeHash: chainhash.Hash{1}}
	deposit := wire.Cell{
		OutPoint: wire.OutPoint{TxHash: chainhash.Hash{2}},
		Output:   wire.CellOutput{Capacity: 5000, Lock: lock},
	}
	depositBlockHash := chainhash.Hash{9}

	comp, err := DAOWithdraw("build_dao_withdraw", &deposit, depositBlockHash, 42)
	require.NoError(t, err)
	require.Len(t, comp.Outputs, 1)
	assert.Equal(t, lock, comp.Outputs[0].Lock)
	assert.Equal(t, uint64(5000), comp.Outputs[0].Capacity)
	assert.Contains(t, comp.HeaderDeps, depositBlockHash)

	block, err := daoengine.ReadBlockNumber(comp.OutputsData[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(42), block)
}

func TestDAOClaimErrorsWhenMaturedIsEmpty(t *testing.T) {
	to := wire.Script{CodeHash: chainhash.Hash{1}}
	_, err := DAOClaim("build_dao_claim", 4, nil, to, 100, 0)
	assert.Error(t, err)
}

func TestDAOClaimErrorsWhenAnEntryIsImmature(t *testing.T) {
	to := wire.Script{CodeHash: chainhash.Hash{1}}
	w := WithdrawingCell{
		Cell:          wire.Cell{Output: wire.CellOutput{Capacity: 1000}},
		DepositEpoch:  10,
		WithdrawEpoch: 11,
		ARDeposit:     arPrecisionForTest(),
		ARWithdraw:    arPrecisionForTest(),
	}
	_, err := DAOClaim("build_dao_claim", 4, []WithdrawingCell{w}, to, 12, 0)
	assert.Error(t, err)
}

func TestDAOClaimSumsMaturedCapacityMinusFee(t *testing.T) {
	to := wire.Script{CodeHash: chainhash.Hash{1}}
	w1 := WithdrawingCell{
		Cell:              wire.Cell{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{1}}, Output: wire.CellOutput{Capacity: 1000}},
		DepositEpoch:      0,
		WithdrawEpoch:     1,
		DepositBlockHash:  chainhash.Hash{10},
		WithdrawBlockHash: chainhash.Hash{11},
		ARDeposit:         arPrecisionForTest(),
		ARWithdraw:        arPrecisionForTest(),
	}
	w2 := WithdrawingCell{
		Cell:              wire.Cell{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{2}}, Output: wire.CellOutput{Capacity: 2000}},
		DepositEpoch:      0,
		WithdrawEpoch:     1,
		DepositBlockHash:  chainhash.Hash{20},
		WithdrawBlockHash: chainhash.Hash{21},
		ARDeposit:         arPrecisionForTest(),
		ARWithdraw:        arPrecisionForTest(),
	}
	comp, err := DAOClaim("build_dao_claim", 4, []WithdrawingCell{w1, w2}, to, 10, 500)
	require.NoError(t, err)
	require.Len(t, comp.Outputs, 1)
	assert.Equal(t, uint64(3000-500), comp.Outputs[0].Capacity)
	assert.Len(t, comp.Inputs, 2)
	assert.Len(t, comp.HeaderDeps, 2)
}

func arPrecisionForTest() uint64 {
	return 1_0000_0000_0000_0000
}
