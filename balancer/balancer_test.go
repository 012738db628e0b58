package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/wire"
)

func cell(capacity uint64) wire.Cell {
	return wire.Cell{Output: wire.CellOutput{Capacity: capacity}}
}

func TestBalanceExactMatchNeedsNoChange(t *testing.T) {
	params := cellcfg.MainNetParams
	req := Request{
		Params:         params,
		InputCapacity:  1000,
		OutputCapacity: 900,
		Fee:            100,
	}
	result, err := Balance("build_transfer", req)
	require.NoError(t, err)
	assert.Nil(t, result.NewChangeOutput)
	assert.Nil(t, result.FoldedInto)
	assert.Empty(t, result.ExtraInputs)
}

func TestBalancePullsCandidatesInDescendingOrder(t *testing.T) {
	params := cellcfg.MainNetParams
	req := Request{
		Params:         params,
		InputCapacity:  0,
		OutputCapacity: 0,
		Fee:            100,
		Candidates: []CandidateCell{
			{Cell: cell(50 * params.ByteShannons)},
			{Cell: cell(500 * params.ByteShannons)},
			{Cell: cell(200 * params.ByteShannons)},
		},
		ChangeLock: wire.Script{},
	}
	result, err := Balance("build_transfer", req)
	require.NoError(t, err)
	require.Len(t, result.ExtraInputs, 1)
	assert.Equal(t, 500*params.ByteShannons, result.ExtraInputs[0].Output.Capacity)
	require.NotNil(t, result.NewChangeOutput)
	assert.Equal(t, 500*params.ByteShannons-100, result.NewChangeOutput.Capacity)
}

func TestBalanceOpensChangeOutputWhenAboveMin(t *testing.T) {
	params := cellcfg.MainNetParams
	req := Request{
		Params:         params,
		InputCapacity:  params.MinCellCapacity + 1000,
		OutputCapacity: 0,
		Fee:            0,
		ChangeLock:     wire.Script{},
	}
	result, err := Balance("build_transfer", req)
	require.NoError(t, err)
	require.NotNil(t, result.NewChangeOutput)
	assert.Equal(t, params.MinCellCapacity+1000, result.NewChangeOutput.Capacity)
}

func TestBalanceFoldsSubMinimumRemainderIntoFoldTarget(t *testing.T) {
	params := cellcfg.MainNetParams
	req := Request{
		Params:         params,
		InputCapacity:  1000,
		OutputCapacity: 0,
		Fee:            0,
		FoldTarget:     &FoldTarget{OutputIndex: 2},
	}
	result, err := Balance("build_transfer", req)
	require.NoError(t, err)
	require.NotNil(t, result.FoldedInto)
	assert.Equal(t, 2, *result.FoldedInto)
	assert.Equal(t, uint64(1000), result.FoldedAmount)
	assert.Nil(t, result.NewChangeOutput)
}

func TestBalanceErrorsWhenSubMinimumAndNoFoldTarget(t *testing.T) {
	params := cellcfg.MainNetParams
	req := Request{
		Params:         params,
		InputCapacity:  1000,
		OutputCapacity: 0,
		Fee:            0,
	}
	_, err := Balance("build_transfer", req)
	assert.Error(t, err)
}

func TestBalanceErrorsWhenCandidatesInsufficient(t *testing.T) {
	params := cellcfg.MainNetParams
	req := Request{
		Params:         params,
		InputCapacity:  0,
		OutputCapacity: 1000,
		Fee:            0,
		Candidates:     []CandidateCell{{Cell: cell(100)}},
	}
	_, err := Balance("build_transfer", req)
	assert.Error(t, err)
}
