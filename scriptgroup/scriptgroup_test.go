package scriptgroup

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/shell-mercury/classifier"
	"github.com/toole-brendan/shell-mercury/wire"
)

func TestAssembleGroupsInputsBySharedLockScript(t *testing.T) {
	lockA := wire.Script{CodeHash: chainhash.Hash{1}, Args: []byte{1}}
	lockB := wire.Script{CodeHash: chainhash.Hash{2}, Args: []byte{2}}

	op1 := wire.OutPoint{TxHash: chainhash.Hash{10}, Index: 0}
	op2 := wire.OutPoint{TxHash: chainhash.Hash{11}, Index: 0}
	op3 := wire.OutPoint{TxHash: chainhash.Hash{12}, Index: 0}

	cells := map[wire.OutPoint]wire.Cell{
		op1: {Output: wire.CellOutput{Lock: lockA}},
		op2: {Output: wire.CellOutput{Lock: lockB}},
		op3: {Output: wire.CellOutput{Lock: lockA}},
	}

	tx := &wire.Transaction{Inputs: []wire.CellInput{
		{PreviousOutput: op1}, {PreviousOutput: op2}, {PreviousOutput: op3},
	}}

	result := Assemble(tx,
		func(op wire.OutPoint) (wire.Cell, bool) { c, ok := cells[op]; return c, ok },
		func(wire.Script) classifier.Family { return classifier.FamilySecp256k1 },
		func(wire.Script) []wire.CellDep { return nil })

	require.Len(t, result.LockGroups, 2)
	assert.Equal(t, []int{0, 2}, result.LockGroups[0].InputIndices)
	assert.Equal(t, []int{1}, result.LockGroups[1].InputIndices)
}

func TestAssembleAssignsWitnessSizeByFamily(t *testing.T) {
	lock := wire.Script{CodeHash: chainhash.Hash{1}}
	op := wire.OutPoint{TxHash: chainhash.Hash{1}, Index: 0}
	cells := map[wire.OutPoint]wire.Cell{op: {Output: wire.CellOutput{Lock: lock}}}
	tx := &wire.Transaction{Inputs: []wire.CellInput{{PreviousOutput: op}}}

	result := Assemble(tx,
		func(o wire.OutPoint) (wire.Cell, bool) { c, ok := cells[o]; return c, ok },
		func(wire.Script) classifier.Family { return classifier.FamilyPWLock },
		func(wire.Script) []wire.CellDep { return nil })

	require.Len(t, result.LockGroups, 1)
	assert.Equal(t, PWLockWitnessSize, result.LockGroups[0].WitnessPlaceholderSize)
}

func TestAssembleCollectsTypeGroupsAndDeps(t *testing.T) {
	lock := wire.Script{CodeHash: chainhash.Hash{1}}
	typeScript := wire.Script{CodeHash: chainhash.Hash{9}}
	dep := wire.CellDep{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{50}}, DepType: wire.DepTypeDepGroup}

	op := wire.OutPoint{TxHash: chainhash.Hash{1}, Index: 0}
	cells := map[wire.OutPoint]wire.Cell{
		op: {Output: wire.CellOutput{Lock: lock, Type: &typeScript}},
	}
	tx := &wire.Transaction{Inputs: []wire.CellInput{{PreviousOutput: op}}}

	result := Assemble(tx,
		func(o wire.OutPoint) (wire.Cell, bool) { c, ok := cells[o]; return c, ok },
		func(wire.Script) classifier.Family { return classifier.FamilySecp256k1 },
		func(wire.Script) []wire.CellDep { return []wire.CellDep{dep} })

	require.Len(t, result.TypeGroups, 1)
	assert.Equal(t, typeScript, result.TypeGroups[0].Script)
	// One dep is required by both the lock and type script lookups but
	// deduped to a single entry.
	assert.Equal(t, []wire.CellDep{dep}, result.CellDeps)
}

func TestMergeDepsPreservesPlannerOrderAndDedups(t *testing.T) {
	d1 := wire.CellDep{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{1}}}
	d2 := wire.CellDep{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{2}}}
	d3 := wire.CellDep{OutPoint: wire.OutPoint{TxHash: chainhash.Hash{3}}}

	merged := MergeDeps([]wire.CellDep{d1, d2}, []wire.CellDep{d2, d3})
	assert.Equal(t, []wire.CellDep{d1, d2, d3}, merged)
}

func TestFillWitnessPlaceholdersOnlyFirstInputPerGroup(t *testing.T) {
	tx := &wire.Transaction{Inputs: make([]wire.CellInput, 3)}
	result := Result{LockGroups: []Group{{InputIndices: []int{0, 2}, WitnessPlaceholderSize: SecpWitnessSize}}}

	FillWitnessPlaceholders(tx, result)
	require.Len(t, tx.Witnesses, 3)
	assert.Len(t, tx.Witnesses[0], SecpWitnessSize)
	assert.Nil(t, tx.Witnesses[1])
	assert.Nil(t, tx.Witnesses[2])
}
