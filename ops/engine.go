// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ops

import (
	"context"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/address"
	"github.com/toole-brendan/shell-mercury/balancer"
	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/chainrpc"
	"github.com/toole-brendan/shell-mercury/classifier"
	"github.com/toole-brendan/shell-mercury/feeloop"
	"github.com/toole-brendan/shell-mercury/identity"
	"github.com/toole-brendan/shell-mercury/indexerclient"
	"github.com/toole-brendan/shell-mercury/planner"
	"github.com/toole-brendan/shell-mercury/pledge"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/resolver"
	"github.com/toole-brendan/shell-mercury/scriptgroup"
	"github.com/toole-brendan/shell-mercury/wire"
)

// log is this package's logger, set via UseLogger.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the engine.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Engine wires every collaborator spec §5's data-flow names into the nine
// public operations (spec §4.9): resolver expands Items into indexer
// filters, indexer fetches live cells, classifier buckets them by
// spendability, planner composes preliminary TransferComponents, balancer
// and feeloop close the capacity equation, scriptgroup finalizes signing
// groups. There is no package-level global: one Engine value is built once
// at application startup and threaded through every call, per the
// explicit-injection redesign already used by cellcfg.Params and
// registry.Registry.
type Engine struct {
	Params     cellcfg.Params
	Registry   *registry.Registry
	Resolver   *resolver.Resolver
	Classifier *classifier.Classifier
	Indexer    indexerclient.Client
	Chain      chainrpc.Client
	Pledges    *pledge.ProcessCache
}

// New returns an Engine built from its collaborators. Every field of Engine
// is exported so an embedding application may override one after
// construction (e.g. swapping Indexer for a test double); New exists only
// to fix the common wiring order.
func New(params cellcfg.Params, reg *registry.Registry, res *resolver.Resolver, cls *classifier.Classifier, indexer indexerclient.Client, chain chainrpc.Client, pledges *pledge.ProcessCache) *Engine {
	return &Engine{
		Params:     params,
		Registry:   reg,
		Resolver:   res,
		Classifier: cls,
		Indexer:    indexer,
		Chain:      chain,
		Pledges:    pledges,
	}
}

// gatherCandidates runs filter's lock-hash and partial-arg queries against
// the indexer, paginating each to completion, and drops any cell currently
// pledged by another in-flight build (spec §5: "the live-cell set an
// operation selects from must exclude cells another concurrent build has
// already claimed").
func (e *Engine) gatherCandidates(ctx context.Context, op string, filter resolver.Filter, tipBlock *uint64) ([]wire.Cell, error) {
	hashes := append([]chainhash.Hash(nil), filter.LockHashes...)

	for _, pq := range filter.PartialArgs {
		scripts, err := e.Indexer.GetScriptsByPartialArg(ctx, indexerclient.PartialArgQuery{
			CodeHash:    pq.CodeHash,
			HashType:    pq.HashType,
			Needle:      pq.Needle,
			OffsetStart: pq.OffsetStart,
			OffsetEnd:   pq.OffsetEnd,
		})
		if err != nil {
			return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure, err)
		}
		for _, s := range scripts {
			hashes = append(hashes, s.Hash())
		}
	}
	if len(hashes) == 0 {
		return nil, nil
	}

	var cells []wire.Cell
	cursor := int64(0)
	for {
		page, err := e.Indexer.GetLiveCells(ctx, indexerclient.LiveCellQuery{
			LockHashes: hashes,
			TipBlock:   tipBlock,
			Pagination: indexerclient.Pagination{Cursor: cursor, Order: indexerclient.OrderAsc, Limit: 1000},
		})
		if err != nil {
			return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure, err)
		}
		for _, c := range page.Items {
			if e.Pledges != nil && e.Pledges.IsPledged(c.OutPoint) {
				continue
			}
			cells = append(cells, c)
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}
	return cells, nil
}

// buckets splits a set of candidate cells into the shapes planner
// operations consume: bare payer-owned capacity cells, cells bearing a
// specific sudtType that id may spend right now, and the subset of those
// that are also ACP cells (adjust-account and UDTPayWithAcp work
// exclusively from this last bucket).
type buckets struct {
	capacity []wire.Cell
	udt      []wire.Cell
	acp      []wire.Cell
}

// classify buckets cells by spendability for id at tipEpoch, restricted to
// sudtType when non-nil. Cells the classifier cannot place (an
// unrecognized lock, or a since-constraint not yet satisfied) are skipped
// rather than failing the whole call — a single stale or foreign cell in
// an otherwise large candidate set should not abort the build.
func (e *Engine) classify(op string, cells []wire.Cell, id identity.Identity, sudtType *wire.Script, tipEpoch uint64) buckets {
	var b buckets
	for _, c := range cells {
		cls, err := e.Classifier.Classify(op, c, id, tipEpoch)
		if err != nil || !cls.SpendableByIdentity || !cls.SinceSatisfied {
			continue
		}
		if cls.HoldsUDT {
			if sudtType == nil || c.Output.Type == nil || !c.Output.Type.Equal(*sudtType) {
				continue
			}
			b.udt = append(b.udt, c)
			if cls.LockFamily == classifier.FamilyACP {
				b.acp = append(b.acp, c)
			}
			continue
		}
		if c.Output.Type == nil {
			b.capacity = append(b.capacity, c)
		}
	}
	return b
}

// lockFamily classifies a script's family for scriptgroup's witness-sizing
// purposes only (spec §6): every built-in family but pw-lock signs with a
// plain 65-byte secp-style witness.
func (e *Engine) lockFamily(script wire.Script) classifier.Family {
	if entry, ok := e.Registry.LookupByCodeHash(script.CodeHash); ok {
		if entry.Name == registry.NamePWLock {
			return classifier.FamilyPWLock
		}
		return classifier.FamilySecp256k1
	}
	if _, ok := e.Registry.PluginFor(script); ok {
		return classifier.FamilySecp256k1
	}
	return classifier.FamilyUnknown
}

// requiredDeps names the cell-deps a script's family needs present for
// on-chain validation.
func (e *Engine) requiredDeps(script wire.Script) []wire.CellDep {
	if entry, ok := e.Registry.LookupByCodeHash(script.CodeHash); ok {
		return []wire.CellDep{entry.Dep}
	}
	if plugin, ok := e.Registry.PluginFor(script); ok {
		var deps []wire.CellDep
		for _, name := range plugin.RequiredDeps(script) {
			if entry, ok := e.Registry.Lookup(name); ok {
				deps = append(deps, entry.Dep)
			}
		}
		return deps
	}
	return nil
}

// remainingCandidates returns the subset of all not already present in
// used, keyed by OutPoint — the payer-capacity candidates still available
// to the balancer after a planner operation's own preliminary selection.
func remainingCandidates(all, used []wire.Cell) []wire.Cell {
	if len(used) == 0 {
		return all
	}
	usedSet := make(map[wire.OutPoint]struct{}, len(used))
	for _, c := range used {
		usedSet[c.OutPoint] = struct{}{}
	}
	out := make([]wire.Cell, 0, len(all))
	for _, c := range all {
		if _, ok := usedSet[c.OutPoint]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// toCandidateCells adapts plain cells into balancer.CandidateCell, sorted
// implicitly by Balance itself.
func toCandidateCells(cells []wire.Cell) []balancer.CandidateCell {
	out := make([]balancer.CandidateCell, len(cells))
	for i, c := range cells {
		out[i] = balancer.CandidateCell{Cell: c}
	}
	return out
}

// findFoldTarget returns the index of the first output already appended to
// comp whose lock equals payerLock, the spec §4.6 fold-priority candidate.
// Returns nil when no such output exists (the caller's operation produced
// no payer-owned output of its own to fold a sub-minimum remainder into).
func findFoldTarget(comp *planner.Components, payerLock wire.Script) *balancer.FoldTarget {
	for i, o := range comp.Outputs {
		if o.Lock.Equal(payerLock) {
			return &balancer.FoldTarget{OutputIndex: i}
		}
	}
	return nil
}

// buildStep is what each public build operation supplies to runFeeLoop:
// given an assumed fee, it returns a fresh preliminary Components, the
// payer-owned bare-capacity cells still available to the balancer (already
// filtered against whatever the step itself consumed), and the change lock
// and fold target the balancer should use.
type buildStep func(fee uint64) (comp *planner.Components, payerCandidates []wire.Cell, changeLock wire.Script, foldTarget *balancer.FoldTarget, err error)

// runFeeLoop drives step through feeloop.Run: each iteration builds fresh
// components, hands the capacity shortfall to balancer.Balance, renders the
// transaction, assembles script groups, fills witness placeholders, and
// measures the result — the size feeloop converges against. Returns the
// final transaction and script groups once the fee fixed-point stabilizes.
func (e *Engine) runFeeLoop(op string, feeRate uint64, step buildStep) (*wire.Transaction, scriptgroup.Result, error) {
	var finalTx *wire.Transaction
	var finalGroups scriptgroup.Result

	build := func(fee uint64) (uint32, error) {
		comp, payerCandidates, changeLock, foldTarget, err := step(fee)
		if err != nil {
			return 0, err
		}

		balReq := balancer.Request{
			Params:         e.Params,
			InputCapacity:  comp.InputCapacity(),
			OutputCapacity: comp.OutputCapacity(),
			Fee:            fee,
			Candidates:     toCandidateCells(payerCandidates),
			FoldTarget:     foldTarget,
			ChangeLock:     changeLock,
		}
		result, balErr := balancer.Balance(op, balReq)
		if balErr != nil {
			return 0, balErr
		}

		for _, c := range result.ExtraInputs {
			comp.AddInput(c, 0)
		}
		if result.NewChangeOutput != nil {
			comp.AddOutput(*result.NewChangeOutput, nil)
		}
		if result.FoldedInto != nil {
			comp.Outputs[*result.FoldedInto].Capacity += result.FoldedAmount
		}

		tx := comp.Transaction()

		cellByOutPoint := make(map[wire.OutPoint]wire.Cell, len(comp.InputCells))
		for _, c := range comp.InputCells {
			cellByOutPoint[c.OutPoint] = c
		}
		resolve := func(o wire.OutPoint) (wire.Cell, bool) {
			c, ok := cellByOutPoint[o]
			return c, ok
		}

		groups := scriptgroup.Assemble(tx, resolve, e.lockFamily, e.requiredDeps)
		tx.CellDeps = scriptgroup.MergeDeps(comp.Deps, groups.CellDeps)
		scriptgroup.FillWitnessPlaceholders(tx, groups)

		finalTx = tx
		finalGroups = groups
		return uint32(tx.SerializeSize()), nil
	}

	if _, _, err := feeloop.Run(op, build, e.Params.InitEstimateFee, feeRate); err != nil {
		return nil, scriptgroup.Result{}, err
	}
	return finalTx, finalGroups, nil
}

// gatherItems resolves each item to a Filter and gathers every candidate
// cell across all of them, deduplicated by OutPoint.
func (e *Engine) gatherItems(ctx context.Context, op string, items []resolver.Item) ([]wire.Cell, error) {
	seen := make(map[wire.OutPoint]struct{})
	var all []wire.Cell
	for _, item := range items {
		filter, err := e.Resolver.Resolve(item)
		if err != nil {
			return nil, cellerrors.Wrap(op, cellerrors.InputValidation, "", err)
		}
		cells, err := e.gatherCandidates(ctx, op, filter, nil)
		if err != nil {
			return nil, err
		}
		for _, c := range cells {
			if _, ok := seen[c.OutPoint]; ok {
				continue
			}
			seen[c.OutPoint] = struct{}{}
			all = append(all, c)
		}
	}
	return all, nil
}

// defaultChangeLock derives the lock a change output should use when a
// build payload omits an explicit change script: an Identity's first
// expanded lock (its secp256k1 script) or an Address's decoded script
// (spec §4.6: "payer's first Item if change address absent").
func (e *Engine) defaultChangeLock(op string, item resolver.Item) (wire.Script, error) {
	switch item.Kind {
	case resolver.ItemKindIdentity:
		scripts := identity.Expand(e.Registry)(item.Identity)
		if len(scripts) == 0 {
			return wire.Script{}, cellerrors.New(op, cellerrors.Internal, "", "identity has no derivable lock script")
		}
		return scripts[0], nil
	case resolver.ItemKindAddress:
		_, script, err := address.Decode(item.Address)
		if err != nil {
			return wire.Script{}, err
		}
		return script, nil
	default:
		return wire.Script{}, cellerrors.New(op, cellerrors.InputValidation, "", "a record item cannot serve as a change payer")
	}
}

// itemIdentity recovers the Identity an Item acts as, for classifying
// candidate cells against. A Record item carries no identity and returns
// the zero value, which classifies as spendable by nobody.
func itemIdentity(item resolver.Item) identity.Identity {
	switch item.Kind {
	case resolver.ItemKindIdentity:
		return item.Identity
	case resolver.ItemKindAddress:
		if _, script, err := address.Decode(item.Address); err == nil {
			if id, ok := identity.FromLock(script); ok {
				return id
			}
		}
	}
	return identity.Identity{}
}

// noBalanceStep is the DAO-claim/adjust-account-collect counterpart of
// buildStep: these two operations deduct fee directly from their own
// merged output's capacity rather than asking the balancer to pull extra
// inputs or open change (spec §4.5.6, §4.5.9), so there is nothing for the
// balancer to do.
type noBalanceStep func(fee uint64) (*planner.Components, error)

// runFeeLoopNoBalance is runFeeLoop without the balancer pass: each
// iteration's Components already closes its own capacity equation by
// construction.
func (e *Engine) runFeeLoopNoBalance(op string, feeRate uint64, step noBalanceStep) (*wire.Transaction, scriptgroup.Result, error) {
	var finalTx *wire.Transaction
	var finalGroups scriptgroup.Result

	build := func(fee uint64) (uint32, error) {
		comp, err := step(fee)
		if err != nil {
			return 0, err
		}

		tx := comp.Transaction()

		cellByOutPoint := make(map[wire.OutPoint]wire.Cell, len(comp.InputCells))
		for _, c := range comp.InputCells {
			cellByOutPoint[c.OutPoint] = c
		}
		resolve := func(o wire.OutPoint) (wire.Cell, bool) {
			c, ok := cellByOutPoint[o]
			return c, ok
		}

		groups := scriptgroup.Assemble(tx, resolve, e.lockFamily, e.requiredDeps)
		tx.CellDeps = scriptgroup.MergeDeps(comp.Deps, groups.CellDeps)
		scriptgroup.FillWitnessPlaceholders(tx, groups)

		finalTx = tx
		finalGroups = groups
		return uint32(tx.SerializeSize()), nil
	}

	if _, _, err := feeloop.Run(op, build, e.Params.InitEstimateFee, feeRate); err != nil {
		return nil, scriptgroup.Result{}, err
	}
	return finalTx, finalGroups, nil
}

// resolveFeeRate returns rate if non-nil, else the engine's configured
// default (spec §4.9: "fee_rate, default DEFAULT_FEE_RATE").
func (e *Engine) resolveFeeRate(rate *uint64) uint64 {
	if rate != nil {
		return *rate
	}
	return e.Params.DefaultFeeRate
}
