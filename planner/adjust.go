// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package planner

import (
	"math/big"

	"github.com/toole-brendan/shell-mercury/acpengine"
	"github.com/toole-brendan/shell-mercury/cellcfg"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/identity"
	"github.com/toole-brendan/shell-mercury/registry"
	"github.com/toole-brendan/shell-mercury/sudt"
	"github.com/toole-brendan/shell-mercury/wire"
)

// AdjustAccount implements spec §4.5.6: create fresh ACP cells when
// accountNumber exceeds the current count, or collect the excess into one
// merged output when it is below. currentACPs is assumed ordered as the
// indexer returns them (block_number, tx_index, output_index ascending);
// when collecting, the first toCollect cells in that order are consumed,
// matching "first one is rewritten to its normalized lock". Returns
// ok=false (no error) when accountNumber already equals current, per spec
// §4.9 ("tx or None if already at target").
func AdjustAccount(op string, reg *registry.Registry, params cellcfg.Params, id identity.Identity, sudtType wire.Script, currentACPs []wire.Cell, accountNumber int, extraCKB uint64, fromCapacityCandidates []wire.Cell, fee uint64) (comp *Components, ok bool, err error) {
	if accountNumber < 0 {
		return nil, false, cellerrors.New(op, cellerrors.InputValidation, cellerrors.ReasonInvalidAdjustAccountNumber,
			"account_number must not be negative")
	}

	current := len(currentACPs)
	if accountNumber == current {
		return nil, false, nil
	}

	comp = NewComponents()

	if accountNumber > current {
		toCreate := accountNumber - current
		var outputTotal uint64
		for i := 0; i < toCreate; i++ {
			output, data, cellErr := acpengine.NewCell(reg, params, id, sudtType, 0, extraCKB)
			if cellErr != nil {
				return nil, false, cellErr
			}
			comp.AddOutput(output, data)
			outputTotal += output.Capacity
		}

		target := outputTotal + fee
		picked, total := SelectCapacity(fromCapacityCandidates, 0, target)
		for _, c := range picked {
			comp.AddInput(c, 0)
		}
		if total < target {
			return nil, false, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
				"from cells do not cover new ACP cell capacity and fee")
		}
		log.Debugf("%s: created %d new ACP cells, account %d->%d", op, toCreate, current, accountNumber)
		return comp, true, nil
	}

	toCollect := current - accountNumber
	collecting := currentACPs[:toCollect]

	totalUDT := big.NewInt(0)
	outputs := make([]wire.CellOutput, 0, toCollect)
	for _, c := range collecting {
		totalUDT.Add(totalUDT, sudt.Decode(c.Data))
		outputs = append(outputs, c.Output)
	}

	collectingAll := accountNumber == 0
	result, collectErr := acpengine.Collect(reg, outputs, sudtType, totalUDT, collectingAll)
	if collectErr != nil {
		return nil, false, collectErr
	}
	if result.Output.Capacity < fee {
		return nil, false, cellerrors.New(op, cellerrors.Resource, cellerrors.ReasonInsufficientCapacity,
			"collected ACP capacity does not cover fee")
	}
	result.Output.Capacity -= fee

	for _, c := range collecting {
		comp.AddInput(c, 0)
	}
	comp.AddOutput(result.Output, result.Data)

	log.Debugf("%s: collected %d ACP cells, account %d->%d", op, toCollect, current, accountNumber)
	return comp, true, nil
}
