// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ops

import (
	"context"

	"github.com/toole-brendan/shell-mercury/address"
	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/indexerclient"
)

// RegisterAddresses implements register_addresses (spec §4.9): decodes each
// address to its lock script, derives the script hash, and hands the
// (hash, address) pairs to the indexer so its address-book can answer
// future queries by either form.
func (e *Engine) RegisterAddresses(ctx context.Context, cmd RegisterAddressesCmd) (*RegisterAddressesResult, error) {
	const op = "register_addresses"

	regs := make([]indexerclient.AddressRegistration, len(cmd.Addresses))
	for i, addr := range cmd.Addresses {
		_, script, err := address.Decode(addr)
		if err != nil {
			return nil, cellerrors.Wrap(op, cellerrors.InputValidation, cellerrors.ReasonUnsupportAddress, err)
		}
		regs[i] = indexerclient.AddressRegistration{LockHash: script.Hash(), Address: addr}
	}

	hashes, err := e.Indexer.RegisterAddresses(ctx, regs)
	if err != nil {
		return nil, cellerrors.Wrap(op, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure, err)
	}
	return &RegisterAddressesResult{LockHashes: hashes}, nil
}
