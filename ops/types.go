// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ops implements the Public Operations (spec §4.9): the nine
// external entry points that compose the Asset Resolver, Live-Cell Source,
// Transfer Planner, Capacity Balancer, Fee Fixed-Point, and Script-Group
// Assembler into one build call. Request/response types follow the
// teacher's Cmd/Result naming convention (btcjson/mobilecmds.go).
package ops

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/toole-brendan/shell-mercury/resolver"
	"github.com/toole-brendan/shell-mercury/scriptgroup"
	"github.com/toole-brendan/shell-mercury/wire"
)

// Asset is the tagged CKB | UDT(sudt_hash) variant of spec §3.
type Asset struct {
	Native   bool
	SUDTType wire.Script // valid when !Native
}

// Mode selects which of the Transfer Planner's native/UDT variants
// build_transfer should run (spec §4.5.1-4.5.5).
type Mode uint8

const (
	ModeHoldByFrom Mode = iota
	ModeHoldByTo
	ModePayWithAcp
)

// Receiver is one `to` entry: a resolved lock script and the amount it
// should receive (native shannons or UDT units depending on Asset).
type Receiver struct {
	Lock   wire.Script
	Amount uint64
}

// SinceConfig carries an optional explicit Since constraint a caller wants
// applied to the from-side inputs of a native transfer (spec §4.5.1).
type SinceConfig struct {
	Flag   wire.SinceFlag
	Metric wire.SinceMetric
	Value  uint64
}

// Encode packs a SinceConfig into the raw Since value a CellInput carries.
func (s SinceConfig) Encode() uint64 {
	return wire.EncodeSince(s.Flag, s.Metric, s.Value)
}

// BuildTransferCmd is build_transfer's request (spec §4.9).
type BuildTransferCmd struct {
	Asset   Asset
	From    []resolver.Item
	To      []Receiver
	Mode    Mode
	PayFee  *resolver.Item
	Change  *wire.Script
	FeeRate *uint64
	Since   *SinceConfig
}

// BuildTransferResult is build_transfer's response.
type BuildTransferResult struct {
	Tx           *wire.Transaction
	ScriptGroups scriptgroup.Result
}

// BuildSimpleTransferCmd is build_simple_transfer's request: like
// BuildTransferCmd but From is plain addresses and Mode is auto-chosen:
// HoldByTo when To has exactly one entry and that recipient already owns a
// matching cell for asset, else HoldByFrom/cheque. A request with several
// recipients always uses HoldByFrom/cheque, even when some of them own an
// ACP cell.
type BuildSimpleTransferCmd struct {
	Asset   Asset
	From    []string
	To      []Receiver
	Change  *wire.Script
	FeeRate *uint64
	Since   *SinceConfig
}

// BuildAdjustAccountCmd is build_adjust_account's request. From supplies
// additional bare-capacity Items to fund newly created ACP cells beyond
// what Item's own capacity candidates cover; it defaults to []Item{Item}
// when empty.
type BuildAdjustAccountCmd struct {
	Item          resolver.Item
	From          []resolver.Item
	Asset         Asset
	AccountNumber *int
	ExtraCKB      *uint64
	FeeRate       *uint64
}

// BuildAdjustAccountResult is build_adjust_account's response; Tx is nil
// when the account is already at the requested target (spec §4.9: "tx or
// None if already at target").
type BuildAdjustAccountResult struct {
	Tx           *wire.Transaction
	ScriptGroups scriptgroup.Result
}

// BuildDAODepositCmd is build_dao_deposit's request.
type BuildDAODepositCmd struct {
	From    resolver.Item
	Amount  uint64
	To      *wire.Script
	FeeRate *uint64
}

// BuildDAOWithdrawCmd is build_dao_withdraw's request.
type BuildDAOWithdrawCmd struct {
	From    resolver.Item
	PayFee  *resolver.Item
	FeeRate *uint64
}

// BuildDAOClaimCmd is build_dao_claim's request.
type BuildDAOClaimCmd struct {
	From    resolver.Item
	To      *wire.Script
	FeeRate *uint64
}

// BuildResult is the common response shape for build_dao_deposit,
// build_dao_withdraw, and build_dao_claim.
type BuildResult struct {
	Tx           *wire.Transaction
	ScriptGroups scriptgroup.Result
}

// GetBalanceCmd is get_balance's request.
type GetBalanceCmd struct {
	Item       resolver.Item
	AssetInfos []Asset
	TipBlock   *uint64
}

// Balance is one (ownership, asset) balance row of spec §3 — all integer
// amounts are carried as strings in the public surface.
type Balance struct {
	Asset     Asset
	Free      string
	Occupied  string
	Frozen    string
	Claimable string
}

// GetBalanceResult is get_balance's response.
type GetBalanceResult struct {
	Balances    []Balance
	BlockNumber uint64
}

// GetAccountInfoCmd is get_account_info's request.
type GetAccountInfoCmd struct {
	Item      resolver.Item
	AssetInfo Asset
}

// GetAccountInfoResult is get_account_info's response.
type GetAccountInfoResult struct {
	AccountNumber  int
	AccountAddress string
	AccountType    string
}

// RegisterAddressesCmd is register_addresses' request.
type RegisterAddressesCmd struct {
	Addresses []string
}

// RegisterAddressesResult is register_addresses' response.
type RegisterAddressesResult struct {
	LockHashes []chainhash.Hash
}
