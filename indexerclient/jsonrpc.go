// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"

	"github.com/toole-brendan/shell-mercury/cellerrors"
	"github.com/toole-brendan/shell-mercury/wire"
)

// log is this package's logger, set via UseLogger; defaults to disabled,
// matching the teacher's package-level btclog.Logger convention (e.g.
// mining/randomx/miner.go).
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by JSONRPCClient.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// JSONRPCClient is the production Client implementation: a plain JSON-RPC
// 2.0 client over HTTP, following the same request/marshal/POST/
// unmarshal shape as the teacher's liquidity/attestor.go AttestorClient,
// generalized from its fixed attestation envelope to arbitrary JSON-RPC
// method calls.
type JSONRPCClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewJSONRPCClient returns a Client that calls the indexer's JSON-RPC
// endpoint, bounding every call to timeout (spec §5: "Timeouts are applied
// at each indexer call with a default per-call budget").
func NewJSONRPCClient(endpoint string, timeout time.Duration) *JSONRPCClient {
	return &JSONRPCClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure,
			fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure,
			fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonTimeout, err)
		}
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure,
			fmt.Errorf("read response: %w", err))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure,
			fmt.Errorf("unmarshal response: %w", err))
	}
	if rpcResp.Error != nil {
		return cellerrors.New(method, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure,
			fmt.Sprintf("indexer returned error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonIndexerFailure,
			fmt.Errorf("unmarshal result: %w", err))
	}
	log.Tracef("indexerclient: %s ok", method)
	return nil
}

func (c *JSONRPCClient) GetLiveCells(ctx context.Context, q LiveCellQuery) (Page[wire.Cell], error) {
	var page Page[wire.Cell]
	err := c.call(ctx, "get_live_cells", q, &page)
	return page, err
}

func (c *JSONRPCClient) GetHistoricalLiveCells(ctx context.Context, lockHashes, typeHashes []chainhash.Hash, tip uint64, outPoint *wire.OutPoint, p Pagination) (Page[wire.Cell], error) {
	var page Page[wire.Cell]
	params := struct {
		LockHashes []chainhash.Hash `json:"lock_hashes"`
		TypeHashes []chainhash.Hash `json:"type_hashes"`
		Tip        uint64           `json:"tip"`
		OutPoint   *wire.OutPoint   `json:"out_point,omitempty"`
		Pagination Pagination       `json:"pagination"`
	}{lockHashes, typeHashes, tip, outPoint, p}
	err := c.call(ctx, "get_historical_live_cells", params, &page)
	return page, err
}

func (c *JSONRPCClient) GetTransactions(ctx context.Context, lockHashes, typeHashes []chainhash.Hash, p Pagination) (Page[TxWrapper], error) {
	var page Page[TxWrapper]
	params := struct {
		LockHashes []chainhash.Hash `json:"lock_hashes"`
		TypeHashes []chainhash.Hash `json:"type_hashes"`
		Pagination Pagination       `json:"pagination"`
	}{lockHashes, typeHashes, p}
	err := c.call(ctx, "get_transactions", params, &page)
	return page, err
}

func (c *JSONRPCClient) GetBlock(ctx context.Context, hash *chainhash.Hash, number *uint64) (Block, error) {
	var block Block
	params := struct {
		Hash   *chainhash.Hash `json:"hash,omitempty"`
		Number *uint64         `json:"number,omitempty"`
	}{hash, number}
	err := c.call(ctx, "get_block", params, &block)
	return block, err
}

func (c *JSONRPCClient) GetScriptsByPartialArg(ctx context.Context, q PartialArgQuery) ([]wire.Script, error) {
	var scripts []wire.Script
	err := c.call(ctx, "get_scripts_by_partial_arg", q, &scripts)
	return scripts, err
}

func (c *JSONRPCClient) RegisterAddresses(ctx context.Context, regs []AddressRegistration) ([]chainhash.Hash, error) {
	var hashes []chainhash.Hash
	err := c.call(ctx, "register_addresses", regs, &hashes)
	return hashes, err
}

func (c *JSONRPCClient) GetTip(ctx context.Context) (uint64, chainhash.Hash, error) {
	var result struct {
		Number uint64         `json:"number"`
		Hash   chainhash.Hash `json:"hash"`
	}
	err := c.call(ctx, "get_tip", nil, &result)
	return result.Number, result.Hash, err
}
