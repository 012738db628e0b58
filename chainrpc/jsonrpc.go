// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainrpc

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

// log is this package's logger, set via UseLogger.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by JSONRPCClient.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// JSONRPCClient is the production Client implementation, grounded in the
// same request/marshal/POST/unmarshal shape as the teacher's
// liquidity/attestor.go AttestorClient.
type JSONRPCClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewJSONRPCClient returns a Client that calls a chain node's JSON-RPC
// endpoint, bounding every call to timeout.
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
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure,
			fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure,
			fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonTimeout, err)
		}
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure,
			fmt.Errorf("read response: %w", err))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure,
			fmt.Errorf("unmarshal response: %w", err))
	}
	if rpcResp.Error != nil {
		return cellerrors.New(method, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure,
			fmt.Sprintf("node returned error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return cellerrors.Wrap(method, cellerrors.Infrastructure, cellerrors.ReasonChainRPCFailure,
			fmt.Errorf("unmarshal result: %w", err))
	}
	log.Tracef("chainrpc: %s ok", method)
	return nil
}

func (c *JSONRPCClient) GetTransaction(ctx context.Context, hash chainhash.Hash) (wire.Transaction, Header, error) {
	var result struct {
		Transaction wire.Transaction `json:"transaction"`
		Header      Header           `json:"header"`
	}
	params := struct {
		Hash chainhash.Hash `json:"hash"`
	}{hash}
	err := c.call(ctx, "get_transaction", params, &result)
	return result.Transaction, result.Header, err
}

func (c *JSONRPCClient) GetHeaderByNumber(ctx context.Context, number uint64) (Header, error) {
	var header Header
	params := struct {
		Number uint64 `json:"number"`
	}{number}
	err := c.call(ctx, "get_header_by_number", params, &header)
	return header, err
}

func (c *JSONRPCClient) GetHeaderByHash(ctx context.Context, hash chainhash.Hash) (Header, error) {
	var header Header
	params := struct {
		Hash chainhash.Hash `json:"hash"`
	}{hash}
	err := c.call(ctx, "get_header", params, &header)
	return header, err
}

func (c *JSONRPCClient) GetEpochByNumber(ctx context.Context, epochNumber uint64) (Epoch, error) {
	var epoch Epoch
	params := struct {
		Number uint64 `json:"number"`
	}{epochNumber}
	err := c.call(ctx, "get_epoch_by_number", params, &epoch)
	return epoch, err
}

func (c *JSONRPCClient) GetTipHeader(ctx context.Context) (Header, error) {
	var header Header
	err := c.call(ctx, "get_tip_header", nil, &header)
	return header, err
}

var _ Client = (*JSONRPCClient)(nil)
