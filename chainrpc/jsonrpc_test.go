package chainrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRPCClientGetTipHeaderDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "get_tip_header", req.Method)

		resp := rpcResponse{Result: json.RawMessage(`{"number":100,"epoch":5}`)}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := NewJSONRPCClient(srv.URL, time.Second)
	header, err := client.GetTipHeader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), header.Number)
	assert.Equal(t, uint64(5), header.Epoch)
}

func TestJSONRPCClientPropagatesNodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := rpcResponse{Error: &rpcError{Code: -32000, Message: "boom"}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := NewJSONRPCClient(srv.URL, time.Second)
	_, err := client.GetTipHeader(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestJSONRPCClientWrapsUnreachableEndpoint(t *testing.T) {
	client := NewJSONRPCClient("http://127.0.0.1:0", 50*time.Millisecond)
	_, err := client.GetTipHeader(context.Background())
	assert.Error(t, err)
}
