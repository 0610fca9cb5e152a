package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcStub 固定应答的 JSON-RPC 服务，按 method 返回预置 result
func rpcStub(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     any    `json:"id"`
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := results[req.Method]
		require.True(t, ok, "unexpected method %s", req.Method)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}))
	}))
}

func TestLatestBlockhashFieldMapping(t *testing.T) {
	srv := rpcStub(t, map[string]any{
		"getLatestBlockhash": map[string]any{
			"context": map[string]any{"slot": 100},
			"value": map[string]any{
				"blockhash":            "J7rBdM6AecPDEZp8aPq5iPSNKVkU5Q76F3oAV4eW5wsW",
				"lastValidBlockHeight": uint64(3090),
			},
		},
	})
	defer srv.Close()

	c := NewRpcClient(srv.URL)
	bh, err := c.LatestBlockhash(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "J7rBdM6AecPDEZp8aPq5iPSNKVkU5Q76F3oAV4eW5wsW", bh.Hash)
	assert.Equal(t, uint64(3090), bh.LastValidBlockHeight)
}
