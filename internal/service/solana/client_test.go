package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auri/pkg/logger"
)

func rpcServer(t *testing.T, handler func(method string, params []interface{}) (string, int)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		body, status := handler(req.Method, req.Params)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHeldMintsFiltersZeroBalances(t *testing.T) {
	srv := rpcServer(t, func(method string, params []interface{}) (string, int) {
		assert.Equal(t, "getTokenAccountsByOwner", method)
		return `{"jsonrpc":"2.0","id":1,"result":{"value":[
			{"account":{"data":{"parsed":{"info":{"mint":"mintA","tokenAmount":{"uiAmount":5}}}}}},
			{"account":{"data":{"parsed":{"info":{"mint":"mintB","tokenAmount":{"uiAmount":0}}}}}},
			{"account":{"data":{"parsed":{"info":{"mint":"mintC","tokenAmount":{"uiAmount":0.001}}}}}}
		]}}`, http.StatusOK
	})

	c := NewClient(srv.URL, logger.New())
	mints, err := c.HeldMints(context.Background(), "wallet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"mintA", "mintC"}, mints)
}

func TestCallRetriesOnRateLimit(t *testing.T) {
	var calls int32
	srv := rpcServer(t, func(method string, params []interface{}) (string, int) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return `rate limited`, http.StatusTooManyRequests
		}
		return `{"jsonrpc":"2.0","id":1,"result":{"value":[]}}`, http.StatusOK
	})

	c := NewClient(srv.URL, logger.New(), WithMaxRetries(2))
	mints, err := c.HeldMints(context.Background(), "wallet1")
	require.NoError(t, err)
	assert.Empty(t, mints)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCallReturnsRPCError(t *testing.T) {
	srv := rpcServer(t, func(method string, params []interface{}) (string, int) {
		return `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`, http.StatusOK
	})

	c := NewClient(srv.URL, logger.New())
	_, err := c.HeldMints(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestTop10HolderPercent(t *testing.T) {
	srv := rpcServer(t, func(method string, params []interface{}) (string, int) {
		switch method {
		case "getTokenLargestAccounts":
			return `{"jsonrpc":"2.0","id":1,"result":{"value":[
				{"uiAmount":300},{"uiAmount":200},{"uiAmount":100}
			]}}`, http.StatusOK
		case "getTokenSupply":
			return `{"jsonrpc":"2.0","id":1,"result":{"value":{"uiAmount":1000}}}`, http.StatusOK
		}
		t.Fatalf("unexpected method %s", method)
		return "", http.StatusInternalServerError
	})

	c := NewClient(srv.URL, logger.New())
	pct, err := c.Top10HolderPercent(context.Background(), "mintA")
	require.NoError(t, err)
	require.NotNil(t, pct)
	assert.InDelta(t, 60.0, *pct, 1e-9)
}

func TestTop10HolderPercentUnknownSupply(t *testing.T) {
	srv := rpcServer(t, func(method string, params []interface{}) (string, int) {
		switch method {
		case "getTokenLargestAccounts":
			return `{"jsonrpc":"2.0","id":1,"result":{"value":[{"uiAmount":300}]}}`, http.StatusOK
		case "getTokenSupply":
			return `{"jsonrpc":"2.0","id":1,"result":{"value":{"uiAmount":null}}}`, http.StatusOK
		}
		return "", http.StatusInternalServerError
	})

	c := NewClient(srv.URL, logger.New())
	pct, err := c.Top10HolderPercent(context.Background(), "mintA")
	require.NoError(t, err)
	assert.Nil(t, pct)
}
