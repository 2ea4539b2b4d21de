package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"auri/pkg/logger"
)

// TokenProgramID is the SPL token program account.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

const (
	defaultMaxRetries = 3
	baseBackoff       = 500 * time.Millisecond
)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client is a minimal Solana JSON-RPC client.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxRetries int
	log        *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxRetries sets the retry budget per call.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient creates a client for the given RPC endpoint.
func NewClient(endpoint string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: defaultMaxRetries,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call performs one JSON-RPC method call with bounded retries. Rate-limit
// responses and transport errors back off exponentially.
func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", method, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%s: read body: %w", method, err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("%s: rate limited", method)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%s: status %d", method, resp.StatusCode)
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(body, &rpcResp); err != nil {
			lastErr = fmt.Errorf("%s: decode: %w", method, err)
			continue
		}
		if rpcResp.Error != nil {
			return fmt.Errorf("%s: %w", method, rpcResp.Error)
		}

		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
		return nil
	}

	return fmt.Errorf("%s failed after %d attempts: %w", method, c.maxRetries+1, lastErr)
}

type tokenAccountsResult struct {
	Value []struct {
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						Mint        string `json:"mint"`
						TokenAmount struct {
							UIAmount *float64 `json:"uiAmount"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// HeldMints returns the mints of token accounts the wallet holds with a
// positive balance, in account order.
func (c *Client) HeldMints(ctx context.Context, wallet string) ([]string, error) {
	var res tokenAccountsResult
	err := c.call(ctx, "getTokenAccountsByOwner", []interface{}{
		wallet,
		map[string]string{"programId": TokenProgramID},
		map[string]string{"encoding": "jsonParsed"},
	}, &res)
	if err != nil {
		return nil, err
	}

	mints := make([]string, 0, len(res.Value))
	for _, acc := range res.Value {
		info := acc.Account.Data.Parsed.Info
		if info.Mint == "" || info.TokenAmount.UIAmount == nil || *info.TokenAmount.UIAmount <= 0 {
			continue
		}
		mints = append(mints, info.Mint)
	}
	return mints, nil
}

type largestAccountsResult struct {
	Value []struct {
		UIAmount *float64 `json:"uiAmount"`
	} `json:"value"`
}

type tokenSupplyResult struct {
	Value struct {
		UIAmount *float64 `json:"uiAmount"`
	} `json:"value"`
}

// Top10HolderPercent computes the share of supply held by the ten largest
// token accounts. Returns nil when supply is unknown or zero.
func (c *Client) Top10HolderPercent(ctx context.Context, mint string) (*float64, error) {
	var largest largestAccountsResult
	if err := c.call(ctx, "getTokenLargestAccounts", []interface{}{mint}, &largest); err != nil {
		return nil, err
	}

	var supply tokenSupplyResult
	if err := c.call(ctx, "getTokenSupply", []interface{}{mint}, &supply); err != nil {
		return nil, err
	}
	if supply.Value.UIAmount == nil || *supply.Value.UIAmount <= 0 {
		return nil, nil
	}

	var top float64
	for i, acc := range largest.Value {
		if i >= 10 {
			break
		}
		if acc.UIAmount != nil {
			top += *acc.UIAmount
		}
	}

	pct := top / *supply.Value.UIAmount * 100
	return &pct, nil
}
