package birdeye

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"auri/internal/domain/models"
	httpclient "auri/pkg/http"
	"auri/pkg/logger"
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("birdeye %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}

// Ordered synonym lists for fields upstream reports inconsistently.
// The first finite match wins.
var (
	priceChange1hKeys = []string{
		"priceChange1h", "price_change_1h", "priceChange1hPercent",
		"priceChange24h", "price_change_24h",
	}
	createdAtKeys = []string{"createdAt", "created_time", "mintTime"}
	historyTSKeys = []string{"unixTime", "time", "t", "startTime"}
	historyValKeys = []string{"value", "price", "close", "c"}
)

// HistoryPoint is one normalized price history sample.
type HistoryPoint struct {
	Time  time.Time
	Value float64
}

// Client talks to the Birdeye public API.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	log     *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithAPIKey sets the X-API-KEY header value.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = httpclient.NewClient(httpclient.WithTimeout(d)) }
}

// NewClient creates a Birdeye client.
func NewClient(log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:    httpclient.NewClient(httpclient.WithTimeout(10 * time.Second)),
		baseURL: "https://public-api.birdeye.so",
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) headers() map[string]string {
	h := map[string]string{
		"accept":  "application/json",
		"x-chain": "solana",
	}
	if c.apiKey != "" {
		h["X-API-KEY"] = c.apiKey
	}
	return h
}

// getJSON fetches endpoint and returns the payload object, unwrapping the
// optional {data: ...} envelope.
func (c *Client) getJSON(ctx context.Context, endpoint string, query map[string][]string) (map[string]interface{}, error) {
	resp, err := c.http.SendRequest(ctx, &httpclient.RequestOptions{
		Method:      httpclient.MethodGet,
		URL:         c.baseURL + endpoint,
		Headers:     c.headers(),
		QueryParams: query,
	})
	if err != nil {
		return nil, fmt.Errorf("birdeye %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("birdeye %s: read body: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Endpoint: endpoint, Status: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("birdeye %s: decode: %w", endpoint, err)
	}

	if data, ok := raw["data"].(map[string]interface{}); ok {
		return data, nil
	}
	return raw, nil
}

// MarketData returns the normalized market snapshot for a mint.
func (c *Client) MarketData(ctx context.Context, mint string) (*models.TokenMarketSnapshot, error) {
	data, err := c.getJSON(ctx, "/defi/v3/token/market-data", map[string][]string{
		"address":        {mint},
		"ui_amount_mode": {"scaled"},
	})
	if err != nil {
		return nil, err
	}

	return &models.TokenMarketSnapshot{
		Price:             firstFinite(data, "price"),
		Liquidity:         firstFinite(data, "liquidity"),
		MarketCap:         firstFinite(data, "market_cap", "marketCap", "mc"),
		FDV:               firstFinite(data, "fdv"),
		TotalSupply:       firstFinite(data, "total_supply", "totalSupply"),
		CirculatingSupply: firstFinite(data, "circulating_supply", "circulatingSupply"),
		PriceChange1h:     firstFinite(data, priceChange1hKeys...),
	}, nil
}

// CreatedAt returns the mint creation time from token metadata, or nil when
// upstream reports none.
func (c *Client) CreatedAt(ctx context.Context, mint string) (*time.Time, error) {
	data, err := c.getJSON(ctx, "/defi/v3/token/meta-data/single", map[string][]string{
		"address": {mint},
	})
	if err != nil {
		return nil, err
	}

	v := firstFinite(data, createdAtKeys...)
	if v == nil {
		return nil, nil
	}
	t := fromEpoch(*v)
	return &t, nil
}

// HistoryPrice returns price history for a mint. granularity is a Birdeye
// type string such as "1d" or "1m".
func (c *Client) HistoryPrice(ctx context.Context, mint, granularity string, from, to time.Time) ([]HistoryPoint, error) {
	data, err := c.getJSON(ctx, "/defi/history_price", map[string][]string{
		"address":        {mint},
		"address_type":   {"token"},
		"type":           {granularity},
		"time_from":      {strconv.FormatInt(from.Unix(), 10)},
		"time_to":        {strconv.FormatInt(to.Unix(), 10)},
		"ui_amount_mode": {"raw"},
	})
	if err != nil {
		return nil, err
	}

	items, _ := data["items"].([]interface{})
	points := make([]HistoryPoint, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		ts := firstFinite(obj, historyTSKeys...)
		val := firstFinite(obj, historyValKeys...)
		if ts == nil || val == nil {
			continue
		}
		points = append(points, HistoryPoint{Time: fromEpoch(*ts), Value: *val})
	}
	return points, nil
}

// firstFinite returns the first finite numeric value among the named keys.
// Genuinely numeric values win over numeric strings regardless of key order;
// string coercion is a second pass for upstreams that quote their numbers.
func firstFinite(obj map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		if f, ok := finiteNumber(obj[key]); ok {
			out := f
			return &out
		}
	}
	for _, key := range keys {
		s, ok := obj[key].(string)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out := f
		return &out
	}
	return nil
}

func finiteNumber(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// fromEpoch interprets an epoch number as seconds or milliseconds.
func fromEpoch(v float64) time.Time {
	if v > 1e12 {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
