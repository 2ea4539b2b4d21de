package coingecko

import (
	"context"
	"fmt"
	"strconv"
	"time"

	httpclient "auri/pkg/http"
)

// Coin IDs used by the SOL/mSOL comparison chart.
const (
	CoinSolana      = "solana"
	CoinMarinadeSOL = "marinade-staked-sol"
)

// Point is one daily price sample.
type Point struct {
	Time  time.Time
	Price float64
}

// Client fetches daily price charts from the CoinGecko public API.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = httpclient.NewClient(httpclient.WithTimeout(d)) }
}

// NewClient creates a CoinGecko client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    httpclient.NewClient(httpclient.WithTimeout(10 * time.Second)),
		baseURL: "https://api.coingecko.com/api/v3",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// MarketChart returns up to days daily price samples for a coin ID.
func (c *Client) MarketChart(ctx context.Context, coinID string, days int) ([]Point, error) {
	var resp marketChartResponse
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, coinID),
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"days":        {strconv.Itoa(days)},
			"interval":    {"daily"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coingecko market_chart %s: %w", coinID, err)
	}

	points := make([]Point, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		points = append(points, Point{Time: time.UnixMilli(int64(p[0])).UTC(), Price: p[1]})
	}
	return points, nil
}
