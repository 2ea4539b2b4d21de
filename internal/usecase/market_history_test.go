package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auri/internal/service/birdeye"
	"auri/internal/service/coingecko"
	"auri/internal/service/ratelimit"
	"auri/pkg/cache"
	"auri/pkg/logger"
)

type fakeCharts struct {
	points map[string][]coingecko.Point
	err    error
	calls  int
}

func (c *fakeCharts) MarketChart(ctx context.Context, coinID string, days int) ([]coingecko.Point, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.points[coinID], nil
}

type fakeHistory struct {
	points map[string][]birdeye.HistoryPoint
	err    error
	calls  int
}

func (h *fakeHistory) HistoryPrice(ctx context.Context, mint, granularity string, from, to time.Time) ([]birdeye.HistoryPoint, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return h.points[mint], nil
}

func day(d int) time.Time {
	return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
}

func newHistoryUsecase(charts *fakeCharts, history *fakeHistory) *PriceHistory {
	return NewPriceHistory(
		PriceHistoryConfig{
			CacheTTL: 15 * time.Minute,
			SolMint:  solMint,
			MsolMint: msolMint,
		},
		charts, history,
		ratelimit.NewLimiter(1, 0.2),
		cache.NewMemoryCache(),
		nil, logger.New(),
	)
}

func TestHistoryMergesCoingecko(t *testing.T) {
	charts := &fakeCharts{points: map[string][]coingecko.Point{
		coingecko.CoinSolana: {
			{Time: day(1), Price: 150.123},
			{Time: day(2), Price: 151.5},
		},
		coingecko.CoinMarinadeSOL: {
			{Time: day(1), Price: 180.456},
			{Time: day(2), Price: 181.0},
		},
	}}
	p := newHistoryUsecase(charts, &fakeHistory{})

	resp, err := p.History(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Aug 1", resp.Data[0].Date)
	assert.Equal(t, 150.12, resp.Data[0].SOL)
	assert.Equal(t, 180.46, resp.Data[0].MSOL)
}

func TestHistoryFallsBackToBirdeye(t *testing.T) {
	charts := &fakeCharts{err: errors.New("coingecko down")}
	history := &fakeHistory{points: map[string][]birdeye.HistoryPoint{
		solMint:  {{Time: day(3), Value: 140}},
		msolMint: {{Time: day(3), Value: 170}},
	}}
	p := newHistoryUsecase(charts, history)

	resp, err := p.History(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Aug 3", resp.Data[0].Date)
	assert.Equal(t, 140.0, resp.Data[0].SOL)
	assert.Equal(t, 2, history.calls)
}

func TestHistoryThrottleServesLastGood(t *testing.T) {
	charts := &fakeCharts{err: errors.New("coingecko down")}
	history := &fakeHistory{points: map[string][]birdeye.HistoryPoint{
		solMint:  {{Time: day(3), Value: 140}},
		msolMint: {{Time: day(3), Value: 170}},
	}}
	p := newHistoryUsecase(charts, history)

	first, err := p.History(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, first.Data, 1)

	// Different day span misses the cache; the birdeye bucket is empty so
	// the previous payload is served.
	second, err := p.History(context.Background(), 14)
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 2, history.calls, "throttled request must not hit birdeye")
}

func TestHistoryThrottledWithoutLastGoodFails(t *testing.T) {
	charts := &fakeCharts{err: errors.New("coingecko down")}
	history := &fakeHistory{err: errors.New("birdeye down")}
	p := newHistoryUsecase(charts, history)

	_, err := p.History(context.Background(), 7)
	require.Error(t, err)
}

func TestHistoryCacheHitSkipsFetch(t *testing.T) {
	charts := &fakeCharts{points: map[string][]coingecko.Point{
		coingecko.CoinSolana:     {{Time: day(1), Price: 150}},
		coingecko.CoinMarinadeSOL: {{Time: day(1), Price: 180}},
	}}
	p := newHistoryUsecase(charts, &fakeHistory{})

	_, err := p.History(context.Background(), 7)
	require.NoError(t, err)
	calls := charts.calls

	_, err = p.History(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, calls, charts.calls)
}

func TestHistoryClampsDays(t *testing.T) {
	charts := &fakeCharts{points: map[string][]coingecko.Point{
		coingecko.CoinSolana:     {{Time: day(1), Price: 150}},
		coingecko.CoinMarinadeSOL: {{Time: day(1), Price: 180}},
	}}
	p := newHistoryUsecase(charts, &fakeHistory{})

	resp, err := p.History(context.Background(), 500)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Data)
}

func TestHistoryEmptyMergeRetriesWithOneDay(t *testing.T) {
	charts := &fakeCharts{points: map[string][]coingecko.Point{
		coingecko.CoinSolana: {{Time: day(1), Price: 150}},
		// mSOL has no overlapping day, so the first merge is empty.
		coingecko.CoinMarinadeSOL: {{Time: day(9), Price: 180}},
	}}
	p := newHistoryUsecase(charts, &fakeHistory{})

	resp, err := p.History(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.Equal(t, 4, charts.calls, "empty merge retries once with days=1")
}
