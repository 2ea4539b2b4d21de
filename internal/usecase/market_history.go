package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"auri/internal/domain/models"
	"auri/internal/service/birdeye"
	"auri/internal/service/coingecko"
	"auri/internal/service/ratelimit"
	"auri/pkg/cache"
	"auri/pkg/logger"
	"auri/pkg/metrics"
)

const (
	historyCachePrefix = "history:sol-msol"
	historyThrottleKey = "birdeye-history"

	minHistoryDays = 1
	maxHistoryDays = 30
)

// ChartSource provides daily close prices by coin ID.
type ChartSource interface {
	MarketChart(ctx context.Context, coinID string, days int) ([]coingecko.Point, error)
}

// HistorySource provides price history by mint.
type HistorySource interface {
	HistoryPrice(ctx context.Context, mint, granularity string, from, to time.Time) ([]birdeye.HistoryPoint, error)
}

// PriceHistoryConfig holds chart endpoint behavior.
type PriceHistoryConfig struct {
	CacheTTL time.Duration
	SolMint  string
	MsolMint string
}

// PriceHistory serves the merged SOL/mSOL daily chart. CoinGecko is the
// primary source; Birdeye is the fallback, throttled to one fetch per
// refill interval with the last known good payload served while throttled.
type PriceHistory struct {
	cfg      PriceHistoryConfig
	charts   ChartSource
	history  HistorySource
	limiter  *ratelimit.Limiter
	cache    cache.Service
	recorder *metrics.Recorder
	log      *logger.Logger

	mu       sync.Mutex
	lastGood *models.PriceHistoryResponse
}

// NewPriceHistory creates the use case.
func NewPriceHistory(
	cfg PriceHistoryConfig,
	charts ChartSource,
	history HistorySource,
	limiter *ratelimit.Limiter,
	cacheSvc cache.Service,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *PriceHistory {
	return &PriceHistory{
		cfg:      cfg,
		charts:   charts,
		history:  history,
		limiter:  limiter,
		cache:    cacheSvc,
		recorder: recorder,
		log:      log,
	}
}

// History returns the merged chart for the requested day span.
func (p *PriceHistory) History(ctx context.Context, days int) (*models.PriceHistoryResponse, error) {
	if days < minHistoryDays {
		days = minHistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	key := cache.GenerateKeyWithParams(historyCachePrefix, days)
	var cached models.PriceHistoryResponse
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		p.recorder.CacheLookup("hit")
		return &cached, nil
	}
	p.recorder.CacheLookup("miss")

	points, err := p.fetch(ctx, days)
	if err == nil && len(points) == 0 && days != 1 {
		points, err = p.fetch(ctx, 1)
	}
	if err != nil {
		if lg := p.lastGoodCopy(); lg != nil {
			p.log.Warn("price history fetch failed, serving last known good", logger.Error(err))
			return lg, nil
		}
		return nil, err
	}

	resp := &models.PriceHistoryResponse{Data: points, TS: time.Now().UnixMilli()}
	if err := p.cache.Set(ctx, key, resp, p.cfg.CacheTTL); err != nil {
		p.log.Warn("history cache write failed", logger.Error(err))
	}
	p.setLastGood(resp)
	return resp, nil
}

func (p *PriceHistory) fetch(ctx context.Context, days int) ([]models.PricePoint, error) {
	points, err := p.fetchCoingecko(ctx, days)
	if err == nil {
		return points, nil
	}
	p.recorder.UpstreamError("coingecko")
	p.log.Warn("coingecko fetch failed, trying birdeye", logger.Error(err))
	return p.fetchBirdeye(ctx, days)
}

func (p *PriceHistory) fetchCoingecko(ctx context.Context, days int) ([]models.PricePoint, error) {
	sol, err := p.charts.MarketChart(ctx, coingecko.CoinSolana, days)
	if err != nil {
		return nil, err
	}
	msol, err := p.charts.MarketChart(ctx, coingecko.CoinMarinadeSOL, days)
	if err != nil {
		return nil, err
	}

	msolByDay := make(map[string]float64, len(msol))
	for _, pt := range msol {
		msolByDay[dayLabel(pt.Time)] = pt.Price
	}

	merged := make([]models.PricePoint, 0, len(sol))
	for _, pt := range sol {
		label := dayLabel(pt.Time)
		m, ok := msolByDay[label]
		if !ok {
			continue
		}
		merged = append(merged, models.PricePoint{
			Date: label,
			SOL:  round2(pt.Price),
			MSOL: round2(m),
		})
	}
	return merged, nil
}

func (p *PriceHistory) fetchBirdeye(ctx context.Context, days int) ([]models.PricePoint, error) {
	if !p.limiter.Allow(historyThrottleKey) {
		if lg := p.lastGoodCopy(); lg != nil {
			return lg.Data, nil
		}
		return nil, fmt.Errorf("birdeye history throttled and no previous payload")
	}

	granularity := "1m"
	if days > 7 {
		granularity = "1d"
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	sol, err := p.history.HistoryPrice(ctx, p.cfg.SolMint, granularity, from, to)
	if err != nil {
		p.recorder.UpstreamError("birdeye")
		return nil, err
	}
	msol, err := p.history.HistoryPrice(ctx, p.cfg.MsolMint, granularity, from, to)
	if err != nil {
		p.recorder.UpstreamError("birdeye")
		return nil, err
	}

	msolByDay := make(map[string]float64, len(msol))
	for _, pt := range msol {
		msolByDay[dayLabel(pt.Time)] = pt.Value
	}

	merged := make([]models.PricePoint, 0, len(sol))
	seen := make(map[string]struct{}, len(sol))
	for _, pt := range sol {
		label := dayLabel(pt.Time)
		if _, dup := seen[label]; dup {
			continue
		}
		m, ok := msolByDay[label]
		if !ok {
			continue
		}
		seen[label] = struct{}{}
		merged = append(merged, models.PricePoint{
			Date: label,
			SOL:  round2(pt.Value),
			MSOL: round2(m),
		})
	}
	return merged, nil
}

func (p *PriceHistory) lastGoodCopy() *models.PriceHistoryResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastGood == nil {
		return nil
	}
	cp := *p.lastGood
	return &cp
}

func (p *PriceHistory) setLastGood(resp *models.PriceHistoryResponse) {
	p.mu.Lock()
	p.lastGood = resp
	p.mu.Unlock()
}

func dayLabel(t time.Time) string {
	return t.UTC().Format("Jan 2")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
