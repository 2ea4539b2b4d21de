package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"auri/internal/domain/models"
	"auri/internal/domain/repository"
	"auri/internal/services/risk"
	"auri/pkg/cache"
	httppkg "auri/pkg/http"
	"auri/pkg/logger"
	"auri/pkg/metrics"
)

const riskCachePrefix = "risk"

// RiskAnalyzerConfig holds orchestrator behavior.
type RiskAnalyzerConfig struct {
	CacheTTL       time.Duration
	CacheVersion   string
	MaxMints       int
	NativeMint     string
	ChainFetch     bool
	ResolveAge     bool
	ResolveHolders bool
}

// RiskAnalyzer orchestrates mint resolution, market fetch, rule evaluation,
// narration and caching for one analyze request.
type RiskAnalyzer struct {
	cfg       RiskAnalyzerConfig
	market    repository.MarketDataSource
	resolver  repository.MintResolver
	narrator  repository.Narrator
	cache     cache.Service
	auditor   repository.VerdictAuditor
	publisher repository.EventPublisher
	recorder  *metrics.Recorder
	log       *logger.Logger
}

// NewRiskAnalyzer creates the orchestrator.
func NewRiskAnalyzer(
	cfg RiskAnalyzerConfig,
	market repository.MarketDataSource,
	resolver repository.MintResolver,
	narrator repository.Narrator,
	cacheSvc cache.Service,
	auditor repository.VerdictAuditor,
	publisher repository.EventPublisher,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *RiskAnalyzer {
	return &RiskAnalyzer{
		cfg:       cfg,
		market:    market,
		resolver:  resolver,
		narrator:  narrator,
		cache:     cacheSvc,
		auditor:   auditor,
		publisher: publisher,
		recorder:  recorder,
		log:       log,
	}
}

type cacheKeyParts struct {
	V string   `json:"v"`
	W string   `json:"w"`
	M []string `json:"m"`
}

// Analyze runs the full risk pipeline for a wallet and/or explicit mints.
func (a *RiskAnalyzer) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.WalletRiskResponse, error) {
	start := time.Now()

	wallet := strings.TrimSpace(req.WalletAddress)
	if wallet == "" && len(req.Mints) == 0 {
		a.recorder.AnalyzeRequest("bad_request")
		return nil, httppkg.BadRequestError("walletAddress or mints is required")
	}

	for _, mint := range req.Mints {
		if !validMint(mint) {
			a.recorder.AnalyzeRequest("bad_request")
			return nil, httppkg.BadRequestErrorf("invalid mint address: %s", mint)
		}
	}

	mints := a.resolveMints(ctx, wallet, req.Mints)

	key := a.cacheKey(wallet, mints)
	if cached := a.lookupCache(ctx, key); cached != nil {
		a.recorder.AnalyzeRequest("cache_hit")
		return cached, nil
	}

	results := make([]models.RiskVerdict, 0, len(mints))
	lock := false
	for _, mint := range mints {
		verdict := a.analyzeMint(ctx, mint)
		if strings.Contains(strings.ToUpper(verdict.Narrative.Risk), "HIGH") || risk.AnyFailed(verdict.Rules) {
			lock = true
		}
		results = append(results, verdict)
	}

	state := models.StateCalm
	if lock {
		state = models.StateLockdown
		a.recorder.Lockdown()
	}

	var walletField *string
	if wallet != "" {
		walletField = &wallet
	}

	resp := &models.WalletRiskResponse{
		WalletAddress: walletField,
		Results:       results,
		Lock:          lock,
		State:         state,
		Debug: models.Debug{
			Total: len(results),
			TS:    time.Now().UnixMilli(),
			Model: a.narrator.Model(),
		},
	}

	a.storeCache(ctx, key, resp)
	a.afterCompute(ctx, wallet, resp)

	a.recorder.AnalyzeRequest("ok")
	a.recorder.ObserveDuration("analyze", time.Since(start))
	return resp, nil
}

// resolveMints builds the mint set: explicit first, then wallet holdings,
// deduplicated in order, capped, defaulting to the native mint.
func (a *RiskAnalyzer) resolveMints(ctx context.Context, wallet string, explicit []string) []string {
	candidates := make([]string, 0, len(explicit))
	candidates = append(candidates, explicit...)

	if wallet != "" && a.cfg.ChainFetch {
		held, err := a.resolver.HeldMints(ctx, wallet)
		if err != nil {
			a.recorder.UpstreamError("solana")
			a.log.Error("held mint resolution failed",
				logger.String("wallet", wallet), logger.Error(err))
		} else {
			candidates = append(candidates, held...)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	mints := make([]string, 0, len(candidates))
	for _, m := range candidates {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		mints = append(mints, m)
		if len(mints) >= a.cfg.MaxMints {
			break
		}
	}

	if len(mints) == 0 {
		mints = append(mints, a.cfg.NativeMint)
	}
	return mints
}

// analyzeMint runs the per-mint pipeline. Fetch failures degrade to an
// all-null snapshot so the rules and narrator still run.
func (a *RiskAnalyzer) analyzeMint(ctx context.Context, mint string) models.RiskVerdict {
	snapshot := models.TokenMarketSnapshot{}
	if snap, err := a.market.MarketData(ctx, mint); err != nil {
		a.recorder.UpstreamError("birdeye")
		a.log.Error("market data fetch failed",
			logger.String("mint", mint), logger.Error(err))
	} else {
		snapshot = *snap
	}

	m := models.TokenRiskMetrics{
		Mint:             mint,
		PriceUSD:         snapshot.Price,
		LiquidityUSD:     snapshot.Liquidity,
		PriceChange1hPct: snapshot.PriceChange1h,
	}

	if a.cfg.ResolveAge {
		if created, err := a.market.CreatedAt(ctx, mint); err != nil {
			a.recorder.UpstreamError("birdeye")
			a.log.Error("metadata fetch failed", logger.String("mint", mint), logger.Error(err))
		} else if created != nil {
			age := time.Since(*created).Hours()
			m.AgeHours = &age
		}
	}

	if a.cfg.ResolveHolders {
		if pct, err := a.resolver.Top10HolderPercent(ctx, mint); err != nil {
			a.recorder.UpstreamError("solana")
			a.log.Error("holder stats fetch failed", logger.String("mint", mint), logger.Error(err))
		} else {
			m.Top10HolderPct = pct
		}
	}

	checks := risk.Evaluate(m)

	narrative, raw, usedFallback := a.narrator.Narrate(ctx, m, snapshot)
	if usedFallback {
		a.recorder.NarratorFallback()
	}

	return models.RiskVerdict{
		Mint:         mint,
		Metrics:      m,
		Rules:        checks,
		Narrative:    narrative,
		UsedFallback: usedFallback,
		RawNarration: raw,
	}
}

func (a *RiskAnalyzer) cacheKey(wallet string, mints []string) string {
	payload, _ := json.Marshal(cacheKeyParts{V: a.cfg.CacheVersion, W: wallet, M: mints})
	return cache.GenerateKey(riskCachePrefix, cache.HashKey(string(payload)))
}

func (a *RiskAnalyzer) lookupCache(ctx context.Context, key string) *models.WalletRiskResponse {
	var resp models.WalletRiskResponse
	if err := a.cache.Get(ctx, key, &resp); err != nil {
		a.recorder.CacheLookup("miss")
		return nil
	}
	a.recorder.CacheLookup("hit")
	resp.Debug.Cached = true
	resp.Debug.TS = time.Now().UnixMilli()
	return &resp
}

func (a *RiskAnalyzer) storeCache(ctx context.Context, key string, resp *models.WalletRiskResponse) {
	if err := a.cache.Set(ctx, key, resp, a.cfg.CacheTTL); err != nil {
		a.log.Warn("result cache write failed", logger.Error(err))
	}
}

// afterCompute runs the best-effort side effects: audit insert and risk
// event publish. Failures are logged, never surfaced.
func (a *RiskAnalyzer) afterCompute(ctx context.Context, wallet string, resp *models.WalletRiskResponse) {
	if err := a.auditor.Record(ctx, wallet, resp.Results); err != nil {
		a.log.Warn("verdict audit failed", logger.String("wallet", wallet), logger.Error(err))
	}
	if err := a.publisher.PublishRiskEvent(ctx, wallet, resp.Lock, resp.State); err != nil {
		a.log.Warn("risk event publish failed", logger.String("wallet", wallet), logger.Error(err))
	}
}

// validMint reports whether s decodes as a 32-byte base58 address.
func validMint(s string) bool {
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == 32
}
