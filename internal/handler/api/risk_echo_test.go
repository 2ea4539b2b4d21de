package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auri/internal/domain/models"
	"auri/internal/repository"
	"auri/internal/service/birdeye"
	"auri/internal/service/coingecko"
	"auri/internal/service/ratelimit"
	"auri/internal/services/risk"
	"auri/internal/usecase"
	"auri/pkg/cache"
	"auri/pkg/logger"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type stubMarket struct{}

func (stubMarket) MarketData(ctx context.Context, mint string) (*models.TokenMarketSnapshot, error) {
	liq := 100000.0
	return &models.TokenMarketSnapshot{Liquidity: &liq}, nil
}

func (stubMarket) CreatedAt(ctx context.Context, mint string) (*time.Time, error) {
	return nil, nil
}

type stubResolver struct{}

func (stubResolver) HeldMints(ctx context.Context, wallet string) ([]string, error) {
	return nil, nil
}

func (stubResolver) Top10HolderPercent(ctx context.Context, mint string) (*float64, error) {
	return nil, nil
}

type stubNarrator struct{}

func (stubNarrator) Narrate(ctx context.Context, m models.TokenRiskMetrics, snapshot models.TokenMarketSnapshot) (models.RiskNarrative, string, bool) {
	return risk.LocalDecision(m, snapshot), "", true
}

func (stubNarrator) Model() string { return "local" }

type stubCharts struct{}

func (stubCharts) MarketChart(ctx context.Context, coinID string, days int) ([]coingecko.Point, error) {
	return []coingecko.Point{{Time: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Price: 150}}, nil
}

type stubHistory struct{}

func (stubHistory) HistoryPrice(ctx context.Context, mint, granularity string, from, to time.Time) ([]birdeye.HistoryPoint, error) {
	return nil, nil
}

func newHandler() *RiskHandler {
	log := logger.New()
	analyzer := usecase.NewRiskAnalyzer(
		usecase.RiskAnalyzerConfig{
			CacheTTL:     time.Minute,
			CacheVersion: "v2",
			MaxMints:     25,
			NativeMint:   "So11111111111111111111111111111111111111112",
		},
		stubMarket{}, stubResolver{}, stubNarrator{},
		cache.NewMemoryCache(), repository.NoopAuditor{}, repository.NoopPublisher{},
		nil, log,
	)
	history := usecase.NewPriceHistory(
		usecase.PriceHistoryConfig{CacheTTL: time.Minute, SolMint: "sol", MsolMint: "msol"},
		stubCharts{}, stubHistory{}, ratelimit.NewLimiter(1, 0.2),
		cache.NewMemoryCache(), nil, log,
	)
	return NewRiskHandler(analyzer, history, log)
}

func doRequest(t *testing.T, h *RiskHandler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeMissingInputIs400(t *testing.T) {
	rec := doRequest(t, newHandler(), http.MethodPost, "/api/risk/analyze", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code, "envelope carries the status")

	var env struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestAnalyzeSuccess(t *testing.T) {
	rec := doRequest(t, newHandler(), http.MethodPost, "/api/risk/analyze",
		`{"mints":["`+usdcMint+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Status int                       `json:"status"`
		Data   models.WalletRiskResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusOK, env.Status)
	require.Len(t, env.Data.Results, 1)
	assert.Equal(t, usdcMint, env.Data.Results[0].Mint)
	assert.Equal(t, models.StateCalm, env.Data.State)
	assert.Equal(t, "local", env.Data.Debug.Model)
}

func TestSolMsolHistoryRejectsBadDays(t *testing.T) {
	rec := doRequest(t, newHandler(), http.MethodGet, "/api/market/sol-msol?days=abc", "")
	var env struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestSolMsolHistorySuccess(t *testing.T) {
	rec := doRequest(t, newHandler(), http.MethodGet, "/api/market/sol-msol?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Status int                         `json:"status"`
		Data   models.PriceHistoryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusOK, env.Status)
	require.Len(t, env.Data.Data, 1)
	assert.Equal(t, "Aug 1", env.Data.Data[0].Date)
}
