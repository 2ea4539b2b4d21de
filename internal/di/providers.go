package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"auri/internal/domain/repository"
	"auri/internal/handler/api"
	repo "auri/internal/repository"
	"auri/internal/service/birdeye"
	"auri/internal/service/coingecko"
	"auri/internal/service/ratelimit"
	"auri/internal/service/solana"
	riskservice "auri/internal/services/risk"
	"auri/internal/usecase"
	"auri/pkg/cache"
	"auri/pkg/clickhouse"
	"auri/pkg/config"
	httppkg "auri/pkg/http"
	"auri/pkg/http/middleware"
	"auri/pkg/kafka"
	"auri/pkg/logger"
	"auri/pkg/metrics"
	"auri/pkg/server"
)

// ProvideLogger builds the application logger.
func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.WithConsole(cfg.IsDevelopment()))
}

// ProvideRecorder builds the domain metrics recorder.
func ProvideRecorder(cfg *config.Config) *metrics.Recorder {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewRecorder()
}

// ProvideCache builds the result cache: layered memory+Redis when Redis is
// configured, memory-only otherwise.
func ProvideCache(cfg *config.Config, log *logger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse redis port: %w", err)
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}

	log.Info("redis cache enabled", logger.String("addr", cfg.Redis.Addr))
	return cache.NewLayeredCache(redisCache), nil
}

// ProvideBirdeye builds the Birdeye client.
func ProvideBirdeye(cfg *config.Config, log *logger.Logger) *birdeye.Client {
	return birdeye.NewClient(log,
		birdeye.WithAPIKey(cfg.Birdeye.APIKey),
		birdeye.WithBaseURL(cfg.Birdeye.BaseURL),
		birdeye.WithTimeout(cfg.Birdeye.Timeout.Std()),
	)
}

// ProvideSolana builds the RPC client.
func ProvideSolana(cfg *config.Config, log *logger.Logger) *solana.Client {
	return solana.NewClient(cfg.Solana.RPCEndpoint, log,
		solana.WithTimeout(cfg.Solana.Timeout.Std()))
}

// ProvideCoingecko builds the CoinGecko client.
func ProvideCoingecko(cfg *config.Config) *coingecko.Client {
	return coingecko.NewClient(
		coingecko.WithBaseURL(cfg.History.CoingeckoBaseURL))
}

// ProvideNarrator builds the Gemini narrator. With no API key configured it
// serves local decisions only.
func ProvideNarrator(ctx context.Context, cfg *config.Config, log *logger.Logger) (*riskservice.Narrator, error) {
	return riskservice.NewNarrator(ctx, cfg.Gemini.APIKey, log,
		riskservice.WithModel(cfg.Gemini.Model),
		riskservice.WithTemperature(cfg.Gemini.Temperature),
		riskservice.WithCallTimeout(cfg.Gemini.Timeout.Std()),
	)
}

// ProvideAuditor builds the verdict auditor for the configured backend.
func ProvideAuditor(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.VerdictAuditor, func(), error) {
	if cfg.Audit.Backend != "clickhouse" {
		return repo.NoopAuditor{}, func() {}, nil
	}

	client, err := clickhouse.NewClient(
		clickhouse.WithHost(cfg.Audit.ClickHouse.Host),
		clickhouse.WithPort(cfg.Audit.ClickHouse.Port),
		clickhouse.WithDatabase(cfg.Audit.ClickHouse.Database),
		clickhouse.WithCredentials(cfg.Audit.ClickHouse.Username, cfg.Audit.ClickHouse.Password),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store, err := repo.NewClickHouseVerdictStore(ctx, client, cfg.Audit.ClickHouse.Table, log)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("clickhouse close failed", logger.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvidePublisher builds the risk event publisher.
func ProvidePublisher(cfg *config.Config, log *logger.Logger) (repository.EventPublisher, func(), error) {
	if !cfg.Events.Enabled {
		return repo.NoopPublisher{}, func() {}, nil
	}

	producer, err := kafka.NewProducer(
		kafka.WithBrokers(cfg.Events.Brokers),
		kafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	cleanup := func() {
		if err := producer.Close(); err != nil {
			log.Warn("kafka producer close failed", logger.Error(err))
		}
	}
	return repo.NewKafkaRiskEvents(producer, cfg.Events.Topic), cleanup, nil
}

// ProvideRiskAnalyzer builds the orchestrator.
func ProvideRiskAnalyzer(
	cfg *config.Config,
	market *birdeye.Client,
	resolver *solana.Client,
	narrator *riskservice.Narrator,
	cacheSvc cache.Service,
	auditor repository.VerdictAuditor,
	publisher repository.EventPublisher,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *usecase.RiskAnalyzer {
	return usecase.NewRiskAnalyzer(
		usecase.RiskAnalyzerConfig{
			CacheTTL:       cfg.Risk.CacheTTL.Std(),
			CacheVersion:   cfg.Risk.CacheVersion,
			MaxMints:       cfg.Risk.MaxMints,
			NativeMint:     cfg.Risk.NativeMint,
			ChainFetch:     cfg.Solana.ChainFetch,
			ResolveAge:     cfg.Risk.ResolveAge,
			ResolveHolders: cfg.Risk.ResolveHolders,
		},
		market, resolver, narrator, cacheSvc, auditor, publisher, recorder, log,
	)
}

// ProvidePriceHistory builds the chart use case.
func ProvidePriceHistory(
	cfg *config.Config,
	charts *coingecko.Client,
	history *birdeye.Client,
	cacheSvc cache.Service,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *usecase.PriceHistory {
	refillPerSecond := 1.0 / cfg.History.MinFetchInterval.Std().Seconds()
	return usecase.NewPriceHistory(
		usecase.PriceHistoryConfig{
			CacheTTL: cfg.History.CacheTTL.Std(),
			SolMint:  cfg.Risk.NativeMint,
			MsolMint: cfg.History.MsolMint,
		},
		charts, history,
		ratelimit.NewLimiter(1, refillPerSecond),
		cacheSvc, recorder, log,
	)
}

// ProvideHandler builds the API handler.
func ProvideHandler(analyzer *usecase.RiskAnalyzer, history *usecase.PriceHistory, log *logger.Logger) *api.RiskHandler {
	return api.NewRiskHandler(analyzer, history, log)
}

// ProvideServer builds the Echo server with routes registered.
func ProvideServer(cfg *config.Config, handler *api.RiskHandler, log *logger.Logger) *httppkg.Server {
	srv := httppkg.NewServer(handler,
		httppkg.WithPort(cfg.Server.Port),
		httppkg.WithTimeouts(cfg.Server.ReadTimeout.Std(), cfg.Server.WriteTimeout.Std(), cfg.Server.ShutdownTimeout.Std()),
	)
	if cfg.Metrics.Enabled {
		srv.Echo().Use(echo.WrapMiddleware(middleware.Metrics(log, time.Second)))
	}
	return srv
}

// ProvideApp assembles the application.
func ProvideApp(cfg *config.Config, srv *httppkg.Server, log *logger.Logger) *server.App {
	return server.New(srv, log,
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout.Std()))
}
