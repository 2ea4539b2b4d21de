package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML duration strings such as "10s" or "15m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds application configuration.
type Config struct {
	Environment string        `yaml:"environment"`
	Server      ServerConfig  `yaml:"server"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Birdeye     BirdeyeConfig `yaml:"birdeye"`
	Gemini      GeminiConfig  `yaml:"gemini"`
	Solana      SolanaConfig  `yaml:"solana"`
	Risk        RiskConfig    `yaml:"risk"`
	History     HistoryConfig `yaml:"history"`
	Redis       RedisConfig   `yaml:"redis"`
	Audit       AuditConfig   `yaml:"audit"`
	Events      EventsConfig  `yaml:"events"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// MetricsConfig holds Prometheus configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// BirdeyeConfig holds Birdeye API configuration.
type BirdeyeConfig struct {
	APIKey  string   `yaml:"api_key"`
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// GeminiConfig holds Gemini narrator configuration.
type GeminiConfig struct {
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature float32  `yaml:"temperature"`
	Timeout     Duration `yaml:"timeout"`
}

// SolanaConfig holds RPC node configuration.
type SolanaConfig struct {
	RPCEndpoint string   `yaml:"rpc_endpoint"`
	ChainFetch  bool     `yaml:"chain_fetch"`
	Timeout     Duration `yaml:"timeout"`
}

// RiskConfig holds risk analysis behavior.
type RiskConfig struct {
	CacheTTL       Duration `yaml:"cache_ttl"`
	CacheVersion   string   `yaml:"cache_version"`
	MaxMints       int      `yaml:"max_mints"`
	NativeMint     string   `yaml:"native_mint"`
	ResolveAge     bool     `yaml:"resolve_age"`
	ResolveHolders bool     `yaml:"resolve_holders"`
}

// HistoryConfig holds price history endpoint behavior.
type HistoryConfig struct {
	CacheTTL         Duration `yaml:"cache_ttl"`
	MinFetchInterval Duration `yaml:"min_fetch_interval"`
	MsolMint         string   `yaml:"msol_mint"`
	CoingeckoBaseURL string   `yaml:"coingecko_base_url"`
}

// RedisConfig holds the optional L2 cache configuration.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuditConfig selects the verdict audit backend.
type AuditConfig struct {
	Backend    string           `yaml:"backend"` // none | clickhouse
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

// EventsConfig holds the optional Kafka publisher settings.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads config and applies environment variable overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BIRDEYE_API_KEY"); v != "" {
		cfg.Birdeye.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	} else if v := os.Getenv("GOOGLE_GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("SOLANA_RPC_MAINNET"); v != "" {
		cfg.Solana.RPCEndpoint = v
	}
	if v := os.Getenv("RISK_CHAIN_FETCH"); v == "1" || v == "true" {
		cfg.Solana.ChainFetch = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Birdeye.BaseURL == "" {
		c.Birdeye.BaseURL = "https://public-api.birdeye.so"
	}
	if c.Birdeye.Timeout == 0 {
		c.Birdeye.Timeout = Duration(10 * time.Second)
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.1
	}
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = Duration(30 * time.Second)
	}
	if c.Solana.RPCEndpoint == "" {
		c.Solana.RPCEndpoint = "https://api.mainnet-beta.solana.com"
	}
	if c.Solana.Timeout == 0 {
		c.Solana.Timeout = Duration(15 * time.Second)
	}
	if c.Risk.CacheTTL == 0 {
		c.Risk.CacheTTL = Duration(60 * time.Second)
	}
	if c.Risk.CacheVersion == "" {
		c.Risk.CacheVersion = "v2"
	}
	if c.Risk.MaxMints == 0 {
		c.Risk.MaxMints = 25
	}
	if c.Risk.NativeMint == "" {
		c.Risk.NativeMint = "So11111111111111111111111111111111111111112"
	}
	if c.History.CacheTTL == 0 {
		c.History.CacheTTL = Duration(15 * time.Minute)
	}
	if c.History.MinFetchInterval == 0 {
		c.History.MinFetchInterval = Duration(5 * time.Second)
	}
	if c.History.MsolMint == "" {
		c.History.MsolMint = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
	}
	if c.History.CoingeckoBaseURL == "" {
		c.History.CoingeckoBaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Audit.Backend == "" {
		c.Audit.Backend = "none"
	}
	if c.Audit.ClickHouse.Port == 0 {
		c.Audit.ClickHouse.Port = 9000
	}
	if c.Audit.ClickHouse.Table == "" {
		c.Audit.ClickHouse.Table = "risk_verdicts"
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "auri.risk.events"
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Audit.Backend {
	case "none", "clickhouse":
	default:
		return fmt.Errorf("audit backend must be none or clickhouse, got %q", c.Audit.Backend)
	}
	if c.Audit.Backend == "clickhouse" && c.Audit.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse host is required when audit backend is clickhouse")
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("events brokers are required when events are enabled")
	}
	return nil
}

// IsDevelopment reports whether the environment is development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
