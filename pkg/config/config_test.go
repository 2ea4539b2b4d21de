package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: production\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Risk.CacheTTL.Std() != 60*time.Second {
		t.Errorf("cache ttl = %v, want 60s", cfg.Risk.CacheTTL)
	}
	if cfg.Risk.CacheVersion != "v2" {
		t.Errorf("cache version = %q, want v2", cfg.Risk.CacheVersion)
	}
	if cfg.Risk.MaxMints != 25 {
		t.Errorf("max mints = %d, want 25", cfg.Risk.MaxMints)
	}
	if cfg.Risk.NativeMint != "So11111111111111111111111111111111111111112" {
		t.Errorf("unexpected native mint %q", cfg.Risk.NativeMint)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
	if cfg.Solana.RPCEndpoint != "https://api.mainnet-beta.solana.com" {
		t.Errorf("rpc endpoint = %q", cfg.Solana.RPCEndpoint)
	}
	if cfg.Audit.Backend != "none" {
		t.Errorf("audit backend = %q, want none", cfg.Audit.Backend)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: development\n")

	t.Setenv("BIRDEYE_API_KEY", "be-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "gg-key")
	t.Setenv("SOLANA_RPC_MAINNET", "https://rpc.example.com")
	t.Setenv("RISK_CHAIN_FETCH", "1")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Birdeye.APIKey != "be-key" {
		t.Errorf("birdeye key = %q", cfg.Birdeye.APIKey)
	}
	if cfg.Gemini.APIKey != "gg-key" {
		t.Errorf("gemini key = %q, want GOOGLE_GEMINI_API_KEY fallback", cfg.Gemini.APIKey)
	}
	if cfg.Solana.RPCEndpoint != "https://rpc.example.com" {
		t.Errorf("rpc endpoint = %q", cfg.Solana.RPCEndpoint)
	}
	if !cfg.Solana.ChainFetch {
		t.Error("chain fetch should be enabled")
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "cache:6379" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestGeminiKeyPrecedence(t *testing.T) {
	path := writeConfig(t, "environment: development\n")

	t.Setenv("GEMINI_API_KEY", "primary")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "fallback")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gemini.APIKey != "primary" {
		t.Errorf("gemini key = %q, want primary", cfg.Gemini.APIKey)
	}
}

func TestValidateRejectsBadAuditBackend(t *testing.T) {
	path := writeConfig(t, "environment: production\naudit:\n  backend: postgres\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown audit backend")
	}
}

func TestValidateRequiresClickHouseHost(t *testing.T) {
	path := writeConfig(t, "environment: production\naudit:\n  backend: clickhouse\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing clickhouse host")
	}
}
