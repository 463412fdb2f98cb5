package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Cache.ToolTTL["get_stock_info"] != 86400 {
		t.Errorf("expected 86400s for stock info, got %d", cfg.Cache.ToolTTL["get_stock_info"])
	}
	if cfg.Cache.ToolTTL["get_financial_report"] != 604800 {
		t.Errorf("expected 604800s for reports, got %d", cfg.Cache.ToolTTL["get_financial_report"])
	}
	if cfg.Cache.DefaultTTL != 3600 {
		t.Errorf("expected 3600s default TTL, got %d", cfg.Cache.DefaultTTL)
	}
	if cfg.CallTimeout() != 30*time.Second {
		t.Errorf("expected 30s call timeout, got %v", cfg.CallTimeout())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level, got %q", cfg.LogLevel)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
call_timeout_seconds: 5
provider:
  rate_per_second: 2
cache:
  default_ttl_seconds: 120
  tool_ttl_seconds:
    get_stock_price: 60
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %q", cfg.LogLevel)
	}
	if cfg.CallTimeout() != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.CallTimeout())
	}
	if cfg.Provider.RatePerSecond != 2 {
		t.Errorf("expected rate 2, got %v", cfg.Provider.RatePerSecond)
	}
	if cfg.Cache.ToolTTL["get_stock_price"] != 60 {
		t.Errorf("expected overridden TTL 60, got %d", cfg.Cache.ToolTTL["get_stock_price"])
	}
	if cfg.Provider.BaseURL == "" {
		t.Error("untouched defaults must survive a partial file")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
