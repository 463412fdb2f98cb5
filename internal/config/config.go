package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	Burst          int     `yaml:"burst"`
}

type CacheConfig struct {
	Capacity       int            `yaml:"capacity"`
	DefaultTTL     int            `yaml:"default_ttl_seconds"`
	ToolTTL        map[string]int `yaml:"tool_ttl_seconds"`
	Persist        bool           `yaml:"persist"`
	PersistPath    string         `yaml:"persist_path"`
	StaleRetention int            `yaml:"stale_retention_seconds"`
}

type Config struct {
	SocketPath         string         `yaml:"socket_path"`
	DataDir            string         `yaml:"data_dir"`
	LogLevel           string         `yaml:"log_level"`
	LogFormat          string         `yaml:"log_format"`
	MaxConnections     int            `yaml:"max_connections"`
	CallTimeoutSeconds int            `yaml:"call_timeout_seconds"`
	Provider           ProviderConfig `yaml:"provider"`
	Cache              CacheConfig    `yaml:"cache"`
}

func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, ".finmcp")

	return &Config{
		SocketPath:         filepath.Join(baseDir, "daemon.sock"),
		DataDir:            baseDir,
		LogLevel:           "info",
		LogFormat:          "text",
		MaxConnections:     100,
		CallTimeoutSeconds: 30,
		Provider: ProviderConfig{
			BaseURL:        "https://push2his.eastmoney.com",
			TimeoutSeconds: 15,
			RatePerSecond:  5,
			Burst:          10,
		},
		Cache: CacheConfig{
			Capacity:   4096,
			DefaultTTL: 3600,
			ToolTTL: map[string]int{
				"get_stock_info":            86400,
				"get_stock_price":           3600,
				"get_financial_report":      86400 * 7,
				"calc_technical_indicators": 3600,
				"get_industry_analysis":     86400,
				"analyze_financials":        86400 * 7,
			},
			Persist:        false,
			PersistPath:    filepath.Join(baseDir, "cache.db"),
			StaleRetention: 86400 * 3,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.DataDir, 0700)
}

func (c *Config) CallTimeout() time.Duration {
	if c.CallTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

func (c *Config) ProviderTimeout() time.Duration {
	if c.Provider.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}
