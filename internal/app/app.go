package app

import (
	"fmt"
	"time"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/adapter/eastmoney"
	"github.com/quantmesh/finmcp/internal/cache"
	"github.com/quantmesh/finmcp/internal/config"
	"github.com/quantmesh/finmcp/internal/dispatch"
	"github.com/quantmesh/finmcp/internal/lifecycle"
	"github.com/quantmesh/finmcp/internal/logger"
	"github.com/quantmesh/finmcp/internal/mcp"
	"github.com/quantmesh/finmcp/internal/tools"
	"github.com/quantmesh/finmcp/internal/tools/finance"
)

// App wires the full server: provider, cache, lifecycle, dispatcher and
// the MCP surface. Both the stdio binary and the daemon build one of
// these.
type App struct {
	Config     *config.Config
	Registry   *tools.Registry
	Store      cache.Store
	Dispatcher *dispatch.Dispatcher
	Server     *mcp.Server
	Manager    *lifecycle.Manager

	persistent *cache.PersistentStore
}

func New(cfg *config.Config) (*App, error) {
	logger.Init(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	var store cache.Store
	var persistent *cache.PersistentStore
	if cfg.Cache.Persist {
		ps, err := cache.NewPersistentStore(cfg.Cache.Capacity, cfg.Cache.PersistPath, time.Duration(cfg.Cache.StaleRetention)*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache store: %w", err)
		}
		store, persistent = ps, ps
	} else {
		ms, err := cache.NewMemoryStore(cfg.Cache.Capacity)
		if err != nil {
			return nil, err
		}
		store = ms
	}

	provider := adapter.WithBreaker(eastmoney.New(eastmoney.Config{
		BaseURL:       cfg.Provider.BaseURL,
		Timeout:       cfg.ProviderTimeout(),
		RatePerSecond: cfg.Provider.RatePerSecond,
		Burst:         cfg.Provider.Burst,
	}), adapter.NewCircuitBreaker(adapter.DefaultCircuitConfig()))

	registry := tools.NewRegistry()
	for _, tool := range finance.GetTools() {
		if err := registry.Register(tool); err != nil {
			return nil, fmt.Errorf("failed to register tools: %w", err)
		}
	}
	registry.Freeze()

	manager := lifecycle.NewManager(provider)
	policy := cache.PolicyFromSeconds(cfg.Cache.DefaultTTL, cfg.Cache.ToolTTL)
	dispatcher := dispatch.NewDispatcher(registry, store, provider, manager, policy, cfg.CallTimeout())

	return &App{
		Config:     cfg,
		Registry:   registry,
		Store:      store,
		Dispatcher: dispatcher,
		Server:     mcp.NewServer(registry, dispatcher),
		Manager:    manager,
		persistent: persistent,
	}, nil
}

// Reload applies a freshly loaded config's TTL settings. Socket path and
// store shape need a restart.
func (a *App) Reload(cfg *config.Config) {
	a.Dispatcher.SetPolicy(cache.PolicyFromSeconds(cfg.Cache.DefaultTTL, cfg.Cache.ToolTTL))
}

func (a *App) Close() error {
	err := a.Manager.Shutdown()
	if a.persistent != nil {
		if cerr := a.persistent.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
