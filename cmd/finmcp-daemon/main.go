package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantmesh/finmcp/internal/app"
	"github.com/quantmesh/finmcp/internal/config"
	"github.com/quantmesh/finmcp/internal/daemon"
	"github.com/quantmesh/finmcp/internal/logger"
	"github.com/quantmesh/finmcp/internal/watcher"
	"github.com/quantmesh/finmcp/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("finmcp-daemon %s\n", version.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	instance := daemon.NewInstance(cfg.DataDir, cfg.SocketPath)
	if err := instance.Acquire(); err != nil {
		if errors.Is(err, daemon.ErrLockHeld) && instance.Running() {
			fmt.Println("Daemon already running")
			return
		}
		fmt.Fprintf(os.Stderr, "Failed to acquire instance lock: %v\n", err)
		os.Exit(1)
	}
	defer instance.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := daemon.NewDaemon(cfg.SocketPath, cfg.MaxConnections, a.Server)

	if *configPath != "" {
		w, werr := watcher.NewConfigWatcher(*configPath, 300*time.Millisecond, func() {
			reloaded, lerr := config.Load(*configPath)
			if lerr != nil {
				logger.Warn("config reload failed", "error", lerr)
				return
			}
			a.Reload(reloaded)
		})
		if werr != nil {
			logger.Warn("config watcher unavailable", "error", werr)
		} else {
			w.Start(ctx)
			defer w.Stop()
		}
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		d.Shutdown()
		cancel()
	}()

	if err := d.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Daemon failed: %v\n", err)
		os.Exit(1)
	}
}
