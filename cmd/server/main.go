package main

import (
	"context"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/mcp"
	"github.com/honeycarbs/jobscout/pkg/logging"
	"github.com/honeycarbs/jobscout/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, cleanup, err := mcp.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := res.Scheduler.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}

	srv := mcp.NewServer(logger, cfg, res)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		shutdown.Graceful(
			[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
			30*time.Second,
			logger,
			shutdown.Func(res.Scheduler.Stop),
			srv,
		)
	}()

	if err := srv.Run(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
		cancel()
		_ = res.Scheduler.Stop(context.Background())
		cleanup()
		os.Exit(1)
	}

	<-stopped
	logger.Info("MCP server stopped")
}
