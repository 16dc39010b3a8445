package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendtrack/internal/analytics"
	"spendtrack/internal/cache"
	"spendtrack/internal/config"
	"spendtrack/internal/events"
	"spendtrack/internal/log"
	"spendtrack/internal/rpc"
	"spendtrack/internal/storage"
	"spendtrack/internal/tools"
)

func main() {
	// .env is optional; the environment wins when both are present.
	_ = godotenv.Load()

	cfg := config.Load()

	// Logs go to stderr: stdout is the protocol channel.
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open ledger", log.FieldError, err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	// The change feed is optional; a broker that is down must not keep the
	// tool server from starting.
	var feed *events.Publisher
	if cfg.EventsEnabled() {
		feed, err = events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("ledger change feed unavailable, continuing without it", log.FieldError, err)
			feed = nil
		} else {
			defer feed.Close()
			logger.Info("ledger change feed connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	engine := analytics.NewEngine(store)
	registry := tools.NewRegistry(cache.New[tools.Result](cfg.CacheSize, cfg.CacheTTL))
	for _, tool := range tools.ExpenseTools(store, engine, feed) {
		registry.Register(tool)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("spendtrack tool server ready",
		"db_path", cfg.DBPath,
		"tools", len(registry.Specs()))

	srv := rpc.NewServer(registry, os.Stdin, os.Stdout)
	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
