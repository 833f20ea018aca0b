package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-stock-alerts/internal/config"
	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	kafkax "github.com/ariefcatur/go-stock-alerts/internal/kafka"
	"github.com/ariefcatur/go-stock-alerts/internal/metrics"
	"github.com/ariefcatur/go-stock-alerts/internal/notify"
	"github.com/ariefcatur/go-stock-alerts/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// notifier relays LowStockDetected events from Kafka to email and push.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg := metrics.NewRegistry()

	rdb := redisx.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()

	disp := notify.NewDispatcher(logger, reg, notify.DirectChannels(cfg, &redisx.PushTokens{Redis: rdb})...)
	disp.Retries = cfg.NotifyRetries

	relay := &notify.Relay{
		Dispatcher: disp,
		Redis:      rdb,
		Service:    cfg.ServiceName + "-relay",
		Log:        logger,
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.Warn("metrics listener", zap.Error(err))
		}
	}()

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.RelayGroup, inventory.TopicStockLow, cfg.RelayWorkers, logger)
	go func() {
		logger.Info("alert relay started",
			zap.String("group", cfg.RelayGroup),
			zap.String("topic", inventory.TopicStockLow),
			zap.Int("workers", cfg.RelayWorkers),
			zap.Strings("channels", disp.Channels()))
		if err := cons.Start(ctx, relay.HandleLowStock); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down relay...")
	cancel()
	disp.Close()
}
