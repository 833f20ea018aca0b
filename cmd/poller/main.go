package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-stock-alerts/internal/config"
	"github.com/ariefcatur/go-stock-alerts/internal/metrics"
	"github.com/ariefcatur/go-stock-alerts/internal/notify"
	"github.com/ariefcatur/go-stock-alerts/internal/poller"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// poller is the client-side fallback: it watches the product list and raises
// a local alert when a product becomes low between two polls.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	disp := notify.NewDispatcher(logger, reg, &notify.LogChannel{Log: logger})
	disp.Retries = 0

	p := &poller.Poller{
		Source:   poller.NewClient(cfg.APIURL),
		Notify:   disp,
		Interval: cfg.PollInterval,
		Log:      logger,
		Metrics:  reg,
	}
	logger.Info("poller started", zap.String("api", cfg.APIURL), zap.Duration("interval", cfg.PollInterval))
	p.Run(ctx)
	disp.Close()
	logger.Info("poller stopped")
}
