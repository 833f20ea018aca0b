package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/config"
	"github.com/ariefcatur/go-stock-alerts/internal/httpx"
	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	kafkax "github.com/ariefcatur/go-stock-alerts/internal/kafka"
	"github.com/ariefcatur/go-stock-alerts/internal/memstore"
	"github.com/ariefcatur/go-stock-alerts/internal/metrics"
	"github.com/ariefcatur/go-stock-alerts/internal/notify"
	"github.com/ariefcatur/go-stock-alerts/internal/postgres"
	"github.com/ariefcatur/go-stock-alerts/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

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

	// Redis
	rdb := redisx.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()

	// Stores
	var (
		products inventory.ProductStore
		orders   inventory.OrderStore
	)
	switch cfg.Store {
	case "memory":
		ms := memstore.New()
		products, orders = ms, ms
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		products = &postgres.ProductRepo{DB: db}
		orders = &postgres.OrderRepo{DB: db}
	}
	primary := products
	products = &redisx.ProductCache{Store: primary, Redis: rdb, Log: logger}

	// Kafka producer for the alert relay
	prod := kafkax.NewProducer(cfg.KafkaBrokers, inventory.TopicStockLow, 1024, logger)
	prod.Start(ctx)

	// Notification fan-out
	tokens := &redisx.PushTokens{Redis: rdb}
	feed := &redisx.AlertFeed{Redis: rdb}
	channels := []notify.Channel{
		&notify.ToastChannel{Feed: feed},
		&notify.KafkaChannel{Producer: prod, Service: cfg.ServiceName},
	}
	if cfg.NotifyInline {
		channels = append(channels, notify.DirectChannels(cfg, tokens)...)
	}
	disp := notify.NewDispatcher(logger, reg, channels...)
	disp.Retries = cfg.NotifyRetries

	svc := &inventory.Service{
		Products: products,
		Primary:  primary,
		Orders:   orders,
		Notifier: disp,
		Metrics:  reg,
		Log:      logger,
	}

	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Service: svc, Log: logger}).Register(router)
	(&httpx.OrdersHandler{Service: svc, Log: logger}).Register(router)
	(&httpx.ReportsHandler{Service: svc, Log: logger}).Register(router)
	(&httpx.AlertsHandler{Tokens: tokens, Feed: feed, Log: logger}).Register(router)
	router.Handle("/metrics", reg.Handler())

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.Store),
			zap.Strings("channels", disp.Channels()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	disp.Close() // in-flight alerts; later Notify calls are dropped
	prod.Close() // flush buffered events
	cancel()
}
