package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-cart.git/internal/auth"
	"github.com/ariefcatur/go-shop-cart.git/internal/config"
	"github.com/ariefcatur/go-shop-cart.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-cart.git/internal/kafka"
	"github.com/ariefcatur/go-shop-cart.git/internal/ledger"
	"github.com/ariefcatur/go-shop-cart.git/internal/ordercache"
	"github.com/ariefcatur/go-shop-cart.git/internal/postgres"
	"github.com/ariefcatur/go-shop-cart.git/internal/redisx"
	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producers: completed & rejected (dua topic berbeda)
	pOK := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderCompleted, 1024, logger)
	pOK.Start(ctx)
	pRJ := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicStockRejected, 1024, logger)
	pRJ.Start(ctx)

	// Store, engines, sessions
	store := ledger.NewPostgres(db)
	catalog := shop.NewCatalog(store, logger)
	history := shop.NewOrderHistory(store)
	fulfillment := shop.NewFulfillmentEngine(store, logger)
	sessions := &auth.Service{Store: store, Redis: rdb, SessionTTL: cfg.SessionTTL}

	router := httpx.NewRouter()
	(&httpx.AdminHandler{
		Catalog:           catalog,
		History:           history,
		Fulfillment:       fulfillment,
		ProducerCompleted: pOK,
		ProducerRejected:  pRJ,
		Redis:             rdb,
		Service:           cfg.ServiceName + "-admin",
	}).Register(router, sessions)

	// Consumer: warm the order-status cache from placed events
	svc := &ordercache.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-admin",
		Log:         logger,
	}
	group := getenv("ORDERCACHE_GROUP", "order-cache")
	workers := mustAtoi(os.Getenv("ORDERCACHE_WORKERS"), "4")
	// one consumer per topic: placed (from cmd/api) and completed (from other
	// admin instances), the handler is the same
	for _, topic := range []string{shop.TopicOrderPlaced, shop.TopicOrderCompleted} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, logger)
		go func(topic string) {
			logger.Info("order cache consumer started",
				zap.String("group", group), zap.String("topic", topic), zap.Int("workers", workers))
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				logger.Warn("consumer exit", zap.String("topic", topic), zap.Error(err))
			}
		}(topic)
	}

	srv := &http.Server{Addr: cfg.AdminAddr, Handler: router}

	go func() {
		logger.Info("admin HTTP listening", zap.String("addr", cfg.AdminAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pOK.Close() // tutup inbox -> flush & close writer
	pRJ.Close()
	cancel() // stop producer loop + consumer
	pOK.WaitClosed()
	pRJ.WaitClosed()
}
