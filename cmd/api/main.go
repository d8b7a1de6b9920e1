package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-cart.git/internal/auth"
	"github.com/ariefcatur/go-shop-cart.git/internal/config"
	"github.com/ariefcatur/go-shop-cart.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-cart.git/internal/kafka"
	"github.com/ariefcatur/go-shop-cart.git/internal/ledger"
	"github.com/ariefcatur/go-shop-cart.git/internal/postgres"
	"github.com/ariefcatur/go-shop-cart.git/internal/redisx"
	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

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

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderPlaced, 1024, logger)
	prod.Start(ctx)

	// Store, engines, sessions
	store := ledger.NewPostgres(db)
	carts := shop.NewCartManager(store, logger)
	checkout := shop.NewCheckoutEngine(store, carts, logger)
	history := shop.NewOrderHistory(store)
	catalog := shop.NewCatalog(store, logger)
	sessions := &auth.Service{Store: store, Redis: rdb, SessionTTL: cfg.SessionTTL}

	router := httpx.NewRouter()
	(&httpx.AuthHandler{Auth: sessions}).Register(router)
	(&httpx.CatalogHandler{Catalog: catalog}).Register(router)
	(&httpx.CartHandler{
		Carts:    carts,
		Checkout: checkout,
		History:  history,
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}).Register(router, sessions)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
