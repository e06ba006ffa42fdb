package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/tradecart/cart-service/internal/config"
	carthttp "github.com/fjod/tradecart/cart-service/internal/http"
	"github.com/fjod/tradecart/cart-service/internal/poller"
	s "github.com/fjod/tradecart/cart-service/internal/service"
	"github.com/fjod/tradecart/cart-service/internal/store"
	"github.com/fjod/tradecart/pkg/auth"
	"github.com/fjod/tradecart/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New("cart-service")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	carts := store.NewRedisStore(redisClient, cfg.CartTTL)
	service := s.NewCartService(carts)
	handler := carthttp.NewCartHandler(service)
	router := carthttp.NewRouter(handler, auth.NewVerifier(cfg.AccessTokenSecret), log, cfg.RequestTimeout)

	var wg sync.WaitGroup
	pollerCtx, pollerCancel := context.WithCancel(ctx)
	var paymentPoller *poller.Poller
	if len(cfg.KafkaBrokers) > 0 {
		paymentPoller = poller.NewPoller(carts, log.Named("poller"), cfg.KafkaBrokers...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			paymentPoller.Run(pollerCtx)
		}()
	} else {
		log.Info("KAFKA_BROKERS not set, payment event consumer disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("cart service listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down cart service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	pollerCancel()
	wg.Wait()
	if paymentPoller != nil {
		paymentPoller.Close()
	}
	log.Info("cart service stopped")
}
