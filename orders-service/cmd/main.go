package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/fjod/tradecart/orders-service/internal/catalog"
	"github.com/fjod/tradecart/orders-service/internal/config"
	ordershttp "github.com/fjod/tradecart/orders-service/internal/http"
	"github.com/fjod/tradecart/orders-service/internal/repository"
	"github.com/fjod/tradecart/orders-service/internal/service"
	"github.com/fjod/tradecart/pkg/auth"
	"github.com/fjod/tradecart/pkg/logger"
	"github.com/fjod/tradecart/pkg/upstream"
	"github.com/fjod/tradecart/pkg/userapi"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New("orders-service")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repo, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		log.Fatal("mongodb connection failed", zap.Error(err))
	}
	defer func() { _ = repo.Close(context.Background()) }()
	log.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))

	carts := cartapi.NewClient(upstream.New("cart service", cfg.CartServiceURL, cfg.UpstreamTimeout))
	users := userapi.NewClient(upstream.New("user service", cfg.UserServiceURL, cfg.UpstreamTimeout), "")
	products := catalog.NewClient(upstream.New("product service", cfg.ProductServiceURL, cfg.UpstreamTimeout))
	capability := auth.NewCapabilitySigner(cfg.PaymentStatusTokenSecret, auth.DefaultCapabilityTTL)

	svc := service.NewOrderService(repo, carts, users, products, capability)
	handler := ordershttp.NewOrderHandler(svc)
	router := ordershttp.NewRouter(handler, auth.NewVerifier(cfg.AccessTokenSecret), log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("orders service listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down orders service")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("orders service stopped")
}
