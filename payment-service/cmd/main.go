package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/tradecart/orders-service/pkg/orderapi"
	"github.com/fjod/tradecart/payment-service/internal/config"
	"github.com/fjod/tradecart/payment-service/internal/gateway"
	paymenthttp "github.com/fjod/tradecart/payment-service/internal/http"
	"github.com/fjod/tradecart/payment-service/internal/publisher"
	"github.com/fjod/tradecart/payment-service/internal/repository"
	"github.com/fjod/tradecart/payment-service/internal/service"
	"github.com/fjod/tradecart/pkg/auth"
	"github.com/fjod/tradecart/pkg/logger"
	"github.com/fjod/tradecart/pkg/upstream"
	"github.com/fjod/tradecart/pkg/userapi"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New("payment-service")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		log.Fatal("failed to initialize repository", zap.Error(err))
	}
	defer func() { _ = repo.Close() }()

	if err := repo.RunMigrations(&cfg.DB); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var poller *publisher.OutboxPoller
	if len(cfg.KafkaBrokers) > 0 {
		poller = publisher.NewOutboxPoller(repo, log.Named("outbox"), cfg.KafkaBrokers...)
		go poller.Run(ctx)
		log.Info("outbox poller started", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		log.Warn("KAFKA_BROKERS not set, payment events stay in the outbox")
	}

	phonePe := gateway.NewPhonePe(upstream.New("payment gateway", cfg.PhonePeBaseURL, cfg.UpstreamTimeout), cfg.PhonePe)
	orders := orderapi.NewClient(upstream.New("order service", cfg.OrderServiceURL, cfg.UpstreamTimeout))
	users := userapi.NewClient(upstream.New("user service", cfg.UserServiceURL, cfg.UpstreamTimeout), cfg.UserServiceInternalKey)
	capability := auth.NewCapabilitySigner(cfg.PaymentStatusTokenSecret, auth.DefaultCapabilityTTL)

	svc := service.NewPaymentService(repo, phonePe, orders, users, capability, cfg.VerifyCallback)
	handler := paymenthttp.NewPaymentHandler(svc)
	router := paymenthttp.NewRouter(handler, auth.NewVerifier(cfg.AccessTokenSecret), log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("payment service listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down payment service")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	cancel()
	if poller != nil {
		poller.Close()
	}
	log.Info("payment service stopped")
}
