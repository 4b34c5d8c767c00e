// Reepay Payments Microservice
//
// This is the main entry point for the payment processing service.
// It wires up all dependencies and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitstack/reepay-payments/config"
	"github.com/fitstack/reepay-payments/internal/adapters/boltstore"
	"github.com/fitstack/reepay-payments/internal/adapters/commerce"
	"github.com/fitstack/reepay-payments/internal/adapters/kafka"
	"github.com/fitstack/reepay-payments/internal/adapters/postgres"
	"github.com/fitstack/reepay-payments/internal/adapters/reepay"
	"github.com/fitstack/reepay-payments/internal/core/ports"
	"github.com/fitstack/reepay-payments/internal/core/service"
	"github.com/fitstack/reepay-payments/internal/handlers"
	"github.com/fitstack/reepay-payments/internal/logging"
	"github.com/fitstack/reepay-payments/internal/metrics"
)

func main() {
	// Load configuration
	cfg := config.MustLoad(".")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := logging.New(cfg.Logs)
	slog.SetDefault(logger)
	metrics.Setup(cfg.Metrics, logger)
	logger.Info("Starting Reepay Payments Service", "port", cfg.Server.Port, "core_url", cfg.Core.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire up dependencies (manual dependency injection)
	//
	// Infrastructure Layer
	payments, closeStore, err := openPaymentStore(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to open payment store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	reepayTimeout := time.Duration(cfg.Reepay.TimeoutMs) * time.Millisecond
	api := reepay.NewAPI(cfg.Reepay.APIURL, cfg.Reepay.PrivateKey, reepayTimeout)
	checkoutAPI := reepay.NewCheckoutAPI(cfg.Reepay.CheckoutAPIURL, cfg.Reepay.PrivateKey, reepayTimeout)
	orders := commerce.NewClient(cfg.Core.BaseURL, cfg.Core.APIKey, time.Duration(cfg.Core.TimeoutMs)*time.Millisecond)

	brokers := cfg.KafkaBrokers()
	var notifier ports.PaymentNotifier
	if len(brokers) > 0 {
		writer := kafka.NewWriter(brokers, cfg.Kafka.Topic.PaymentEvents)
		defer writer.Close()
		notifier = kafka.NewPaymentNotifier(writer)
	} else {
		logger.Warn("No Kafka brokers configured, payment events are not published")
	}

	// Service Layer
	settings := service.SettingsFromConfig(cfg.Reepay)
	reconciler := service.NewReconciler(payments, notifier, logger, settings.TestMode)
	paymentService := service.NewPaymentService(
		orders,
		service.NewSessionBuilder(checkoutAPI, settings, logger),
		service.NewReturnFlow(api, reconciler, logger),
		service.NewWebhookFlow(reepay.NewWebhookValidator(), service.NewOrderResolver(orders), settings, logger,
			service.InvoiceWebhookHandler(api, reconciler)),
		logger,
	)

	if len(brokers) > 0 {
		worker := service.NewCallbackWorker(orders, payments, api, reconciler, cfg.Callback.DisableTransition, logger)
		reader := kafka.NewReader(brokers, cfg.Kafka.Topic.Callbacks, cfg.Kafka.GroupID)
		defer reader.Close()
		go kafka.ReadCallbacks(ctx, reader, worker, logger)
	}

	// API Layer
	handler := handlers.NewPaymentHandler(paymentService, cfg.Checkout, logger)
	router := handlers.SetupRouter(handler, cfg, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
}

// openPaymentStore opens the configured payment store. The returned func
// releases it.
func openPaymentStore(ctx context.Context, cfg config.DatabaseConfig) (ports.PaymentRepository, func(), error) {
	switch cfg.Driver {
	case "postgres":
		if err := postgres.RunMigrations(cfg.DSN, cfg.MigrationsDir); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.GetPool(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewPaymentRepository(pool), pool.Close, nil
	default:
		store, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
