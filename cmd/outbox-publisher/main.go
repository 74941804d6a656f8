package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatcartlabs/chatcart-backend/internal/catalog"
	"github.com/chatcartlabs/chatcart-backend/internal/conversations"
	"github.com/chatcartlabs/chatcart-backend/internal/external"
	"github.com/chatcartlabs/chatcart-backend/internal/orders"
	"github.com/chatcartlabs/chatcart-backend/internal/settings"
	"github.com/chatcartlabs/chatcart-backend/pkg/config"
	"github.com/chatcartlabs/chatcart-backend/pkg/db"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/metrics"
	"github.com/chatcartlabs/chatcart-backend/pkg/migrate"
	"github.com/chatcartlabs/chatcart-backend/pkg/notifier"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox/idempotency"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox/registry"
	"github.com/chatcartlabs/chatcart-backend/pkg/pubsub"
	"github.com/chatcartlabs/chatcart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "outbox-publisher"

	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	notifierClient, err := notifier.NewClient(cfg.Notifier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build notifier client", err)
		os.Exit(1)
	}

	repo := outbox.NewRepository(dbClient.DB())
	dlqRepo := outbox.NewDLQRepository(dbClient.DB())
	outboxSvc := outbox.NewService(repo, logg)
	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		logg.Error(context.Background(), "failed to build event registry", err)
		os.Exit(1)
	}

	idempotencyMgr, err := idempotency.NewManager(redisClient, cfg.Outbox.ProcessedTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to build idempotency manager", err)
		os.Exit(1)
	}

	settingsRepo := settings.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	conversationsSvc, err := conversations.NewService(conversations.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to build conversation directory", err)
		os.Exit(1)
	}
	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient, catalog.NewStockAdjuster(), outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to build catalog service", err)
		os.Exit(1)
	}
	externalSvc, err := external.NewService(ordersRepo, conversationsSvc, catalogSvc, dbClient, outboxSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build external order service", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	outboxMetrics := metrics.NewOutboxMetrics(promRegistry)

	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		PubSub:        pubsubClient,
		Repository:    repo,
		Registry:      eventRegistry,
		DLQRepository: dlqRepo,
		Notifier:      notifierClient,
		Settings:      settingsRepo,
		External:      externalSvc,
		Idempotency:   idempotencyMgr,
		Metrics:       outboxMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox publisher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "outbox-publisher",
	})

	metricsServer := startMetricsServer(ctx, cfg.Outbox.MetricsPort, promRegistry, logg)
	defer shutdownMetricsServer(metricsServer, logg)

	logg.Info(ctx, "starting outbox publisher")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "outbox publisher shutting down gracefully")
}

func startMetricsServer(ctx context.Context, port string, registry *prometheus.Registry, logg *logger.Logger) *http.Server {
	if port == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	return server
}

func shutdownMetricsServer(server *http.Server, logg *logger.Logger) {
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "error shutting down metrics server", err)
	}
}
