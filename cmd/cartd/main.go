package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/playcv/cartd/internal/config"
	"github.com/playcv/cartd/internal/httpapi"
	"github.com/playcv/cartd/internal/journal"
	"github.com/playcv/cartd/internal/provider"
	"github.com/playcv/cartd/internal/publisher"
	"github.com/playcv/cartd/internal/remote"
	"github.com/playcv/cartd/internal/session"
	"github.com/playcv/cartd/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cart storage: Redis when configured, in-memory otherwise.
	var storage store.Storage
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		storage = store.NewRedisStorage(redisClient)
		log.Info("using redis cart storage", zap.String("addr", cfg.Redis.Addr))
	} else {
		storage = store.NewMemoryStorage()
		log.Info("using in-memory cart storage")
	}

	// Payment attempt journal.
	creds := &journal.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.Postgres.MigrationsDirPath,
	}
	journalRepo, err := journal.NewPostgresRepository(creds)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer journalRepo.Close()
	if err := journalRepo.RunMigrations(creds); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("connected to postgres", zap.String("host", cfg.Postgres.Host))

	registry := session.NewRegistry(session.Deps{
		Storage:     storage,
		Cart:        remote.NewCartClient(cfg.MarketplaceBaseURL, cfg.RequestTimeout),
		Payments:    remote.NewPaymentClient(cfg.MarketplaceBaseURL, cfg.RequestTimeout),
		Provider:    provider.NewPaystackClient(cfg.Paystack.BaseAPIURL, cfg.Paystack.SecretKey, cfg.RequestTimeout),
		Journal:     journalRepo,
		Currency:    cfg.Currency,
		PaymentType: cfg.PaymentType,
		Log:         log,
	})

	// Outbox publisher, only with brokers configured.
	if len(cfg.Kafka.Brokers) > 0 {
		poller := publisher.NewOutboxPoller(journalRepo, log, cfg.Kafka.Brokers...)
		defer poller.Close()
		go poller.Run(ctx)
		log.Info("outbox publisher started", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	handler := httpapi.NewHandler(registry, cfg.RequestTimeout, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpapi.AuthMiddleware)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Group(handler.Routes)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: otelhttp.NewHandler(r, "cartd"),
	}

	go func() {
		log.Info("cartd listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down cartd")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown error", zap.Error(err))
	}
	log.Info("cartd stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
