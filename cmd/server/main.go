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

	"github.com/Universal-Commerce-Protocol/conformance/internal/cache"
	"github.com/Universal-Commerce-Protocol/conformance/internal/catalog"
	"github.com/Universal-Commerce-Protocol/conformance/internal/config"
	"github.com/Universal-Commerce-Protocol/conformance/internal/idempotency"
	"github.com/Universal-Commerce-Protocol/conformance/internal/payment"
	"github.com/Universal-Commerce-Protocol/conformance/internal/publisher"
	"github.com/Universal-Commerce-Protocol/conformance/internal/repository"
	"github.com/Universal-Commerce-Protocol/conformance/internal/service"
	"github.com/Universal-Commerce-Protocol/conformance/internal/validator"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	checkouthttp "github.com/Universal-Commerce-Protocol/conformance/internal/http"
)

func main() {
	log.Println("checkout-service starting...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	// Storage: postgres when DB_HOST is set, in-memory otherwise.
	var repo repository.SessionRepository
	if cfg.DBHost != "" {
		creds := &repository.Credentials{
			Host:              cfg.DBHost,
			Port:              cfg.DBPort,
			User:              cfg.DBUser,
			Password:          cfg.DBPassword,
			DBName:            cfg.DBName,
			MigrationsDirPath: cfg.MigrationsPath,
		}

		pgRepo, err := repository.NewPostgresRepository(creds)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := pgRepo.RunMigrations(creds); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")
		repo = pgRepo
	} else {
		log.Println("DB_HOST not set, using in-memory session store")
		repo = repository.NewMemoryRepository()
	}
	defer repo.Close()

	var sessionCache cache.SessionCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		sessionCache = cache.NewRedisCache(client)
		log.Printf("Session cache enabled at %s", cfg.RedisAddr)
	}

	var keys *idempotency.Store
	if cfg.IdempotencyDBPath != "" {
		store, err := idempotency.New(cfg.IdempotencyDBPath)
		if err != nil {
			log.Fatalf("Failed to open idempotency store: %v", err)
		}
		defer store.Close()
		keys = store
	}

	seed, err := config.LoadSeed(cfg.SeedPath)
	if err != nil {
		log.Fatalf("Failed to load seed data: %v", err)
	}
	cat := catalog.NewMemoryCatalog()
	defaultInstruments := seed.Apply(cat)
	log.Printf("Catalog seeded with %d products", len(seed.Products))

	processor := payment.NewBreakerProcessor(payment.NewStubProcessor(payment.SentinelDecider{}))

	svc := service.NewCheckoutService(
		repo,
		sessionCache,
		keys,
		validator.NewLineItemValidator(cat),
		validator.NewFulfillmentValidator(),
		processor,
		defaultInstruments,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
		go poller.Run(ctx)
		log.Printf("Outbox poller started, brokers: %v", cfg.KafkaBrokers)
	}

	handler := checkouthttp.NewCheckoutHandler(svc, cfg.MaxBodySize)
	router := checkouthttp.NewRouter(handler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "checkout-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("checkout-service stopped")
}
