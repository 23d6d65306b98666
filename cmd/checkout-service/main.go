package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-marketplace/internal/auth"
	"ms-marketplace/internal/cart"
	"ms-marketplace/internal/cart/cart_api"
	cartdb "ms-marketplace/internal/cart/db"
	"ms-marketplace/internal/checkout"
	"ms-marketplace/internal/checkout/checkout_api"
	checkoutredis "ms-marketplace/internal/checkout/redis"
	"ms-marketplace/internal/config"
	"ms-marketplace/internal/kafka"
	"ms-marketplace/internal/ledger"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/receipt"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	// --- PostgreSQL ---
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	cartdb.Migrate(bunDB)
	cartdb.SeedItems(bunDB)

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	// --- Kafka ---
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		if !cfg.Kafka.MockMode {
			topics := []string{cfg.Kafka.Topics.TransactionRecorded, cfg.Kafka.Topics.CartPaid}
			if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
				log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
			}
		}
		producer = kafka.NewProducer(cfg.Kafka, log)
		defer producer.Close()
	}

	// --- Payment gateway ---
	var gateway checkout.Gateway
	if cfg.Stripe.SecretKey != "" {
		stripeGateway, err := checkout.NewStripeGateway(cfg.Stripe.SecretKey, log)
		if err != nil {
			log.Fatal("STRIPE", fmt.Sprintf("Failed to initialize gateway: %v", err))
		}
		gateway = stripeGateway
	} else {
		log.Warn("STRIPE", "STRIPE_SECRET_KEY not set, using stub gateway")
		gateway = checkout.StubGateway{}
	}

	// --- Services ---
	store := &cartdb.DB{Bun: bunDB}
	ledgerDB := &ledger.DB{Bun: bunDB}

	registry := checkout.NewRegistry(
		checkout.NewOfflineStrategy(log),
		checkout.NewOnlineStrategy(gateway, cfg.Stripe.Currency, log),
	)

	lock := checkoutredis.NewLock(redisClient, cfg.Checkout.LockTTL)

	var events checkout.EventPublisher
	if producer != nil {
		events = producer
	}

	checkoutService := checkout.NewService(store, ledgerDB, store, registry, lock, events, log)
	checkoutService.LockWait = cfg.Checkout.LockWait
	checkoutService.LockRetry = cfg.Checkout.LockRetry

	cartService := cart.NewCartService(store, log)
	ledgerService := ledger.NewService(ledgerDB, store)
	receipts := receipt.NewGenerator(cfg.Receipt.QRSecret, cfg.Receipt.FontPath)

	cartHandler := cart_api.NewHandler(cartService, log)
	checkoutHandler := checkout_api.NewHandler(checkoutService, ledgerService, receipts, log)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(auth.Middleware())

	r.Post("/api/v1/carts", cartHandler.CreateCart)
	r.Get("/api/v1/carts", cartHandler.ListCarts)
	r.Get("/api/v1/carts/{cartID}", cartHandler.GetCart)
	r.Put("/api/v1/carts/{cartID}", cartHandler.UpdateCart)
	r.Delete("/api/v1/carts/{cartID}", cartHandler.DeleteCart)

	r.Get("/api/v1/carts/{cartID}/total", checkoutHandler.GetCartTotal)
	r.Post("/api/v1/carts/{cartID}/pay", checkoutHandler.Pay)
	r.Get("/api/v1/carts/{cartID}/transactions", checkoutHandler.ListTransactionsByCart)
	r.Get("/api/v1/transactions", checkoutHandler.ListTransactionsByUser)
	r.Get("/api/v1/transactions/{txID}/receipt", checkoutHandler.GetReceipt)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Checkout service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received, cleaning up")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("SERVER", "Server exited gracefully")
}
