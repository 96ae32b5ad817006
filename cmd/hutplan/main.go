package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"hutplan-backend/config"
	"hutplan-backend/internal/api"
	"hutplan-backend/internal/db"
	"hutplan-backend/internal/holiday"
	"hutplan-backend/internal/mw"
	"hutplan-backend/internal/notification"
	"hutplan-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "hutplan ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	webpushOptions := notification.Options(cfg.Push.PublicKey, cfg.Push.PrivateKey, cfg.Push.Subject, cfg.Push.TTL)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Notification sinks
	var sinks []notification.Sink
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		sinks = append(sinks, notification.NewPushSink(gormDB, webpushOptions))
	} else {
		logger.Println("VAPID keys are not configured, web push is disabled")
	}
	if cfg.AMQP.URL != "" {
		sinks = append(sinks, notification.NewAMQPSink(cfg.AMQP.URL, cfg.AMQP.Queue))
		logger.Printf("publishing assignment events to queue %s", cfg.AMQP.Queue)
	}
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, sinks...)
	workerPool.Start(ctx)

	holidaySvc := holiday.NewService(cfg.Holidays)
	go holidaySvc.Run(ctx)

	// Response cache: redis when reachable, in-memory otherwise.
	responseStore := mw.NewMemoryStore(cfg.Cache.TTL)
	if cfg.Cache.RedisAddr != "" {
		if rdb := mw.NewRedisClient(cfg.Cache.RedisAddr, cfg.Cache.RedisDB); rdb != nil {
			defer rdb.Close()
			responseStore = mw.NewRedisStore(rdb, cfg.Cache.Prefix)
			logger.Printf("response cache uses redis at %s", cfg.Cache.RedisAddr)
		}
	}

	// Initialize router
	handler := api.NewHandler(appStore, webpushOptions, cfg.Layout, holidaySvc, workerPool)
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimit: rate.Limit(cfg.Server.RateLimitPerSec),
		RateBurst: cfg.Server.RateLimitBurst,
		Cache:     responseStore,
		CacheTTL:  cfg.Cache.TTL,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
