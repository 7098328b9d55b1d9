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

	"hostel-occupancy-backend/config"
	"hostel-occupancy-backend/internal/api"
	"hostel-occupancy-backend/internal/db"
	"hostel-occupancy-backend/internal/notify"
	"hostel-occupancy-backend/internal/occupancy"
	"hostel-occupancy-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "hostel-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	if err := db.SeedAdmin(gormDB, &cfg.Auth); err != nil {
		logger.Fatalf("failed to seed admin user: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Notification channel is optional; without it the engine still runs,
	// it just emits nothing.
	var dispatcher occupancy.Dispatcher
	var publisher *notify.RedisPublisher
	if cfg.Redis.Addr != "" {
		publisher = notify.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Channel)
		pool := notify.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, publisher, cfg.Redis.PublishTimeout)
		pool.Start(ctx)
		dispatcher = pool
		logger.Printf("notification worker pool started (size=%d)", cfg.WorkerPool.Size)
	} else {
		logger.Println("redis.addr not configured; occupancy events disabled")
	}

	engine := occupancy.NewEngine(appStore, dispatcher)

	router := api.NewRouter(cfg, appStore, engine)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	cancel()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Printf("error closing notification publisher: %v", err)
		}
	}

	logger.Println("Server gracefully stopped")
}
