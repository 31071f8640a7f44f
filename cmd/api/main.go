// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/your-org/marketplace-core/internal/config"
	"github.com/your-org/marketplace-core/internal/infrastructure/database/postgres"
	"github.com/your-org/marketplace-core/internal/infrastructure/database/redis"
	"github.com/your-org/marketplace-core/internal/interfaces/http"
	"github.com/your-org/marketplace-core/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg)
	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	db, err := postgres.NewConnection(cfg, logr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, logr)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	healthCtx, cancelHealth := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.Health(healthCtx); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}
	if err := redisClient.Health(healthCtx); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}
	cancelHealth()

	migration := postgres.NewMigration(db.GetDB(), logr)
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.Printf("Warning: Data seeding failed: %v", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	log.Println("✅ All systems operational!")

	server := http.NewServer(cfg, db.GetDB(), redisClient.GetClient(), logr, registry)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("✅ Server shutdown completed")
}
