package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"neurovault/infrastructure/config"
	"neurovault/infrastructure/di"
	"neurovault/infrastructure/persistence/schema"
	"neurovault/interfaces/http/rest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if cfg.Environment == "development" {
		if err := schema.EnsureTable(ctx, container.DynamoDB, cfg.DynamoDBTable); err != nil {
			log.Fatalf("Failed to ensure table: %v", err)
		}
		seeded, err := schema.SeedCategories(ctx, container.CategoryRepo)
		if err != nil {
			log.Fatalf("Failed to seed categories: %v", err)
		}
		if seeded > 0 {
			container.Logger.Info("Seeded default categories", zap.Int("count", seeded))
		}
	}

	router := rest.NewRouter(
		container.CommandBus,
		container.QueryBus,
		container.Config,
		container.RateLimiter,
		container.Logger,
	)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
