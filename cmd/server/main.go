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

	"github.com/tienditamx/orderbot/internal/ai"
	"github.com/tienditamx/orderbot/internal/api"
	"github.com/tienditamx/orderbot/internal/config"
	"github.com/tienditamx/orderbot/internal/repository/postgres"
	"github.com/tienditamx/orderbot/internal/service"
	"github.com/tienditamx/orderbot/internal/whatsapp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting ordering assistant server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories and services
	repos := postgres.NewRepositories(db, logger)
	orders := service.NewOrderService(repos, logger)
	pricingSvc := service.NewPricingService(repos, logger)
	classifier := ai.NewClient(cfg.OpenAI, logger)
	sender := whatsapp.NewClient(cfg.Twilio, logger)
	conversation := service.NewConversationService(repos, orders, pricingSvc, classifier, logger)

	// Initialize router
	router := api.NewRouter(cfg, repos, &api.Dependencies{
		Conversation: conversation,
		Orders:       orders,
		Pricing:      pricingSvc,
		Sender:       sender,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
