package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/config"
	"github.com/tienditamx/orderbot/internal/repository/postgres"
	"github.com/tienditamx/orderbot/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/price-order/main.go <draft_order_id>")
		os.Exit(1)
	}

	orderID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid draft order ID: %v\n", err)
		os.Exit(1)
	}

	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	pricingSvc := service.NewPricingService(repos, logger)

	result, err := pricingSvc.PriceDraftOrder(context.Background(), orderID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pricing failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Draft order %s priced\n\n", orderID)
	fmt.Printf("Subtotal:       $%s\n", result.Subtotal.StringFixed(2))
	fmt.Printf("Discount total: $%s\n", result.DiscountTotal.StringFixed(2))
	fmt.Printf("Final total:    $%s\n", result.FinalTotal.StringFixed(2))

	if len(result.Applied) > 0 {
		fmt.Println("\nApplied promotions:")
		for _, applied := range result.Applied {
			fmt.Printf("  - %s: -$%s\n", applied.Name, applied.Discount.StringFixed(2))
		}
	}
	if len(result.Upsell) > 0 {
		fmt.Println("\nUpsell hints:")
		for _, hint := range result.Upsell {
			fmt.Printf("  - %s\n", hint.Message)
		}
	}
}
