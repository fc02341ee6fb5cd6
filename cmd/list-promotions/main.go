package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/config"
	"github.com/tienditamx/orderbot/internal/repository/postgres"
)

func main() {
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

	promotions, err := repos.Promotion.GetActive(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load promotions: %v\n", err)
		os.Exit(1)
	}

	if len(promotions) == 0 {
		fmt.Println("No active promotions (check logs for skipped malformed rows)")
		return
	}

	fmt.Printf("Active promotions (%d):\n\n", len(promotions))
	for _, promo := range promotions {
		fmt.Printf("%s  [%s]  priority=%d\n", promo.Name, promo.Type, promo.PriorityWeight)
		fmt.Printf("  id:     %s\n", promo.ID)
		fmt.Printf("  reward: %s %s\n", promo.Reward.Type, promo.Reward.Value)
		if promo.MaxDiscountCap != nil {
			fmt.Printf("  cap:    $%s\n", promo.MaxDiscountCap.StringFixed(2))
		}
		fmt.Println()
	}
}
