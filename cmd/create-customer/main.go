package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/config"
	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/internal/repository/postgres"
)

func main() {
	phoneFlag := flag.String("phone", "", "WhatsApp number without the whatsapp: prefix, e.g. 5213314179343")
	nameFlag := flag.String("name", "", "Customer full name")
	greetingFlag := flag.String("greeting", "", "Preferred greeting name (optional)")
	flag.Parse()

	phone := strings.TrimSpace(*phoneFlag)
	name := strings.TrimSpace(*nameFlag)
	if phone == "" || name == "" {
		fmt.Println("Usage: go run cmd/create-customer/main.go --phone 5213314179343 --name \"Maria Lopez\" [--greeting Mari]")
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

	customer := &domain.Customer{
		Phone:    phone,
		Name:     name,
		IsActive: true,
	}
	if greeting := strings.TrimSpace(*greetingFlag); greeting != "" {
		customer.Greeting = &greeting
	}

	if err := repos.Customer.Create(context.Background(), customer); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create customer: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Customer created: %s (%s)\n", customer.ID, customer.Phone)
}
