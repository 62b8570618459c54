package main

import (
	"context"
	"fmt"
	"os"

	"healthcare-booking/config"
	"healthcare-booking/database"
	"healthcare-booking/database/seeders"
	"healthcare-booking/logger"
	"healthcare-booking/services/accounts"
	"healthcare-booking/services/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run tools/migrate.go migrate   - Create or update tables, indexes and constraints")
		fmt.Println("  go run tools/migrate.go seed      - Create the administrator from ADMIN_* settings")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Configure(cfg)
	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "migrate":
		fmt.Println("🚀 Running database migrations...")
		if err := database.Migrate(db); err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Migration completed successfully!")

	case "seed":
		fmt.Println("🌱 Seeding database...")
		if err := seeders.SeedAdmin(context.Background(), accounts.NewGormStore(db), auth.BcryptHasher{}, cfg); err != nil {
			fmt.Printf("❌ Seeding failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Seeding completed successfully!")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Available commands: migrate, seed")
	}
}
