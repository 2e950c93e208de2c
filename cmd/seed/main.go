package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/database"
	"github.com/localnerve/storefront-data/internal/logging"
	"github.com/localnerve/storefront-data/internal/services"
	"go.uber.org/zap"
)

func main() {
	var envFilename string
	var clearData bool
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.BoolVar(&clearData, "clear", false, "delete all data instead of seeding")
	flag.Parse()

	usage := `
Seed the storefront database with the demo catalog, or clear it.

Usage:

seed [-h] [-f ENV_FILE_PATH] [-clear]

ENV_FILE_PATH: path to the .env file

example
  seed -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	syncLogs, err := logging.Init(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer syncLogs()

	db, err := database.Connect(cfg)
	if err != nil {
		zap.S().Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		zap.S().Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	if clearData {
		if err := services.ClearAll(ctx, db); err != nil {
			zap.S().Fatalf("Failed to clear data: %v", err)
		}
		return
	}

	result, err := services.SeedAll(ctx, db, services.StoreDefaultsFromConfig(cfg))
	if err != nil {
		zap.S().Fatalf("Failed to seed data: %v", err)
	}
	fmt.Printf("Created %d records: %+v\n", result.Total(), result)
}
