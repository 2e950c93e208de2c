// main.go
//
// Storefront data service for catalog, orders and digital delivery
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of storefront-data.
// storefront-data is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// storefront-data is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with storefront-data.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/database"
	"github.com/localnerve/storefront-data/internal/jobs"
	"github.com/localnerve/storefront-data/internal/logging"
	"github.com/localnerve/storefront-data/internal/server"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/storage"
	"go.uber.org/zap"

	_ "github.com/localnerve/storefront-data/docs/api" // Swagger docs
)

// @title Storefront Data API
// @version 1.0.0
// @description Catalog, orders and digital delivery for a small storefront
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/storefront-data
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
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

	store, err := storage.OpenBolt(cfg.BlobPath)
	if err != nil {
		zap.S().Fatalf("Failed to open blob store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := services.InitializeSettings(ctx, db, services.StoreDefaultsFromConfig(cfg)); err != nil {
		zap.S().Fatalf("Failed to initialize store settings: %v", err)
	}
	if err := services.EnsureAdminUser(ctx, db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		zap.S().Fatalf("Failed to create bootstrap admin: %v", err)
	}

	scheduler, err := jobs.New(db, store, cfg.CleanupSchedule)
	if err != nil {
		zap.S().Fatalf("Failed to schedule jobs: %v", err)
	}
	scheduler.Start()

	app := server.NewApp(cfg, db, store, server.Options{AccessLog: true})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		zap.S().Info("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	zap.S().Infof("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		zap.S().Errorf("Server stopped with error: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)

	zap.S().Info("Server stopped")
}
