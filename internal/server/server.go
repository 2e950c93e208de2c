// server.go
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

package server

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/handlers"
	"github.com/localnerve/storefront-data/internal/metrics"
	"github.com/localnerve/storefront-data/internal/middleware"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// Options tunes the app for its environment
type Options struct {
	// AccessLog enables the fiber request logger
	AccessLog bool
}

var (
	prometheus     *fiberprometheus.FiberPrometheus
	prometheusOnce sync.Once
)

// request metrics register with the default registry, which allows one instance per process
func requestMetrics() *fiberprometheus.FiberPrometheus {
	prometheusOnce.Do(func() {
		prometheus = fiberprometheus.New(metrics.Namespace)
	})
	return prometheus
}

// StorageOptions derives the blob URL settings from cfg
func StorageOptions(cfg *config.Config) services.StorageOptions {
	return services.StorageOptions{
		PublicBaseURL: cfg.PublicBaseURL,
		UploadURLTTL:  cfg.UploadURLTTL,
	}
}

// OrderOptions derives the order placement settings from cfg
func OrderOptions(cfg *config.Config) services.OrderOptions {
	return services.OrderOptions{
		OrderNumberPrefix: cfg.OrderNumberPrefix,
		Downloads: services.DownloadOptions{
			TTL:   cfg.DownloadLinkTTL,
			Limit: cfg.DownloadLinkLimit,
		},
	}
}

// AuthOptions derives the token settings from cfg
func AuthOptions(cfg *config.Config) services.AuthOptions {
	return services.AuthOptions{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.JWTTTL,
	}
}

// NewApp builds the fiber app with every route mounted under /api
func NewApp(cfg *config.Config, db *gorm.DB, store storage.BlobStore, opts Options) *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if cfg.MaxUploadBytes > bodyLimit {
		bodyLimit = cfg.MaxUploadBytes
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
	})

	// Global middleware
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(compress.New())

	// Prometheus metrics
	prom := requestMetrics()
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	auth := AuthOptions(cfg)
	admin := middleware.AuthAdmin(auth)
	storageOpts := StorageOptions(cfg)
	defaults := services.StoreDefaultsFromConfig(cfg)

	categoryHandler := &handlers.CategoryHandler{DB: db}
	collectionHandler := &handlers.CollectionHandler{DB: db}
	productHandler := &handlers.ProductHandler{DB: db}
	variantHandler := &handlers.VariantHandler{DB: db}
	fileHandler := &handlers.DigitalFileHandler{DB: db, Store: store}
	settingsHandler := &handlers.SettingsHandler{DB: db, Defaults: defaults}
	storageHandler := &handlers.StorageHandler{Store: store, Options: storageOpts, MaxUploadBytes: cfg.MaxUploadBytes}
	orderHandler := &handlers.OrderHandler{DB: db, Store: store, Options: OrderOptions(cfg), Storage: storageOpts}
	adminHandler := &handlers.AdminHandler{Config: cfg, DB: db, Store: store, Auth: auth, Defaults: defaults}

	api.Get("/health", adminHandler.Health)

	// Categories (static paths before :id)
	api.Get("/categories", categoryHandler.List)
	api.Get("/categories/slug/:slug", categoryHandler.GetBySlug)
	api.Post("/categories/reorder", admin, categoryHandler.Reorder)
	api.Get("/categories/:id", categoryHandler.GetByID)
	api.Post("/categories", admin, categoryHandler.Create)
	api.Patch("/categories/:id", admin, categoryHandler.Update)
	api.Delete("/categories/:id", admin, categoryHandler.Remove)

	// Collections
	api.Get("/collections", collectionHandler.List)
	api.Get("/collections/slug/:slug", collectionHandler.GetBySlug)
	api.Get("/collections/:id/products", collectionHandler.Products)
	api.Get("/collections/:id", collectionHandler.GetByID)
	api.Post("/collections", admin, collectionHandler.Create)
	api.Patch("/collections/:id", admin, collectionHandler.Update)
	api.Delete("/collections/:id", admin, collectionHandler.Remove)
	api.Post("/collections/:id/toggle", admin, collectionHandler.Toggle)

	// Products
	api.Get("/products", productHandler.List)
	api.Get("/products/search", productHandler.Search)
	api.Get("/products/slug/:slug", productHandler.GetBySlug)
	api.Get("/products/:id/variants", productHandler.Variants)
	api.Get("/products/:id/files", productHandler.Files)
	api.Get("/products/:id", productHandler.GetByID)
	api.Post("/products", admin, productHandler.Create)
	api.Patch("/products/:id", admin, productHandler.Update)
	api.Delete("/products/:id", admin, productHandler.Remove)
	api.Post("/products/:id/toggle", admin, productHandler.Toggle)

	// Variants
	api.Get("/variants/sku/:sku", variantHandler.GetBySku)
	api.Get("/variants/:id", variantHandler.GetByID)
	api.Post("/variants", admin, variantHandler.Create)
	api.Patch("/variants/:id", admin, variantHandler.Update)
	api.Put("/variants/:id/stock", admin, variantHandler.UpdateStock)
	api.Post("/variants/:id/decrement", variantHandler.Decrement)
	api.Delete("/variants/:id", admin, variantHandler.Remove)

	// Digital files
	api.Get("/files/:id", fileHandler.GetByID)
	api.Post("/files", admin, fileHandler.Create)
	api.Patch("/files/:id", admin, fileHandler.Update)
	api.Delete("/files/:id", admin, fileHandler.Remove)

	// Store settings
	api.Get("/settings", settingsHandler.Get)
	api.Post("/settings/initialize", admin, settingsHandler.Initialize)
	api.Patch("/settings", admin, settingsHandler.Update)
	api.Post("/settings/next-order-number", admin, settingsHandler.NextOrderNumber)

	// Storage
	api.Post("/storage/upload-url", admin, storageHandler.GenerateUploadURL)
	api.Post("/storage/upload/:token", storageHandler.Upload)
	api.Get("/storage/files/:id", storageHandler.Serve)
	api.Delete("/storage/files/:id", admin, storageHandler.Delete)
	api.Get("/storage/url/:id", admin, storageHandler.GetURL)
	api.Post("/storage/urls", admin, storageHandler.GetURLs)

	// Orders and downloads
	api.Post("/orders", orderHandler.Create)
	api.Get("/orders", admin, orderHandler.List)
	api.Get("/orders/number/:number", admin, orderHandler.GetByNumber)
	api.Get("/orders/:id/downloads", admin, orderHandler.Downloads)
	api.Post("/orders/:id/downloads", admin, orderHandler.IssueDownloads)
	api.Get("/orders/:id", admin, orderHandler.GetByID)
	api.Patch("/orders/:id/status", admin, orderHandler.UpdateStatus)
	api.Patch("/orders/:id/tracking", admin, orderHandler.SetTracking)
	api.Get("/downloads/:token", orderHandler.Redeem)

	// Admin
	api.Post("/admin/login", adminHandler.Login)
	api.Post("/admin/users", admin, adminHandler.CreateUser)
	api.Post("/admin/seed", admin, adminHandler.Seed)
	api.Post("/admin/clear", admin, adminHandler.Clear)
	api.Get("/admin/cleanups", admin, adminHandler.Cleanups)
	api.Post("/admin/cleanups/sweep", admin, adminHandler.Sweep)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	return app
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	return utils.ServiceErrorResponse(c, err, "unknown")
}
