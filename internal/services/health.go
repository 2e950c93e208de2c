package services

import (
	"context"
	"fmt"

	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	BlobStore    string            `json:"blobStore"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(key, message string, err error) {
	r.Status = "unhealthy"
	r.Details[key] = err.Error()
	if r.ErrorMessage != "" {
		r.ErrorMessage += "; "
	}
	r.ErrorMessage += fmt.Sprintf("%s: %v", message, err)
}

// HealthCheck checks the database and the blob store
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, store storage.BlobStore) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	switch {
	case err != nil:
		result.Database = "error"
		result.fail("database_error", "Database connection error", err)
	default:
		if err := sqlDB.PingContext(ctx); err != nil {
			result.Database = "unreachable"
			result.fail("database_ping_error", "Database ping failed", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	if store == nil {
		result.BlobStore = "error"
		result.fail("blob_store_error", "Blob store unavailable", fmt.Errorf("not opened"))
	} else if err := store.Ping(ctx); err != nil {
		result.BlobStore = "unreachable"
		result.fail("blob_store_error", "Blob store check failed", err)
	} else {
		result.BlobStore = "ok"
		result.Details["blob_path"] = cfg.BlobPath
	}

	if result.Status != "healthy" {
		zap.S().Warnf("Health check failed: %s", result.ErrorMessage)
	}

	return result
}
