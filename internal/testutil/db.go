package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/database"
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestJWTSecret signs tokens in tests
const TestJWTSecret = "test-secret-0123456789abcdef"

// Config returns a configuration backed by an in-memory sqlite database
func Config(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Port:                         "3000",
		PublicBaseURL:                "http://localhost:3000",
		DBType:                       "sqlite",
		DBDatabase:                   ":memory:",
		DBLogLevel:                   "silent",
		BlobPath:                     filepath.Join(t.TempDir(), "blobs.db"),
		UploadURLTTL:                 time.Hour,
		MaxUploadBytes:               1 << 20,
		OrderNumberPrefix:            "PTCH",
		DefaultShippingRate:          decimal.NewFromInt(99),
		DefaultFreeShippingThreshold: decimal.NewFromInt(999),
		DefaultContactEmail:          "contacto@patche.mx",
		DefaultLastOrderNumber:       1000,
		DownloadLinkTTL:              72 * time.Hour,
		DownloadLinkLimit:            5,
		JWTSecret:                    TestJWTSecret,
		JWTTTL:                       time.Hour,
		CleanupSchedule:              "@every 5m",
		LogLevel:                     "error",
		LogMode:                      "development",
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

// NewDB connects to a fresh in-memory database and migrates every model
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return ConnectDB(t, Config(t))
}

// ConnectDB connects with cfg and migrates every model
func ConnectDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()
	db, err := database.Connect(cfg)
	require.NoError(t, err, "Failed to create test database")
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.AutoMigrate(db), "Failed to migrate test database")
	return db
}

// NewStore opens a blob store in a temporary directory
func NewStore(t *testing.T) *storage.BoltStore {
	t.Helper()
	store, err := storage.OpenBolt(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err, "Failed to open test blob store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}
