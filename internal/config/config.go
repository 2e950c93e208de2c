package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port          string
	PublicBaseURL string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlite-purego, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string

	// Blob storage
	BlobPath       string
	UploadURLTTL   time.Duration
	MaxUploadBytes int

	// Store defaults, applied when settings are initialized
	OrderNumberPrefix            string
	DefaultShippingRate          decimal.Decimal
	DefaultFreeShippingThreshold decimal.Decimal
	DefaultContactEmail          string
	DefaultLastOrderNumber       int64

	// Digital delivery
	DownloadLinkTTL   time.Duration
	DownloadLinkLimit int

	// Admin authentication
	JWTSecret     string
	JWTTTL        time.Duration
	AdminUsername string
	AdminPassword string

	// Background jobs
	CleanupSchedule string

	// Logging
	LogLevel string
	LogMode  string
	LogFile  string
}

// Load loads configuration from environment variables.
// When ENV_FILE is set, that file is loaded into the environment first.
func Load() (*Config, error) {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	port := getEnv("PORT", "3000")
	cfg := &Config{
		Port:                         port,
		PublicBaseURL:                strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		DBType:                       strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DBHost:                       getEnv("DB_HOST", "localhost"),
		DBPort:                       getEnv("DB_PORT", ""),
		DBDatabase:                   getEnv("DB_DATABASE", ""),
		DBUser:                       getEnv("DB_USER", ""),
		DBPassword:                   getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:            getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		DBLogLevel:                   getEnv("DB_LOG_LEVEL", "warn"),
		BlobPath:                     getEnv("BLOB_PATH", "data/blobs.db"),
		UploadURLTTL:                 getEnvAsDuration("UPLOAD_URL_TTL", time.Hour),
		MaxUploadBytes:               getEnvAsInt("MAX_UPLOAD_BYTES", 200<<20),
		OrderNumberPrefix:            getEnv("ORDER_NUMBER_PREFIX", "PTCH"),
		DefaultShippingRate:          getEnvAsDecimal("DEFAULT_SHIPPING_RATE", decimal.NewFromInt(99)),
		DefaultFreeShippingThreshold: getEnvAsDecimal("DEFAULT_FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(999)),
		DefaultContactEmail:          getEnv("DEFAULT_CONTACT_EMAIL", "contacto@patche.mx"),
		DefaultLastOrderNumber:       int64(getEnvAsInt("DEFAULT_LAST_ORDER_NUMBER", 1000)),
		DownloadLinkTTL:              getEnvAsDuration("DOWNLOAD_LINK_TTL", 72*time.Hour),
		DownloadLinkLimit:            getEnvAsInt("DOWNLOAD_LINK_LIMIT", 5),
		JWTSecret:                    getEnv("JWT_SECRET", ""),
		JWTTTL:                       getEnvAsDuration("JWT_TTL", 12*time.Hour),
		AdminUsername:                getEnv("ADMIN_USERNAME", ""),
		AdminPassword:                getEnv("ADMIN_PASSWORD", ""),
		CleanupSchedule:              getEnv("CLEANUP_SCHEDULE", "@every 5m"),
		LogLevel:                     getEnv("LOG_LEVEL", "info"),
		LogMode:                      getEnv("LOG_MODE", "development"),
		LogFile:                      getEnv("LOG_FILE", ""),
	}

	if cfg.DBPort == "" {
		cfg.DBPort = defaultDBPort(cfg.DBType)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if !c.IsSQLite() && c.DBUser == "" {
		return fmt.Errorf("DB_USER is required for %s", c.DBType)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if c.DownloadLinkLimit <= 0 {
		return fmt.Errorf("DOWNLOAD_LINK_LIMIT must be positive")
	}
	if c.DefaultShippingRate.IsNegative() || c.DefaultFreeShippingThreshold.IsNegative() {
		return fmt.Errorf("default shipping values must not be negative")
	}
	return nil
}

// IsSQLite reports whether the configured driver is one of the sqlite variants
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite-purego"
}

func defaultDBPort(dbType string) string {
	switch dbType {
	case "postgres", "postgresql":
		return "5432"
	case "sqlserver", "mssql":
		return "1433"
	default:
		return "3306"
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := cast.ToIntE(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("90m") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := cast.ToInt64E(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := cast.ToDurationE(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
