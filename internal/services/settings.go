package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/metrics"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxOrderNumberRetries bounds retries after a lost compare-and-swap on the counter
const maxOrderNumberRetries = 5

// StoreDefaults are the values a fresh settings row starts with
type StoreDefaults struct {
	ShippingRate          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ContactEmail          string
	LastOrderNumber       int64
	OrderNumberPrefix     string
}

// DefaultStoreDefaults are the built-in store defaults
func DefaultStoreDefaults() StoreDefaults {
	return StoreDefaults{
		ShippingRate:          decimal.NewFromInt(99),
		FreeShippingThreshold: decimal.NewFromInt(999),
		ContactEmail:          "contacto@patche.mx",
		LastOrderNumber:       1000,
		OrderNumberPrefix:     "PTCH",
	}
}

// StoreDefaultsFromConfig reads the store defaults from configuration
func StoreDefaultsFromConfig(cfg *config.Config) StoreDefaults {
	return StoreDefaults{
		ShippingRate:          cfg.DefaultShippingRate,
		FreeShippingThreshold: cfg.DefaultFreeShippingThreshold,
		ContactEmail:          cfg.DefaultContactEmail,
		LastOrderNumber:       cfg.DefaultLastOrderNumber,
		OrderNumberPrefix:     cfg.OrderNumberPrefix,
	}
}

// SettingsUpdate changes any subset of the editable settings
type SettingsUpdate struct {
	ShippingRate          *decimal.Decimal `json:"shippingRate,omitempty"`
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold,omitempty"`
	ContactEmail          *string          `json:"contactEmail,omitempty"`
}

// GetSettings returns the settings row, or nil when the store is not initialized
func GetSettings(ctx context.Context, db *gorm.DB) (*models.StoreSettings, error) {
	var settings models.StoreSettings
	err := quiet(ctx, db).Where("id = ?", models.StoreSettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// InitializeSettings creates the settings row from defaults unless it exists.
// It returns the settings id either way.
func InitializeSettings(ctx context.Context, db *gorm.DB, defaults StoreDefaults) (uint, error) {
	_, err := initializeSettings(ctx, db, defaults)
	if err != nil {
		return 0, err
	}
	return models.StoreSettingsID, nil
}

// initializeSettings reports whether a new row was created
func initializeSettings(ctx context.Context, db *gorm.DB, defaults StoreDefaults) (bool, error) {
	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.StoreSettings{}, "id = ?", models.StoreSettingsID)
		if err != nil || found {
			return err
		}

		settings := models.StoreSettings{
			ID:                    models.StoreSettingsID,
			ShippingRate:          defaults.ShippingRate,
			FreeShippingThreshold: defaults.FreeShippingThreshold,
			ContactEmail:          defaults.ContactEmail,
			LastOrderNumber:       defaults.LastOrderNumber,
		}
		if err := tx.Create(&settings).Error; err != nil {
			// a concurrent initializer won the insert
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// UpdateSettings changes the supplied settings fields
func UpdateSettings(ctx context.Context, db *gorm.DB, update SettingsUpdate) error {
	updates := map[string]interface{}{}
	if update.ShippingRate != nil {
		if update.ShippingRate.IsNegative() {
			return invalid("shippingRate must not be negative")
		}
		updates["shipping_rate"] = *update.ShippingRate
	}
	if update.FreeShippingThreshold != nil {
		if update.FreeShippingThreshold.IsNegative() {
			return invalid("freeShippingThreshold must not be negative")
		}
		updates["free_shipping_threshold"] = *update.FreeShippingThreshold
	}
	if update.ContactEmail != nil {
		if !strings.Contains(*update.ContactEmail, "@") {
			return invalid("contactEmail must be an e-mail address")
		}
		updates["contact_email"] = *update.ContactEmail
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var settings models.StoreSettings
		if err := forUpdate(tx).Where("id = ?", models.StoreSettingsID).First(&settings).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotInitialized, "Store settings not initialized")
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.StoreSettings{}).Where("id = ?", models.StoreSettingsID).Updates(updates).Error
	})
}

// GetNextOrderNumber allocates the next order number and formats it with prefix
func GetNextOrderNumber(ctx context.Context, db *gorm.DB, prefix string) (string, error) {
	var next int64
	err := withOrderNumberRetry(ctx, func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, n, err := allocateOrderNumberTx(tx)
			next = n
			return err
		})
	})
	if err != nil {
		return "", err
	}
	metrics.OrderNumbersAllocated.Inc()
	return FormatOrderNumber(prefix, next), nil
}

// FormatOrderNumber renders n as a customer-facing order number
func FormatOrderNumber(prefix string, n int64) string {
	return fmt.Sprintf("#%s%d", prefix, n)
}

// allocateOrderNumberTx increments the counter with a compare-and-swap guard and
// returns the settings as read together with the allocated number.
// A lost race returns ErrConflict; the caller retries the whole transaction.
func allocateOrderNumberTx(tx *gorm.DB) (*models.StoreSettings, int64, error) {
	var settings models.StoreSettings
	if err := forUpdate(tx).Where("id = ?", models.StoreSettingsID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, newError(ErrNotInitialized, "Store settings not initialized")
		}
		return nil, 0, err
	}

	next := settings.LastOrderNumber + 1
	result := tx.Model(&models.StoreSettings{}).
		Where("id = ? AND last_order_number = ?", models.StoreSettingsID, settings.LastOrderNumber).
		Update("last_order_number", next)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, 0, newError(ErrConflict, "Order number %d was allocated concurrently", next)
	}
	return &settings, next, nil
}

// withOrderNumberRetry runs op again with exponential backoff while it reports ErrConflict
func withOrderNumberRetry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, maxOrderNumberRetries), ctx)

	return backoff.RetryNotify(func() error {
		err := op()
		if err == nil || errors.Is(err, ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, retry, func(err error, wait time.Duration) {
		metrics.OrderNumberConflicts.Inc()
		zap.S().Debugf("Retrying order number allocation in %s: %v", wait, err)
	})
}
