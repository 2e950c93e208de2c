package services

import (
	"context"
	"errors"
	"math"

	"github.com/localnerve/storefront-data/internal/metrics"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VariantInput is the payload for creating a variant. A nil Price inherits the product base price.
type VariantInput struct {
	ProductID  string                   `json:"productId"`
	Name       string                   `json:"name"`
	Attributes models.VariantAttributes `json:"attributes"`
	Price      *decimal.Decimal         `json:"price,omitempty"`
	Stock      int                      `json:"stock"`
	SKU        string                   `json:"sku"`
}

// VariantPatch is a partial variant update
type VariantPatch struct {
	Name       types.Optional[string]                   `json:"name"`
	Attributes types.Optional[models.VariantAttributes] `json:"attributes"`
	Price      types.Optional[decimal.Decimal]          `json:"price"`
	Stock      types.Optional[int]                      `json:"stock"`
	SKU        types.Optional[string]                   `json:"sku"`
}

// ListVariantsByProduct returns the variants of a product
func ListVariantsByProduct(ctx context.Context, db *gorm.DB, productID string) ([]models.Variant, error) {
	variants := []models.Variant{}
	err := quiet(ctx, db).Where("product_id = ?", productID).Order("sku ASC").Find(&variants).Error
	return variants, err
}

// GetVariantByID finds a variant by id
func GetVariantByID(ctx context.Context, db *gorm.DB, id string) (*models.Variant, error) {
	var variant models.Variant
	if err := quiet(ctx, db).Where("id = ?", id).First(&variant).Error; err != nil {
		return nil, lookupError(err, "Variant")
	}
	return &variant, nil
}

// GetVariantBySku finds a variant by its unique SKU
func GetVariantBySku(ctx context.Context, db *gorm.DB, sku string) (*models.Variant, error) {
	var variant models.Variant
	if err := quiet(ctx, db).Where("sku = ?", sku).First(&variant).Error; err != nil {
		return nil, lookupError(err, "Variant")
	}
	return &variant, nil
}

// CreateVariant inserts a variant of an existing product
func CreateVariant(ctx context.Context, db *gorm.DB, input VariantInput) (string, error) {
	if err := requireText("name", input.Name); err != nil {
		return "", err
	}
	if err := requireText("sku", input.SKU); err != nil {
		return "", err
	}
	if input.Stock < 0 {
		return "", invalid("Stock cannot be negative")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return "", invalid("price must not be negative")
	}

	variant := models.Variant{
		ProductID:  input.ProductID,
		Name:       input.Name,
		Attributes: models.NewJSON(input.Attributes),
		Stock:      input.Stock,
		SKU:        input.SKU,
	}
	if input.Price != nil {
		variant.Price = decimal.NewNullDecimal(*input.Price)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Product{}, "id = ?", input.ProductID)
		if err != nil {
			return err
		}
		if !found {
			return notFound("Product")
		}

		taken, err := exists(tx, &models.Variant{}, "sku = ?", input.SKU)
		if err != nil {
			return err
		}
		if taken {
			return newError(ErrDuplicate, "Variant with SKU %q already exists", input.SKU)
		}
		return writeError(tx.Create(&variant).Error, "Variant with SKU %q already exists", input.SKU)
	})
	if err != nil {
		return "", err
	}
	return variant.ID, nil
}

// UpdateVariant applies a partial update
func UpdateVariant(ctx context.Context, db *gorm.DB, id string, patch VariantPatch) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var variant models.Variant
		if err := forUpdate(tx).Where("id = ?", id).First(&variant).Error; err != nil {
			return lookupError(err, "Variant")
		}

		updates := map[string]interface{}{}
		if patch.Name.Set {
			if patch.Name.Null || requireText("name", patch.Name.Value) != nil {
				return invalid("name is required")
			}
			updates["name"] = patch.Name.Value
		}
		if patch.Attributes.Set {
			updates["attributes"] = models.NewJSON(patch.Attributes.Value)
		}
		if patch.Price.Set {
			if patch.Price.Null {
				updates["price"] = decimal.NullDecimal{}
			} else {
				if patch.Price.Value.IsNegative() {
					return invalid("price must not be negative")
				}
				updates["price"] = decimal.NewNullDecimal(patch.Price.Value)
			}
		}
		if patch.Stock.Set {
			if patch.Stock.Null || patch.Stock.Value < 0 {
				return invalid("Stock cannot be negative")
			}
			updates["stock"] = patch.Stock.Value
		}
		if patch.SKU.Set {
			if patch.SKU.Null || requireText("sku", patch.SKU.Value) != nil {
				return invalid("sku is required")
			}
			newSku := patch.SKU.Value
			if newSku != variant.SKU {
				taken, err := exists(tx, &models.Variant{}, "sku = ? AND id <> ?", newSku, id)
				if err != nil {
					return err
				}
				if taken {
					return newError(ErrDuplicate, "Variant with SKU %q already exists", newSku)
				}
			}
			updates["sku"] = newSku
		}

		if len(updates) == 0 {
			return nil
		}
		err := tx.Model(&models.Variant{}).Where("id = ?", id).Updates(updates).Error
		return writeError(err, "Variant with SKU %q already exists", patch.SKU.Value)
	})
}

// UpdateVariantStock sets the absolute stock level
func UpdateVariantStock(ctx context.Context, db *gorm.DB, id string, stock int) error {
	if stock < 0 {
		return invalid("Stock cannot be negative")
	}

	result := db.WithContext(ctx).Model(&models.Variant{}).Where("id = ?", id).Update("stock", stock)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("Variant")
	}
	return nil
}

// beyond this a float64 no longer holds every integer
const maxExactQuantity = 1 << 53

// DecrementStock removes quantity units from a variant's stock.
// quantity must be a finite whole number greater than zero.
func DecrementStock(ctx context.Context, db *gorm.DB, id string, quantity types.FlexNumber) error {
	if !quantity.IsWhole() || quantity.Float64() <= 0 {
		metrics.StockDecrements.WithLabelValues("invalid").Inc()
		return invalid("Quantity must be a positive number")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return decrementStockTx(tx, id, int(math.Min(quantity.Float64(), maxExactQuantity)))
	})
	switch {
	case err == nil:
		metrics.StockDecrements.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrInsufficientStock):
		metrics.StockDecrements.WithLabelValues("insufficient").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.StockDecrements.WithLabelValues("not_found").Inc()
	}
	return err
}

// decrementStockTx locks the variant and applies a guarded decrement within tx
func decrementStockTx(tx *gorm.DB, id string, quantity int) error {
	var variant models.Variant
	if err := forUpdate(tx).Where("id = ?", id).First(&variant).Error; err != nil {
		return lookupError(err, "Variant")
	}
	if quantity > variant.Stock {
		return newError(ErrInsufficientStock, "Insufficient stock")
	}

	result := tx.Model(&models.Variant{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return newError(ErrInsufficientStock, "Insufficient stock")
	}
	return nil
}

// RemoveVariant deletes a variant
func RemoveVariant(ctx context.Context, db *gorm.DB, id string) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&models.Variant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("Variant")
	}
	return nil
}
