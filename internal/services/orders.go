// orders.go
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

package services

import (
	"context"
	"strings"
	"time"

	"github.com/localnerve/storefront-data/internal/metrics"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderOptions carries the store configuration order placement depends on
type OrderOptions struct {
	OrderNumberPrefix string
	Downloads         DownloadOptions
}

// OrderItemInput is one cart line
type OrderItemInput struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId,omitempty"`
	Quantity  int     `json:"quantity"`
}

// OrderInput is the payload for placing an order
type OrderInput struct {
	Email                 string                  `json:"email"`
	Items                 []OrderItemInput        `json:"items"`
	PaymentMethod         models.PaymentMethod    `json:"paymentMethod"`
	StripePaymentIntentID string                  `json:"stripePaymentIntentId"`
	ShippingAddress       *models.ShippingAddress `json:"shippingAddress,omitempty"`
}

// OrderFilter narrows ListOrders
type OrderFilter struct {
	Status models.OrderStatus
	Email  string
	Limit  int
}

// CreateOrder places an order in one transaction: it snapshots item names and
// prices, takes physical stock, allocates the order number and prices shipping.
func CreateOrder(ctx context.Context, db *gorm.DB, opts OrderOptions, input OrderInput) (*models.Order, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	var order models.Order
	err := withOrderNumberRetry(ctx, func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			items, subtotal, err := snapshotItems(tx, input.Items)
			if err != nil {
				return err
			}

			settings, number, err := allocateOrderNumberTx(tx)
			if err != nil {
				return err
			}

			order = models.Order{
				OrderNumber:           FormatOrderNumber(opts.OrderNumberPrefix, number),
				Email:                 strings.TrimSpace(input.Email),
				Items:                 items,
				Subtotal:              subtotal,
				PaymentMethod:         input.PaymentMethod,
				StripePaymentIntentID: input.StripePaymentIntentID,
				Status:                models.OrderStatusPendingPayment,
			}

			order.ShippingCost = decimal.Zero
			if order.HasPhysicalItems() {
				if input.ShippingAddress == nil {
					return invalid("Shipping address is required for physical items")
				}
				order.ShippingAddress = models.NewJSON(input.ShippingAddress)
				if subtotal.LessThan(settings.FreeShippingThreshold) {
					order.ShippingCost = settings.ShippingRate
				}
			}
			order.Total = subtotal.Add(order.ShippingCost)

			return writeError(tx.Create(&order).Error, "Order %s already exists", order.OrderNumber)
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderNumbersAllocated.Inc()
	metrics.OrdersCreated.WithLabelValues(string(order.PaymentMethod)).Inc()
	return &order, nil
}

func validateOrderInput(input OrderInput) error {
	if !strings.Contains(input.Email, "@") {
		return invalid("email must be an e-mail address")
	}
	if len(input.Items) == 0 {
		return invalid("Order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return invalid("Quantity must be a positive number")
		}
	}
	if !input.PaymentMethod.Valid() {
		return invalid("paymentMethod must be card or oxxo")
	}
	return requireText("stripePaymentIntentId", input.StripePaymentIntentID)
}

// snapshotItems prices each line and decrements stock for physical variants within tx
func snapshotItems(tx *gorm.DB, lines []OrderItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		var product models.Product
		if err := tx.Where("id = ?", line.ProductID).First(&product).Error; err != nil {
			return nil, subtotal, lookupError(err, "Product")
		}
		if !product.IsActive {
			return nil, subtotal, invalid("Product %q is not available", product.Name)
		}

		item := models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.BasePrice,
			Quantity:  line.Quantity,
			Type:      product.Type,
		}

		if line.VariantID != nil {
			var variant models.Variant
			if err := tx.Where("id = ?", *line.VariantID).First(&variant).Error; err != nil {
				return nil, subtotal, lookupError(err, "Variant")
			}
			if variant.ProductID != product.ID {
				return nil, subtotal, invalid("Variant %q does not belong to product %q", variant.SKU, product.Name)
			}
			if variant.Price.Valid {
				item.Price = variant.Price.Decimal
			}
			item.VariantID = &variant.ID
			item.VariantName = &variant.Name

			if product.Type == models.ProductTypePhysical {
				if err := decrementStockTx(tx, variant.ID, line.Quantity); err != nil {
					return nil, subtotal, err
				}
			}
		}

		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, item)
	}

	return items, subtotal, nil
}

// GetOrderByID finds an order by id
func GetOrderByID(ctx context.Context, db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := quiet(ctx, db).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, lookupError(err, "Order")
	}
	return &order, nil
}

// GetOrderByNumber finds an order by its number; the leading '#' is optional
func GetOrderByNumber(ctx context.Context, db *gorm.DB, number string) (*models.Order, error) {
	if !strings.HasPrefix(number, "#") {
		number = "#" + number
	}
	var order models.Order
	if err := quiet(ctx, db).Where("order_number = ?", number).First(&order).Error; err != nil {
		return nil, lookupError(err, "Order")
	}
	return &order, nil
}

// ListOrders returns orders newest first
func ListOrders(ctx context.Context, db *gorm.DB, filter OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("Unknown order status %q", filter.Status)
	}

	query := quiet(ctx, db).Order("created_at DESC").Order("order_number DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	orders := []models.Order{}
	err := query.Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus moves an order forward. Leaving pending_payment issues the
// download links for its digital items.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, opts OrderOptions, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return invalid("Unknown order status %q", status)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := forUpdate(tx).Where("id = ?", id).First(&order).Error; err != nil {
			return lookupError(err, "Order")
		}
		if !order.Status.Precedes(status) {
			return newError(ErrConflict, "Cannot change order status from %s to %s", order.Status, status)
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, order.Status).
			Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return newError(ErrConflict, "Order %s was updated concurrently", order.OrderNumber)
		}

		if order.Status == models.OrderStatusPendingPayment {
			order.Status = status
			return issueDownloadLinksTx(tx, &order, opts.Downloads)
		}
		return nil
	})
}

// SetOrderTracking records the carrier tracking number
func SetOrderTracking(ctx context.Context, db *gorm.DB, id, trackingNumber string) error {
	if err := requireText("trackingNumber", trackingNumber); err != nil {
		return err
	}

	result := db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"tracking_number": trackingNumber,
		"updated_at":      time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("Order")
	}
	return nil
}
