// order.go
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

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus is the fulfillment state of an order
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPendingPayment: 0,
	OrderStatusPending:        1,
	OrderStatusPreparing:      2,
	OrderStatusShipped:        3,
	OrderStatusDelivered:      4,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// Precedes reports whether s comes strictly before next in the fulfillment sequence
func (s OrderStatus) Precedes(next OrderStatus) bool {
	a, okA := orderStatusRank[s]
	b, okB := orderStatusRank[next]
	return okA && okB && a < b
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodOxxo PaymentMethod = "oxxo"
)

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodOxxo
}

// OrderItem is the snapshot of a cart line taken when the order is placed
type OrderItem struct {
	ProductID   string          `json:"productId"`
	VariantID   *string         `json:"variantId"`
	Name        string          `json:"name"`
	VariantName *string         `json:"variantName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Type        ProductType     `json:"type"`
}

// ShippingAddress is the delivery destination of a physical order
type ShippingAddress struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Phone   string `json:"phone"`
}

// Order is a placed purchase
type Order struct {
	ID                    string                         `gorm:"primaryKey;size:36" json:"id"`
	OrderNumber           string                         `gorm:"size:64;not null;uniqueIndex" json:"orderNumber"`
	Email                 string                         `gorm:"size:255;not null;index" json:"email"`
	Items                 datatypes.JSONSlice[OrderItem] `gorm:"not null" json:"items"`
	Subtotal              decimal.Decimal                `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingCost          decimal.Decimal                `gorm:"type:decimal(12,2);not null" json:"shippingCost"`
	Total                 decimal.Decimal                `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod         PaymentMethod                  `gorm:"size:16;not null" json:"paymentMethod"`
	StripePaymentIntentID string                         `gorm:"size:255;not null" json:"stripePaymentIntentId"`
	Status                OrderStatus                    `gorm:"size:32;not null;index" json:"status"`
	ShippingAddress       JSON[*ShippingAddress]         `json:"shippingAddress"`
	TrackingNumber        *string                        `gorm:"size:255" json:"trackingNumber"`
	CreatedAt             time.Time                      `gorm:"index" json:"createdAt"`
	UpdatedAt             time.Time                      `json:"updatedAt"`
}

// TableName overrides the table name for Order
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the id
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// HasPhysicalItems reports whether any line needs shipping
func (o *Order) HasPhysicalItems() bool {
	for _, item := range o.Items {
		if item.Type == ProductTypePhysical {
			return true
		}
	}
	return false
}
