// orders_test.go
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

package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func orderOptions() services.OrderOptions {
	return services.OrderOptions{
		OrderNumberPrefix: "PTCH",
		Downloads:         services.DownloadOptions{TTL: time.Hour, Limit: 2},
	}
}

func initializeStore(t *testing.T, db *gorm.DB) {
	t.Helper()
	_, err := services.InitializeSettings(context.Background(), db, services.DefaultStoreDefaults())
	require.NoError(t, err)
}

func shippingAddress() *models.ShippingAddress {
	return &models.ShippingAddress{
		Name:    "Ana López",
		Street:  "Av. Reforma 123",
		City:    "CDMX",
		State:   "CDMX",
		ZipCode: "06600",
		Phone:   "5555555555",
	}
}

func TestSettingsLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	settings, err := services.GetSettings(ctx, db)
	require.NoError(t, err)
	assert.Nil(t, settings)

	_, err = services.GetNextOrderNumber(ctx, db, "PTCH")
	assert.ErrorIs(t, err, services.ErrNotInitialized)

	id, err := services.InitializeSettings(ctx, db, services.DefaultStoreDefaults())
	require.NoError(t, err)
	assert.Equal(t, uint(models.StoreSettingsID), id)

	// a second call keeps the existing row
	rate := decimal.NewFromInt(120)
	require.NoError(t, services.UpdateSettings(ctx, db, services.SettingsUpdate{ShippingRate: &rate}))
	_, err = services.InitializeSettings(ctx, db, services.DefaultStoreDefaults())
	require.NoError(t, err)

	settings, err = services.GetSettings(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.True(t, rate.Equal(settings.ShippingRate))
	assert.Equal(t, "contacto@patche.mx", settings.ContactEmail)

	negative := decimal.NewFromInt(-1)
	err = services.UpdateSettings(ctx, db, services.SettingsUpdate{FreeShippingThreshold: &negative})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)
}

func TestOrderNumbersAreSequential(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	initializeStore(t, db)

	first, err := services.GetNextOrderNumber(ctx, db, "PTCH")
	require.NoError(t, err)
	assert.Equal(t, "#PTCH1001", first)

	second, err := services.GetNextOrderNumber(ctx, db, "PTCH")
	require.NoError(t, err)
	assert.Equal(t, "#PTCH1002", second)

	var wg sync.WaitGroup
	numbers := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := services.GetNextOrderNumber(ctx, db, "PTCH")
			if assert.NoError(t, err) {
				numbers <- n
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for n := range numbers {
		assert.False(t, seen[n], "order number %s allocated twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, 10)

	settings, err := services.GetSettings(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1012), settings.LastOrderNumber)
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	initializeStore(t, db)
	f := newFixture(t, db)

	t.Run("physical order below the free shipping threshold", func(t *testing.T) {
		order, err := services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
			Email:                 "ana@example.com",
			Items:                 []services.OrderItemInput{{ProductID: f.physicalID, VariantID: &f.variantID, Quantity: 2}},
			PaymentMethod:         models.PaymentMethodCard,
			StripePaymentIntentID: "pi_123",
			ShippingAddress:       shippingAddress(),
		})
		require.NoError(t, err)

		assert.Equal(t, "#PTCH1001", order.OrderNumber)
		assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
		assert.Equal(t, "598", order.Subtotal.String())
		assert.Equal(t, "99", order.ShippingCost.String())
		assert.Equal(t, "697", order.Total.String())
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Agenda Patche 2025", order.Items[0].Name)
		assert.Equal(t, "Agenda - Rosa", *order.Items[0].VariantName)

		variant, err := services.GetVariantByID(ctx, db, f.variantID)
		require.NoError(t, err)
		assert.Equal(t, 8, variant.Stock)

		found, err := services.GetOrderByNumber(ctx, db, "PTCH1001")
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("free shipping above the threshold", func(t *testing.T) {
		order, err := services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
			Email:                 "ana@example.com",
			Items:                 []services.OrderItemInput{{ProductID: f.physicalID, Quantity: 4}},
			PaymentMethod:         models.PaymentMethodOxxo,
			StripePaymentIntentID: "pi_456",
			ShippingAddress:       shippingAddress(),
		})
		require.NoError(t, err)
		assert.True(t, order.ShippingCost.IsZero())
		assert.Equal(t, "1196", order.Total.String())
	})

	t.Run("digital order needs no address", func(t *testing.T) {
		order, err := services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
			Email:                 "luis@example.com",
			Items:                 []services.OrderItemInput{{ProductID: f.digitalID, Quantity: 1}},
			PaymentMethod:         models.PaymentMethodCard,
			StripePaymentIntentID: "pi_789",
		})
		require.NoError(t, err)
		assert.True(t, order.ShippingCost.IsZero())
		assert.Nil(t, order.ShippingAddress.Data)
	})

	t.Run("rejections leave stock and counter alone", func(t *testing.T) {
		before, err := services.GetSettings(ctx, db)
		require.NoError(t, err)

		_, err = services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
			Email:                 "ana@example.com",
			Items:                 []services.OrderItemInput{{ProductID: f.physicalID, VariantID: &f.variantID, Quantity: 100}},
			PaymentMethod:         models.PaymentMethodCard,
			StripePaymentIntentID: "pi_x",
			ShippingAddress:       shippingAddress(),
		})
		assert.ErrorIs(t, err, services.ErrInsufficientStock)

		_, err = services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
			Email:                 "ana@example.com",
			Items:                 []services.OrderItemInput{{ProductID: f.physicalID, VariantID: &f.variantID, Quantity: 1}},
			PaymentMethod:         models.PaymentMethodCard,
			StripePaymentIntentID: "pi_x",
		})
		assert.ErrorIs(t, err, services.ErrInvalidArgument)

		_, err = services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
			Email:                 "ana@example.com",
			Items:                 []services.OrderItemInput{{ProductID: f.physicalID, Quantity: 1}},
			PaymentMethod:         "cash",
			StripePaymentIntentID: "pi_x",
		})
		assert.ErrorIs(t, err, services.ErrInvalidArgument)

		_, err = services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
			Email:                 "ana@example.com",
			Items:                 []services.OrderItemInput{{ProductID: "missing", Quantity: 1}},
			PaymentMethod:         models.PaymentMethodCard,
			StripePaymentIntentID: "pi_x",
		})
		assert.ErrorIs(t, err, services.ErrNotFound)

		after, err := services.GetSettings(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, before.LastOrderNumber, after.LastOrderNumber)

		variant, err := services.GetVariantByID(ctx, db, f.variantID)
		require.NoError(t, err)
		assert.Equal(t, 8, variant.Stock)
	})

	t.Run("list newest first", func(t *testing.T) {
		orders, err := services.ListOrders(ctx, db, services.OrderFilter{Email: "ana@example.com"})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "#PTCH1002", orders[0].OrderNumber)

		_, err = services.ListOrders(ctx, db, services.OrderFilter{Status: "lost"})
		assert.ErrorIs(t, err, services.ErrInvalidArgument)
	})
}

func TestOrderStatusOnlyMovesForward(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	initializeStore(t, db)
	f := newFixture(t, db)

	order, err := services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
		Email:                 "ana@example.com",
		Items:                 []services.OrderItemInput{{ProductID: f.physicalID, Quantity: 1}},
		PaymentMethod:         models.PaymentMethodCard,
		StripePaymentIntentID: "pi_1",
		ShippingAddress:       shippingAddress(),
	})
	require.NoError(t, err)

	require.NoError(t, services.UpdateOrderStatus(ctx, db, orderOptions(), order.ID, models.OrderStatusPreparing))

	err = services.UpdateOrderStatus(ctx, db, orderOptions(), order.ID, models.OrderStatusPending)
	assert.ErrorIs(t, err, services.ErrConflict)

	err = services.UpdateOrderStatus(ctx, db, orderOptions(), order.ID, models.OrderStatusPreparing)
	assert.ErrorIs(t, err, services.ErrConflict)

	err = services.UpdateOrderStatus(ctx, db, orderOptions(), order.ID, "lost")
	assert.ErrorIs(t, err, services.ErrInvalidArgument)

	err = services.UpdateOrderStatus(ctx, db, orderOptions(), "missing", models.OrderStatusShipped)
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, services.SetOrderTracking(ctx, db, order.ID, "MX123456789"))
	require.NoError(t, services.UpdateOrderStatus(ctx, db, orderOptions(), order.ID, models.OrderStatusShipped))

	found, err := services.GetOrderByID(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, found.Status)
	require.NotNil(t, found.TrackingNumber)
	assert.Equal(t, "MX123456789", *found.TrackingNumber)

	assert.ErrorIs(t, services.SetOrderTracking(ctx, db, order.ID, " "), services.ErrInvalidArgument)
	assert.ErrorIs(t, services.SetOrderTracking(ctx, db, "missing", "X"), services.ErrNotFound)
}

func TestDownloadLinks(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := testutil.NewStore(t)
	storageOpts := services.StorageOptions{PublicBaseURL: "http://localhost:3000", UploadURLTTL: time.Hour}
	initializeStore(t, db)
	f := newFixture(t, db)

	uploadURL, err := services.GenerateUploadURL(ctx, store, storageOpts)
	require.NoError(t, err)
	token := uploadURL[strings.LastIndex(uploadURL, "/")+1:]
	storageID, err := services.UploadBlob(ctx, store, token, "application/pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)

	fileID, err := services.CreateDigitalFile(ctx, db, services.DigitalFileInput{
		ProductID: f.digitalID,
		Name:      "Planner.pdf",
		StorageID: &storageID,
		FileSize:  8,
	})
	require.NoError(t, err)

	order, err := services.CreateOrder(ctx, db, orderOptions(), services.OrderInput{
		Email:                 "luis@example.com",
		Items:                 []services.OrderItemInput{{ProductID: f.digitalID, Quantity: 1}},
		PaymentMethod:         models.PaymentMethodCard,
		StripePaymentIntentID: "pi_dl",
	})
	require.NoError(t, err)

	_, err = services.IssueDownloadLinks(ctx, db, orderOptions().Downloads, order.ID)
	assert.ErrorIs(t, err, services.ErrConflict)

	links, err := services.ListDownloadLinksByOrder(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Empty(t, links)

	require.NoError(t, services.UpdateOrderStatus(ctx, db, orderOptions(), order.ID, models.OrderStatusPending))

	links, err = services.ListDownloadLinksByOrder(ctx, db, order.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, fileID, links[0].FileID)
	assert.Equal(t, 2, links[0].DownloadsRemaining)

	// issuing again keeps the existing link
	again, err := services.IssueDownloadLinks(ctx, db, orderOptions().Downloads, order.ID)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, links[0].Token, again[0].Token)

	for i := 0; i < 2; i++ {
		url, err := services.RedeemDownloadLink(ctx, db, store, storageOpts, links[0].Token)
		require.NoError(t, err)
		assert.Equal(t, storageOpts.FileURL(storageID), url)
	}

	_, err = services.RedeemDownloadLink(ctx, db, store, storageOpts, links[0].Token)
	assert.ErrorIs(t, err, services.ErrExpired)
	assert.EqualError(t, err, "Download limit reached")

	_, err = services.RedeemDownloadLink(ctx, db, store, storageOpts, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)

	t.Run("expired links", func(t *testing.T) {
		require.NoError(t, db.Model(&models.DownloadLink{}).Where("id = ?", links[0].ID).Updates(map[string]interface{}{
			"downloads_remaining": 1,
			"expires_at":          time.Now().UTC().Add(-time.Minute),
		}).Error)

		_, err := services.RedeemDownloadLink(ctx, db, store, storageOpts, links[0].Token)
		assert.ErrorIs(t, err, services.ErrExpired)
		assert.EqualError(t, err, "Download link expired")

		purged, err := services.PurgeExpiredDownloadLinks(ctx, db, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)
	})
}
