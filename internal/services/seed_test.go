package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSeedAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	result, err := services.SeedAll(ctx, db, services.DefaultStoreDefaults())
	require.NoError(t, err)
	assert.Equal(t, services.SeedResult{
		Settings:     1,
		Categories:   5,
		Collections:  3,
		Products:     7,
		Variants:     5,
		DigitalFiles: 4,
	}, result)
	assert.Equal(t, 25, result.Total())

	again, err := services.SeedAll(ctx, db, services.DefaultStoreDefaults())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Total())

	variant, err := services.GetVariantBySku(ctx, db, "TZA-ILL-01")
	require.NoError(t, err)
	require.True(t, variant.Price.Valid)
	assert.Equal(t, "189", variant.Price.Decimal.String())

	collection, err := services.GetCollectionBySlug(ctx, db, "ofertas")
	require.NoError(t, err)
	assert.False(t, collection.IsActive)

	product, err := services.GetProductBySlug(ctx, db, "agenda-2025")
	require.NoError(t, err)
	assert.Len(t, product.CollectionIDs, 1)

	files, err := services.ListDigitalFilesByProduct(ctx, db, mustProductID(t, "planner-digital-2025", db))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	_, err := services.SeedAll(ctx, db, services.DefaultStoreDefaults())
	require.NoError(t, err)
	testutil.AcquireAdminToken(t, db, "admin")

	require.NoError(t, services.ClearAll(ctx, db))

	for _, model := range models.AllModels() {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T not cleared", model)
	}

	settings, err := services.GetSettings(ctx, db)
	require.NoError(t, err)
	assert.Nil(t, settings)

	// seeding works again on the empty store
	result, err := services.SeedAll(ctx, db, services.DefaultStoreDefaults())
	require.NoError(t, err)
	assert.Equal(t, 25, result.Total())
}

func mustProductID(t *testing.T, slug string, db *gorm.DB) string {
	t.Helper()
	product, err := services.GetProductBySlug(context.Background(), db, slug)
	require.NoError(t, err)
	return product.ID
}
