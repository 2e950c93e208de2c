package services_test

import (
	"context"
	"math"
	"testing"

	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/testutil"
	"github.com/localnerve/storefront-data/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	categoryID   string
	collectionID string
	physicalID   string
	digitalID    string
	variantID    string
}

// newFixture creates one category, collection, physical product with a variant and digital product
func newFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	f.categoryID, err = services.CreateCategory(ctx, db, services.CategoryInput{Name: "Agendas", Slug: "agendas"})
	require.NoError(t, err)

	f.collectionID, err = services.CreateCollection(ctx, db, services.CollectionInput{Name: "Verano", Slug: "verano-2025"})
	require.NoError(t, err)

	prep := 2
	f.physicalID, err = services.CreateProduct(ctx, db, services.ProductInput{
		Name:            "Agenda Patche 2025",
		Slug:            "agenda-2025",
		Description:     "Agenda anual",
		BasePrice:       decimal.NewFromInt(299),
		Type:            models.ProductTypePhysical,
		PreparationDays: &prep,
		CategoryID:      f.categoryID,
		CollectionIDs:   []string{f.collectionID},
	})
	require.NoError(t, err)

	f.digitalID, err = services.CreateProduct(ctx, db, services.ProductInput{
		Name:        "Planner Digital",
		Slug:        "planner-digital",
		Description: "Planner imprimible",
		BasePrice:   decimal.NewFromInt(149),
		Type:        models.ProductTypeDigital,
		CategoryID:  f.categoryID,
	})
	require.NoError(t, err)

	f.variantID, err = services.CreateVariant(ctx, db, services.VariantInput{
		ProductID: f.physicalID,
		Name:      "Agenda - Rosa",
		Stock:     10,
		SKU:       "AGD-2025-RS",
	})
	require.NoError(t, err)

	return f
}

func TestCategorySlugIsUnique(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	_, err := services.CreateCategory(ctx, db, services.CategoryInput{Name: "Stickers", Slug: "stickers"})
	require.NoError(t, err)

	_, err = services.CreateCategory(ctx, db, services.CategoryInput{Name: "Otros stickers", Slug: "stickers"})
	assert.ErrorIs(t, err, services.ErrDuplicate)
	assert.Contains(t, err.Error(), "already exists")

	otherID, err := services.CreateCategory(ctx, db, services.CategoryInput{Name: "Posters", Slug: "posters"})
	require.NoError(t, err)
	err = services.UpdateCategory(ctx, db, otherID, services.CategoryPatch{Slug: types.Some("stickers")})
	assert.ErrorIs(t, err, services.ErrDuplicate)

	// keeping its own slug is not a conflict
	err = services.UpdateCategory(ctx, db, otherID, services.CategoryPatch{Slug: types.Some("posters"), Name: types.Some("Pósters")})
	require.NoError(t, err)
	category, err := services.GetCategoryByID(ctx, db, otherID)
	require.NoError(t, err)
	assert.Equal(t, "Pósters", category.Name)
}

func TestCreateCategoryRequiresNameAndSlug(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := services.CreateCategory(context.Background(), db, services.CategoryInput{Name: " ", Slug: "x"})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)

	_, err = services.CreateCategory(context.Background(), db, services.CategoryInput{Name: "X"})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)
}

func TestRemoveCategoryWithProducts(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	f := newFixture(t, db)

	err := services.RemoveCategory(ctx, db, f.categoryID)
	assert.ErrorIs(t, err, services.ErrReferenced)
	assert.EqualError(t, err, "Cannot delete category with associated products")

	_, err = services.GetCategoryByID(ctx, db, f.categoryID)
	assert.NoError(t, err)

	emptyID, err := services.CreateCategory(ctx, db, services.CategoryInput{Name: "Vacía", Slug: "vacia"})
	require.NoError(t, err)
	require.NoError(t, services.RemoveCategory(ctx, db, emptyID))

	_, err = services.GetCategoryBySlug(ctx, db, "vacia")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, services.RemoveCategory(ctx, db, emptyID), services.ErrNotFound)
}

func TestReorderCategories(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	a, err := services.CreateCategory(ctx, db, services.CategoryInput{Name: "A", Slug: "a", Order: 0})
	require.NoError(t, err)
	b, err := services.CreateCategory(ctx, db, services.CategoryInput{Name: "B", Slug: "b", Order: 1})
	require.NoError(t, err)
	c, err := services.CreateCategory(ctx, db, services.CategoryInput{Name: "C", Slug: "c", Order: 2})
	require.NoError(t, err)

	require.NoError(t, services.ReorderCategories(ctx, db, []string{c, a, b}))

	categories, err := services.ListCategories(ctx, db)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{categories[0].Slug, categories[1].Slug, categories[2].Slug})
	assert.Equal(t, 0, categories[0].Order)
	assert.Equal(t, 2, categories[2].Order)

	t.Run("unknown id rolls back", func(t *testing.T) {
		err := services.ReorderCategories(ctx, db, []string{a, b, "missing", c})
		assert.ErrorIs(t, err, services.ErrNotFound)

		categories, err := services.ListCategories(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, []string{categories[0].Slug, categories[1].Slug, categories[2].Slug})
	})
}

func TestCollections(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	f := newFixture(t, db)

	inactive := false
	hiddenID, err := services.CreateCollection(ctx, db, services.CollectionInput{Name: "Ofertas", Slug: "ofertas", IsActive: &inactive})
	require.NoError(t, err)

	all, err := services.ListCollections(ctx, db, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := services.ListCollections(ctx, db, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "verano-2025", active[0].Slug)

	now, err := services.ToggleCollectionActive(ctx, db, hiddenID)
	require.NoError(t, err)
	assert.True(t, now)

	products, err := services.GetProductsByCollection(ctx, db, f.collectionID, false)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, f.physicalID, products[0].ID)

	_, err = services.CreateCollection(ctx, db, services.CollectionInput{Name: "Dup", Slug: "ofertas"})
	assert.ErrorIs(t, err, services.ErrDuplicate)

	require.NoError(t, services.RemoveCollection(ctx, db, f.collectionID))
	product, err := services.GetProductByID(ctx, db, f.physicalID)
	require.NoError(t, err)
	assert.Empty(t, product.CollectionIDs)
}

func TestProducts(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	f := newFixture(t, db)

	product, err := services.GetProductBySlug(ctx, db, "agenda-2025")
	require.NoError(t, err)
	assert.Equal(t, f.physicalID, product.ID)
	assert.True(t, product.IsActive)
	assert.Equal(t, []string{f.collectionID}, product.CollectionIDs)
	assert.True(t, decimal.NewFromInt(299).Equal(product.BasePrice))

	t.Run("validation", func(t *testing.T) {
		_, err := services.CreateProduct(ctx, db, services.ProductInput{
			Name: "X", Slug: "x", BasePrice: decimal.NewFromInt(-1), Type: models.ProductTypePhysical, CategoryID: f.categoryID,
		})
		assert.ErrorIs(t, err, services.ErrInvalidArgument)

		_, err = services.CreateProduct(ctx, db, services.ProductInput{
			Name: "X", Slug: "x", BasePrice: decimal.NewFromInt(1), Type: "service", CategoryID: f.categoryID,
		})
		assert.ErrorIs(t, err, services.ErrInvalidArgument)

		_, err = services.CreateProduct(ctx, db, services.ProductInput{
			Name: "X", Slug: "agenda-2025", BasePrice: decimal.NewFromInt(1), Type: models.ProductTypePhysical, CategoryID: f.categoryID,
		})
		assert.ErrorIs(t, err, services.ErrDuplicate)

		_, err = services.CreateProduct(ctx, db, services.ProductInput{
			Name: "X", Slug: "x", BasePrice: decimal.NewFromInt(1), Type: models.ProductTypePhysical, CategoryID: "missing",
		})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("filters", func(t *testing.T) {
		digital, err := services.ListProducts(ctx, db, services.ProductFilter{Type: models.ProductTypeDigital})
		require.NoError(t, err)
		require.Len(t, digital, 1)
		assert.Equal(t, f.digitalID, digital[0].ID)

		_, err = services.ListProducts(ctx, db, services.ProductFilter{Type: "service"})
		assert.ErrorIs(t, err, services.ErrInvalidArgument)

		limited, err := services.ListProducts(ctx, db, services.ProductFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("toggle hides from active listings", func(t *testing.T) {
		active, err := services.ToggleProductActive(ctx, db, f.digitalID)
		require.NoError(t, err)
		assert.False(t, active)

		listed, err := services.ListProducts(ctx, db, services.ProductFilter{ActiveOnly: true})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, f.physicalID, listed[0].ID)

		active, err = services.ToggleProductActive(ctx, db, f.digitalID)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("search", func(t *testing.T) {
		found, err := services.SearchProducts(ctx, db, "IMPRIMIBLE", false)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, f.digitalID, found[0].ID)

		found, err = services.SearchProducts(ctx, db, "100%", false)
		require.NoError(t, err)
		assert.Empty(t, found)

		posterID, err := services.CreateProduct(ctx, db, services.ProductInput{
			Name:        "PÓSTER Edición Limitada",
			Slug:        "poster-edicion",
			Description: "Lámina",
			BasePrice:   decimal.NewFromInt(99),
			Type:        models.ProductTypeDigital,
			CategoryID:  f.categoryID,
		})
		require.NoError(t, err)

		for _, term := range []string{"póster", "EDICIÓN", "lámina"} {
			found, err = services.SearchProducts(ctx, db, term, true)
			require.NoError(t, err)
			require.Len(t, found, 1, term)
			assert.Equal(t, posterID, found[0].ID)
		}
	})

	t.Run("update", func(t *testing.T) {
		err := services.UpdateProduct(ctx, db, f.physicalID, services.ProductPatch{
			BasePrice:     types.Some(decimal.RequireFromString("319.50")),
			CollectionIDs: types.Some([]string{}),
		})
		require.NoError(t, err)

		product, err := services.GetProductByID(ctx, db, f.physicalID)
		require.NoError(t, err)
		assert.Equal(t, "319.5", product.BasePrice.String())
		assert.Empty(t, product.CollectionIDs)

		err = services.UpdateProduct(ctx, db, "missing", services.ProductPatch{Name: types.Some("X")})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("remove is blocked by variants", func(t *testing.T) {
		err := services.RemoveProduct(ctx, db, f.physicalID)
		assert.ErrorIs(t, err, services.ErrReferenced)

		require.NoError(t, services.RemoveVariant(ctx, db, f.variantID))
		require.NoError(t, services.RemoveProduct(ctx, db, f.physicalID))

		_, err = services.GetProductByID(ctx, db, f.physicalID)
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("remove is blocked by digital files", func(t *testing.T) {
		fileID, err := services.CreateDigitalFile(ctx, db, services.DigitalFileInput{ProductID: f.digitalID, Name: "Planner.pdf"})
		require.NoError(t, err)

		err = services.RemoveProduct(ctx, db, f.digitalID)
		assert.ErrorIs(t, err, services.ErrReferenced)
		assert.EqualError(t, err, "Cannot delete product with associated digital files")

		product, err := services.GetProductByID(ctx, db, f.digitalID)
		require.NoError(t, err)
		assert.Equal(t, f.digitalID, product.ID)
		_, err = services.GetDigitalFileByID(ctx, db, fileID)
		assert.NoError(t, err)
	})
}

func TestVariantSkuIsUnique(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	f := newFixture(t, db)

	_, err := services.CreateVariant(ctx, db, services.VariantInput{ProductID: f.physicalID, Name: "Otra", SKU: "AGD-2025-RS"})
	assert.ErrorIs(t, err, services.ErrDuplicate)

	_, err = services.CreateVariant(ctx, db, services.VariantInput{ProductID: "missing", Name: "Otra", SKU: "AGD-X"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = services.CreateVariant(ctx, db, services.VariantInput{ProductID: f.physicalID, Name: "Otra", SKU: "AGD-X", Stock: -1})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)

	price := decimal.NewFromInt(319)
	id, err := services.CreateVariant(ctx, db, services.VariantInput{ProductID: f.physicalID, Name: "Azul", SKU: "AGD-2025-AZ", Price: &price, Stock: 3})
	require.NoError(t, err)

	variant, err := services.GetVariantBySku(ctx, db, "AGD-2025-AZ")
	require.NoError(t, err)
	assert.Equal(t, id, variant.ID)
	assert.True(t, variant.Price.Valid)

	require.NoError(t, services.UpdateVariant(ctx, db, id, services.VariantPatch{Price: types.Null[decimal.Decimal]()}))
	variant, err = services.GetVariantByID(ctx, db, id)
	require.NoError(t, err)
	assert.False(t, variant.Price.Valid)

	err = services.UpdateVariant(ctx, db, id, services.VariantPatch{SKU: types.Some("AGD-2025-RS")})
	assert.ErrorIs(t, err, services.ErrDuplicate)

	variants, err := services.ListVariantsByProduct(ctx, db, f.physicalID)
	require.NoError(t, err)
	assert.Len(t, variants, 2)
}

func TestDecrementStock(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	f := newFixture(t, db)

	require.NoError(t, services.DecrementStock(ctx, db, f.variantID, types.FlexNumber(3)))
	variant, err := services.GetVariantByID(ctx, db, f.variantID)
	require.NoError(t, err)
	assert.Equal(t, 7, variant.Stock)

	err = services.DecrementStock(ctx, db, f.variantID, types.FlexNumber(8))
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
	assert.EqualError(t, err, "Insufficient stock")

	require.NoError(t, services.DecrementStock(ctx, db, f.variantID, types.FlexNumber(7)))
	variant, err = services.GetVariantByID(ctx, db, f.variantID)
	require.NoError(t, err)
	assert.Equal(t, 0, variant.Stock)

	err = services.DecrementStock(ctx, db, "missing", types.FlexNumber(1))
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, services.UpdateVariantStock(ctx, db, f.variantID, 4))
	for _, q := range []float64{0, -1, 1.5, math.Inf(1), math.Inf(-1), math.NaN()} {
		err := services.DecrementStock(ctx, db, f.variantID, types.FlexNumber(q))
		assert.ErrorIs(t, err, services.ErrInvalidArgument, "quantity %v", q)
	}
	variant, err = services.GetVariantByID(ctx, db, f.variantID)
	require.NoError(t, err)
	assert.Equal(t, 4, variant.Stock)

	assert.ErrorIs(t, services.UpdateVariantStock(ctx, db, f.variantID, -1), services.ErrInvalidArgument)
	assert.ErrorIs(t, services.UpdateVariantStock(ctx, db, "missing", 1), services.ErrNotFound)
}
