package services

import (
	"context"
	"strings"
	"time"

	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// ProductInput is the payload for creating a product. IsActive defaults to true.
type ProductInput struct {
	Name            string             `json:"name"`
	Slug            string             `json:"slug"`
	Description     string             `json:"description"`
	BasePrice       decimal.Decimal    `json:"basePrice"`
	Type            models.ProductType `json:"type"`
	PreparationDays *int               `json:"preparationDays,omitempty"`
	Images          []string           `json:"images"`
	CategoryID      string             `json:"categoryId"`
	CollectionIDs   []string           `json:"collectionIds"`
	IsActive        *bool              `json:"isActive,omitempty"`
}

// ProductPatch is a partial product update
type ProductPatch struct {
	Name            types.Optional[string]             `json:"name"`
	Slug            types.Optional[string]             `json:"slug"`
	Description     types.Optional[string]             `json:"description"`
	BasePrice       types.Optional[decimal.Decimal]    `json:"basePrice"`
	Type            types.Optional[models.ProductType] `json:"type"`
	PreparationDays types.Optional[int]                `json:"preparationDays"`
	Images          types.Optional[[]string]           `json:"images"`
	CategoryID      types.Optional[string]             `json:"categoryId"`
	CollectionIDs   types.Optional[[]string]           `json:"collectionIds"`
	IsActive        types.Optional[bool]               `json:"isActive"`
}

// ProductFilter narrows ListProducts. All set fields combine.
type ProductFilter struct {
	CategoryID string
	Type       models.ProductType
	ActiveOnly bool
	Limit      int
}

func productQuery(ctx context.Context, db *gorm.DB) *gorm.DB {
	return quiet(ctx, db).Preload("Collections").Order("products.created_at ASC").Order("products.slug ASC")
}

// ListProducts returns products matching every set filter, capped at Limit when positive
func ListProducts(ctx context.Context, db *gorm.DB, filter ProductFilter) ([]models.Product, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, invalid("type must be physical or digital")
	}

	query := productQuery(ctx, db)
	if filter.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	if filter.Type != "" {
		query = query.Where("products.type = ?", filter.Type)
	}
	if filter.CategoryID != "" {
		query = query.Where("products.category_id = ?", filter.CategoryID)
	}
	if filter.ActiveOnly && filter.Type != "" && isMySQL(db) {
		query = query.Clauses(hints.UseIndex("idx_products_active_type"))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	products := []models.Product{}
	err := query.Find(&products).Error
	return products, err
}

// GetProductBySlug finds a product by its unique slug
func GetProductBySlug(ctx context.Context, db *gorm.DB, slug string) (*models.Product, error) {
	var product models.Product
	if err := productQuery(ctx, db).Where("products.slug = ?", slug).First(&product).Error; err != nil {
		return nil, lookupError(err, "Product")
	}
	return &product, nil
}

// GetProductByID finds a product by id
func GetProductByID(ctx context.Context, db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := productQuery(ctx, db).Where("products.id = ?", id).First(&product).Error; err != nil {
		return nil, lookupError(err, "Product")
	}
	return &product, nil
}

// GetProductsByCollection returns the products linked to a collection
func GetProductsByCollection(ctx context.Context, db *gorm.DB, collectionID string, activeOnly bool) ([]models.Product, error) {
	query := productQuery(ctx, db).
		Joins("JOIN product_collections ON product_collections.product_id = products.id").
		Where("product_collections.collection_id = ?", collectionID)
	if activeOnly {
		query = query.Where("products.is_active = ?", true)
	}

	products := []models.Product{}
	err := query.Find(&products).Error
	return products, err
}

// SearchProducts matches term case-insensitively against name and description
func SearchProducts(ctx context.Context, db *gorm.DB, term string, activeOnly bool) ([]models.Product, error) {
	folded := strings.ToLower(term)
	query := productQuery(ctx, db)
	if activeOnly {
		query = query.Where("products.is_active = ?", true)
	}

	// sqlite LOWER() only folds ASCII, so match there with the same folding as the term
	if isSQLite(db) {
		candidates := []models.Product{}
		if err := query.Find(&candidates).Error; err != nil {
			return nil, err
		}
		products := []models.Product{}
		for _, p := range candidates {
			if strings.Contains(strings.ToLower(p.Name), folded) || strings.Contains(strings.ToLower(p.Description), folded) {
				products = append(products, p)
			}
		}
		return products, nil
	}

	pattern := "%" + escapeLike(folded) + "%"
	query = query.Where("(LOWER(products.name) LIKE ? ESCAPE '!' OR LOWER(products.description) LIKE ? ESCAPE '!')", pattern, pattern)

	products := []models.Product{}
	err := query.Find(&products).Error
	return products, err
}

// CreateProduct inserts a product and links its collections
func CreateProduct(ctx context.Context, db *gorm.DB, input ProductInput) (string, error) {
	if err := validateProduct(input.Name, input.Slug, input.BasePrice, input.Type, input.PreparationDays); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	product := models.Product{
		Name:            input.Name,
		Slug:            input.Slug,
		Description:     input.Description,
		BasePrice:       input.BasePrice,
		Type:            input.Type,
		PreparationDays: input.PreparationDays,
		Images:          datatypes.JSONSlice[string](nonNilStrings(input.Images)),
		CategoryID:      input.CategoryID,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.Product{}, "slug = ?", input.Slug)
		if err != nil {
			return err
		}
		if taken {
			return newError(ErrDuplicate, "Product with slug %q already exists", input.Slug)
		}
		if err := requireCategory(tx, input.CategoryID); err != nil {
			return err
		}
		collectionIDs, err := requireCollections(tx, input.CollectionIDs)
		if err != nil {
			return err
		}

		if err := tx.Omit("Category", "Collections").Create(&product).Error; err != nil {
			return writeError(err, "Product with slug %q already exists", input.Slug)
		}
		return linkCollections(tx, product.ID, collectionIDs)
	})
	if err != nil {
		return "", err
	}
	return product.ID, nil
}

// UpdateProduct applies a partial update and bumps updatedAt
func UpdateProduct(ctx context.Context, db *gorm.DB, id string, patch ProductPatch) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := forUpdate(tx).Where("id = ?", id).First(&product).Error; err != nil {
			return lookupError(err, "Product")
		}

		// validate the merged record
		name, slug, price, kind, prep := product.Name, product.Slug, product.BasePrice, product.Type, product.PreparationDays
		updates := map[string]interface{}{}
		if patch.Name.Set {
			name = patch.Name.Value
			updates["name"] = name
		}
		if patch.Slug.Set {
			slug = patch.Slug.Value
			updates["slug"] = slug
		}
		if patch.Description.Set {
			updates["description"] = patch.Description.Value
		}
		if patch.BasePrice.Set {
			if patch.BasePrice.Null {
				return invalid("basePrice is required")
			}
			price = patch.BasePrice.Value
			updates["base_price"] = price
		}
		if patch.Type.Set {
			kind = patch.Type.Value
			updates["type"] = kind
		}
		if patch.PreparationDays.Set {
			prep = patch.PreparationDays.Ptr()
			updates["preparation_days"] = prep
		}
		if patch.Images.Set {
			updates["images"] = datatypes.JSONSlice[string](nonNilStrings(patch.Images.Value))
		}
		if patch.IsActive.Set {
			if patch.IsActive.Null {
				return invalid("isActive must be a boolean")
			}
			updates["is_active"] = patch.IsActive.Value
		}
		if err := validateProduct(name, slug, price, kind, prep); err != nil {
			return err
		}

		if patch.Slug.Set && slug != product.Slug {
			taken, err := exists(tx, &models.Product{}, "slug = ? AND id <> ?", slug, id)
			if err != nil {
				return err
			}
			if taken {
				return newError(ErrDuplicate, "Product with slug %q already exists", slug)
			}
		}
		if patch.CategoryID.Set {
			if err := requireCategory(tx, patch.CategoryID.Value); err != nil {
				return err
			}
			updates["category_id"] = patch.CategoryID.Value
		}
		if patch.CollectionIDs.Set {
			collectionIDs, err := requireCollections(tx, patch.CollectionIDs.Value)
			if err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", id).Delete(&models.ProductCollection{}).Error; err != nil {
				return err
			}
			if err := linkCollections(tx, id, collectionIDs); err != nil {
				return err
			}
		}

		updates["updated_at"] = time.Now().UTC()
		err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error
		return writeError(err, "Product with slug %q already exists", slug)
	})
}

// RemoveProduct deletes a product that has no variants or digital files
func RemoveProduct(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := forUpdate(tx).Where("id = ?", id).First(&product).Error; err != nil {
			return lookupError(err, "Product")
		}

		hasVariants, err := exists(tx, &models.Variant{}, "product_id = ?", id)
		if err != nil {
			return err
		}
		if hasVariants {
			return newError(ErrReferenced, "Cannot delete product with associated variants")
		}

		hasFiles, err := exists(tx, &models.DigitalFile{}, "product_id = ?", id)
		if err != nil {
			return err
		}
		if hasFiles {
			return newError(ErrReferenced, "Cannot delete product with associated digital files")
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.ProductCollection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
}

// ToggleProductActive flips the active flag, bumps updatedAt and returns the new value
func ToggleProductActive(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var active bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := forUpdate(tx).Where("id = ?", id).First(&product).Error; err != nil {
			return lookupError(err, "Product")
		}
		active = !product.IsActive
		return tx.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		}).Error
	})
	return active, err
}

func validateProduct(name, slug string, price decimal.Decimal, kind models.ProductType, prep *int) error {
	if err := requireText("name", name); err != nil {
		return err
	}
	if err := requireText("slug", slug); err != nil {
		return err
	}
	if price.IsNegative() {
		return invalid("basePrice must not be negative")
	}
	if !kind.Valid() {
		return invalid("type must be physical or digital")
	}
	if prep != nil && *prep < 0 {
		return invalid("preparationDays must not be negative")
	}
	return nil
}

func requireCategory(tx *gorm.DB, categoryID string) error {
	found, err := exists(tx, &models.Category{}, "id = ?", categoryID)
	if err != nil {
		return err
	}
	if !found {
		return notFound("Category")
	}
	return nil
}

// requireCollections checks every id exists and returns them deduplicated, order kept
func requireCollections(tx *gorm.DB, ids []string) ([]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return unique, nil
	}

	var count int64
	if err := tx.Model(&models.Collection{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
		return nil, err
	}
	if int(count) != len(unique) {
		return nil, notFound("Collection")
	}
	return unique, nil
}

func linkCollections(tx *gorm.DB, productID string, collectionIDs []string) error {
	if len(collectionIDs) == 0 {
		return nil
	}
	links := make([]models.ProductCollection, 0, len(collectionIDs))
	for _, id := range collectionIDs {
		links = append(links, models.ProductCollection{ProductID: productID, CollectionID: id})
	}
	return tx.Create(&links).Error
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
