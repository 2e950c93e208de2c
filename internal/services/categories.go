package services

import (
	"context"

	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/types"
	"gorm.io/gorm"
)

// CategoryInput is the payload for creating a category
type CategoryInput struct {
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Order int     `json:"order"`
	Image *string `json:"image,omitempty"`
}

// CategoryPatch is a partial category update. Absent fields are left unchanged.
type CategoryPatch struct {
	Name  types.Optional[string] `json:"name"`
	Slug  types.Optional[string] `json:"slug"`
	Order types.Optional[int]    `json:"order"`
	Image types.Optional[string] `json:"image"`
}

// ListCategories returns every category in display order
func ListCategories(ctx context.Context, db *gorm.DB) ([]models.Category, error) {
	categories := []models.Category{}
	err := quiet(ctx, db).Order("position ASC").Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryBySlug finds a category by its unique slug
func GetCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*models.Category, error) {
	var category models.Category
	if err := quiet(ctx, db).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, lookupError(err, "Category")
	}
	return &category, nil
}

// GetCategoryByID finds a category by id
func GetCategoryByID(ctx context.Context, db *gorm.DB, id string) (*models.Category, error) {
	var category models.Category
	if err := quiet(ctx, db).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, lookupError(err, "Category")
	}
	return &category, nil
}

// CreateCategory inserts a category after checking the slug is free
func CreateCategory(ctx context.Context, db *gorm.DB, input CategoryInput) (string, error) {
	if err := requireText("name", input.Name); err != nil {
		return "", err
	}
	if err := requireText("slug", input.Slug); err != nil {
		return "", err
	}

	category := models.Category{
		Name:  input.Name,
		Slug:  input.Slug,
		Order: input.Order,
		Image: input.Image,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.Category{}, "slug = ?", input.Slug)
		if err != nil {
			return err
		}
		if taken {
			return newError(ErrDuplicate, "Category with slug %q already exists", input.Slug)
		}
		return writeError(tx.Create(&category).Error, "Category with slug %q already exists", input.Slug)
	})
	if err != nil {
		return "", err
	}
	return category.ID, nil
}

// UpdateCategory applies a partial update
func UpdateCategory(ctx context.Context, db *gorm.DB, id string, patch CategoryPatch) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := forUpdate(tx).Where("id = ?", id).First(&category).Error; err != nil {
			return lookupError(err, "Category")
		}

		updates := map[string]interface{}{}
		if patch.Name.Set {
			if patch.Name.Null || requireText("name", patch.Name.Value) != nil {
				return invalid("name is required")
			}
			updates["name"] = patch.Name.Value
		}
		if patch.Order.Set {
			if patch.Order.Null {
				return invalid("order is required")
			}
			updates["position"] = patch.Order.Value
		}
		if patch.Image.Set {
			updates["image"] = patch.Image.Ptr()
		}
		if patch.Slug.Set {
			if patch.Slug.Null || requireText("slug", patch.Slug.Value) != nil {
				return invalid("slug is required")
			}
			newSlug := patch.Slug.Value
			if newSlug != category.Slug {
				taken, err := exists(tx, &models.Category{}, "slug = ? AND id <> ?", newSlug, id)
				if err != nil {
					return err
				}
				if taken {
					return newError(ErrDuplicate, "Category with slug %q already exists", newSlug)
				}
			}
			updates["slug"] = newSlug
		}

		if len(updates) == 0 {
			return nil
		}
		err := tx.Model(&models.Category{}).Where("id = ?", id).Updates(updates).Error
		return writeError(err, "Category with slug %q already exists", patch.Slug.Value)
	})
}

// RemoveCategory deletes a category that no product references
func RemoveCategory(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := forUpdate(tx).Where("id = ?", id).First(&category).Error; err != nil {
			return lookupError(err, "Category")
		}

		referenced, err := exists(tx, &models.Product{}, "category_id = ?", id)
		if err != nil {
			return err
		}
		if referenced {
			return newError(ErrReferenced, "Cannot delete category with associated products")
		}

		return tx.Delete(&category).Error
	})
}

// ReorderCategories sets each category's order to its index in ids.
// The batch is applied in one transaction; an unknown id rolls back every change.
func ReorderCategories(ctx context.Context, db *gorm.DB, ids []string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			result := tx.Model(&models.Category{}).Where("id = ?", id).Update("position", i)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return newError(ErrNotFound, "Category %s not found", id)
			}
		}
		return nil
	})
}
