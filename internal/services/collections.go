package services

import (
	"context"

	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/types"
	"gorm.io/gorm"
)

// CollectionInput is the payload for creating a collection. IsActive defaults to true.
type CollectionInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CollectionPatch is a partial collection update
type CollectionPatch struct {
	Name        types.Optional[string] `json:"name"`
	Slug        types.Optional[string] `json:"slug"`
	Description types.Optional[string] `json:"description"`
	Image       types.Optional[string] `json:"image"`
	IsActive    types.Optional[bool]   `json:"isActive"`
}

// ListCollections returns collections, optionally only the active ones
func ListCollections(ctx context.Context, db *gorm.DB, activeOnly bool) ([]models.Collection, error) {
	collections := []models.Collection{}
	query := quiet(ctx, db).Order("created_at ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&collections).Error
	return collections, err
}

// GetCollectionBySlug finds a collection by its unique slug
func GetCollectionBySlug(ctx context.Context, db *gorm.DB, slug string) (*models.Collection, error) {
	var collection models.Collection
	if err := quiet(ctx, db).Where("slug = ?", slug).First(&collection).Error; err != nil {
		return nil, lookupError(err, "Collection")
	}
	return &collection, nil
}

// GetCollectionByID finds a collection by id
func GetCollectionByID(ctx context.Context, db *gorm.DB, id string) (*models.Collection, error) {
	var collection models.Collection
	if err := quiet(ctx, db).Where("id = ?", id).First(&collection).Error; err != nil {
		return nil, lookupError(err, "Collection")
	}
	return &collection, nil
}

// CreateCollection inserts a collection after checking the slug is free
func CreateCollection(ctx context.Context, db *gorm.DB, input CollectionInput) (string, error) {
	if err := requireText("name", input.Name); err != nil {
		return "", err
	}
	if err := requireText("slug", input.Slug); err != nil {
		return "", err
	}

	collection := models.Collection{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Image:       input.Image,
		IsActive:    true,
	}
	if input.IsActive != nil {
		collection.IsActive = *input.IsActive
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.Collection{}, "slug = ?", input.Slug)
		if err != nil {
			return err
		}
		if taken {
			return newError(ErrDuplicate, "Collection with slug %q already exists", input.Slug)
		}
		return writeError(tx.Create(&collection).Error, "Collection with slug %q already exists", input.Slug)
	})
	if err != nil {
		return "", err
	}
	return collection.ID, nil
}

// UpdateCollection applies a partial update
func UpdateCollection(ctx context.Context, db *gorm.DB, id string, patch CollectionPatch) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := forUpdate(tx).Where("id = ?", id).First(&collection).Error; err != nil {
			return lookupError(err, "Collection")
		}

		updates := map[string]interface{}{}
		if patch.Name.Set {
			if patch.Name.Null || requireText("name", patch.Name.Value) != nil {
				return invalid("name is required")
			}
			updates["name"] = patch.Name.Value
		}
		if patch.Description.Set {
			updates["description"] = patch.Description.Ptr()
		}
		if patch.Image.Set {
			updates["image"] = patch.Image.Ptr()
		}
		if patch.IsActive.Set {
			if patch.IsActive.Null {
				return invalid("isActive must be a boolean")
			}
			updates["is_active"] = patch.IsActive.Value
		}
		if patch.Slug.Set {
			if patch.Slug.Null || requireText("slug", patch.Slug.Value) != nil {
				return invalid("slug is required")
			}
			newSlug := patch.Slug.Value
			if newSlug != collection.Slug {
				taken, err := exists(tx, &models.Collection{}, "slug = ? AND id <> ?", newSlug, id)
				if err != nil {
					return err
				}
				if taken {
					return newError(ErrDuplicate, "Collection with slug %q already exists", newSlug)
				}
			}
			updates["slug"] = newSlug
		}

		if len(updates) == 0 {
			return nil
		}
		err := tx.Model(&models.Collection{}).Where("id = ?", id).Updates(updates).Error
		return writeError(err, "Collection with slug %q already exists", patch.Slug.Value)
	})
}

// RemoveCollection deletes a collection and detaches it from every product
func RemoveCollection(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := forUpdate(tx).Where("id = ?", id).First(&collection).Error; err != nil {
			return lookupError(err, "Collection")
		}
		if err := tx.Where("collection_id = ?", id).Delete(&models.ProductCollection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&collection).Error
	})
}

// ToggleCollectionActive flips the active flag and returns the new value
func ToggleCollectionActive(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var active bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := forUpdate(tx).Where("id = ?", id).First(&collection).Error; err != nil {
			return lookupError(err, "Collection")
		}
		active = !collection.IsActive
		return tx.Model(&models.Collection{}).Where("id = ?", id).Update("is_active", active).Error
	})
	return active, err
}
