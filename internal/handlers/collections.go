package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// CollectionHandler handles collection routes
type CollectionHandler struct {
	DB *gorm.DB
}

// ToggleResponse reports the flag value after a toggle
type ToggleResponse struct {
	ID       string `json:"id"`
	IsActive bool   `json:"isActive"`
}

// List handles GET /api/collections
// @Summary List collections
// @Tags Collections
// @Produce json
// @Param activeOnly query bool false "Only active collections"
// @Success 200 {array} models.Collection
// @Router /collections [get]
func (h *CollectionHandler) List(c *fiber.Ctx) error {
	collections, err := services.ListCollections(c.UserContext(), h.DB, activeOnly(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listCollections")
	}
	return c.JSON(collections)
}

// GetBySlug handles GET /api/collections/slug/:slug
// @Summary Get a collection by slug
// @Tags Collections
// @Produce json
// @Param slug path string true "Collection slug"
// @Success 200 {object} models.Collection
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /collections/slug/{slug} [get]
func (h *CollectionHandler) GetBySlug(c *fiber.Ctx) error {
	collection, err := services.GetCollectionBySlug(c.UserContext(), h.DB, c.Params("slug"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getCollectionBySlug")
	}
	return c.JSON(collection)
}

// GetByID handles GET /api/collections/:id
// @Summary Get a collection by id
// @Tags Collections
// @Produce json
// @Param id path string true "Collection id"
// @Success 200 {object} models.Collection
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /collections/{id} [get]
func (h *CollectionHandler) GetByID(c *fiber.Ctx) error {
	collection, err := services.GetCollectionByID(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getCollectionById")
	}
	return c.JSON(collection)
}

// Create handles POST /api/collections
// @Summary Create a collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param body body services.CollectionInput true "Collection"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /collections [post]
func (h *CollectionHandler) Create(c *fiber.Ctx) error {
	var input services.CollectionInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	id, err := services.CreateCollection(c.UserContext(), h.DB, input)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "createCollection")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Update handles PATCH /api/collections/:id
// @Summary Update a collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param id path string true "Collection id"
// @Param body body services.CollectionPatch true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /collections/{id} [patch]
func (h *CollectionHandler) Update(c *fiber.Ctx) error {
	var patch services.CollectionPatch
	if ok, err := parseBody(c, &patch); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.UpdateCollection(c.UserContext(), h.DB, id, patch); err != nil {
		return utils.ServiceErrorResponse(c, err, "updateCollection")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Remove handles DELETE /api/collections/:id
// @Summary Delete a collection
// @Description Detaches the collection from its products
// @Tags Collections
// @Produce json
// @Param id path string true "Collection id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /collections/{id} [delete]
func (h *CollectionHandler) Remove(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.RemoveCollection(c.UserContext(), h.DB, id); err != nil {
		return utils.ServiceErrorResponse(c, err, "removeCollection")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Toggle handles POST /api/collections/:id/toggle
// @Summary Flip a collection's active flag
// @Tags Collections
// @Produce json
// @Param id path string true "Collection id"
// @Success 200 {object} ToggleResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /collections/{id}/toggle [post]
func (h *CollectionHandler) Toggle(c *fiber.Ctx) error {
	id := c.Params("id")
	active, err := services.ToggleCollectionActive(c.UserContext(), h.DB, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "toggleCollection")
	}
	return c.JSON(ToggleResponse{ID: id, IsActive: active})
}

// Products handles GET /api/collections/:id/products
// @Summary List the products of a collection
// @Tags Collections
// @Produce json
// @Param id path string true "Collection id"
// @Param activeOnly query bool false "Only active products"
// @Success 200 {array} models.Product
// @Router /collections/{id}/products [get]
func (h *CollectionHandler) Products(c *fiber.Ctx) error {
	products, err := services.GetProductsByCollection(c.UserContext(), h.DB, c.Params("id"), activeOnly(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getProductsByCollection")
	}
	return c.JSON(products)
}
