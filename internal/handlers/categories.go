package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// CategoryHandler handles category routes
type CategoryHandler struct {
	DB *gorm.DB
}

// ReorderRequest is the body of a category reorder
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// List handles GET /api/categories
// @Summary List categories
// @Description All categories ordered by their display order
// @Tags Categories
// @Produce json
// @Success 200 {array} models.Category
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := services.ListCategories(c.UserContext(), h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listCategories")
	}
	return c.JSON(categories)
}

// GetBySlug handles GET /api/categories/slug/:slug
// @Summary Get a category by slug
// @Tags Categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} models.Category
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /categories/slug/{slug} [get]
func (h *CategoryHandler) GetBySlug(c *fiber.Ctx) error {
	category, err := services.GetCategoryBySlug(c.UserContext(), h.DB, c.Params("slug"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getCategoryBySlug")
	}
	return c.JSON(category)
}

// GetByID handles GET /api/categories/:id
// @Summary Get a category by id
// @Tags Categories
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} models.Category
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
	category, err := services.GetCategoryByID(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getCategoryById")
	}
	return c.JSON(category)
}

// Create handles POST /api/categories
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param body body services.CategoryInput true "Category"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var input services.CategoryInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	id, err := services.CreateCategory(c.UserContext(), h.DB, input)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "createCategory")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Update handles PATCH /api/categories/:id
// @Summary Update a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category id"
// @Param body body services.CategoryPatch true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /categories/{id} [patch]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var patch services.CategoryPatch
	if ok, err := parseBody(c, &patch); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.UpdateCategory(c.UserContext(), h.DB, id, patch); err != nil {
		return utils.ServiceErrorResponse(c, err, "updateCategory")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Remove handles DELETE /api/categories/:id
// @Summary Delete a category
// @Description Fails while any product references the category
// @Tags Categories
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Remove(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.RemoveCategory(c.UserContext(), h.DB, id); err != nil {
		return utils.ServiceErrorResponse(c, err, "removeCategory")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Reorder handles POST /api/categories/reorder
// @Summary Reorder categories
// @Description Sets each category's order to its index in ids, all or nothing
// @Tags Categories
// @Accept json
// @Produce json
// @Param body body ReorderRequest true "Category ids in display order"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /categories/reorder [post]
func (h *CategoryHandler) Reorder(c *fiber.Ctx) error {
	var req ReorderRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	if err := services.ReorderCategories(c.UserContext(), h.DB, req.IDs); err != nil {
		return utils.ServiceErrorResponse(c, err, "reorderCategories")
	}
	return utils.MutationSuccessResponse(c, "")
}
