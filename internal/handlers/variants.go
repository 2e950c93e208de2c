package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/types"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// VariantHandler handles variant routes
type VariantHandler struct {
	DB *gorm.DB
}

// StockRequest sets a variant's stock
type StockRequest struct {
	Stock int `json:"stock"`
}

// DecrementRequest takes stock from a variant. Quantity may arrive as a number or a numeric string.
type DecrementRequest struct {
	Quantity types.FlexNumber `json:"quantity" swaggertype:"number"`
}

// GetByID handles GET /api/variants/:id
// @Summary Get a variant by id
// @Tags Variants
// @Produce json
// @Param id path string true "Variant id"
// @Success 200 {object} models.Variant
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /variants/{id} [get]
func (h *VariantHandler) GetByID(c *fiber.Ctx) error {
	variant, err := services.GetVariantByID(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getVariantById")
	}
	return c.JSON(variant)
}

// GetBySku handles GET /api/variants/sku/:sku
// @Summary Get a variant by SKU
// @Tags Variants
// @Produce json
// @Param sku path string true "Variant SKU"
// @Success 200 {object} models.Variant
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /variants/sku/{sku} [get]
func (h *VariantHandler) GetBySku(c *fiber.Ctx) error {
	variant, err := services.GetVariantBySku(c.UserContext(), h.DB, c.Params("sku"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getVariantBySku")
	}
	return c.JSON(variant)
}

// Create handles POST /api/variants
// @Summary Create a variant
// @Tags Variants
// @Accept json
// @Produce json
// @Param body body services.VariantInput true "Variant"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /variants [post]
func (h *VariantHandler) Create(c *fiber.Ctx) error {
	var input services.VariantInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	id, err := services.CreateVariant(c.UserContext(), h.DB, input)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "createVariant")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Update handles PATCH /api/variants/:id
// @Summary Update a variant
// @Tags Variants
// @Accept json
// @Produce json
// @Param id path string true "Variant id"
// @Param body body services.VariantPatch true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /variants/{id} [patch]
func (h *VariantHandler) Update(c *fiber.Ctx) error {
	var patch services.VariantPatch
	if ok, err := parseBody(c, &patch); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.UpdateVariant(c.UserContext(), h.DB, id, patch); err != nil {
		return utils.ServiceErrorResponse(c, err, "updateVariant")
	}
	return utils.MutationSuccessResponse(c, id)
}

// UpdateStock handles PUT /api/variants/:id/stock
// @Summary Set a variant's stock
// @Tags Variants
// @Accept json
// @Produce json
// @Param id path string true "Variant id"
// @Param body body StockRequest true "New stock"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /variants/{id}/stock [put]
func (h *VariantHandler) UpdateStock(c *fiber.Ctx) error {
	var req StockRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.UpdateVariantStock(c.UserContext(), h.DB, id, req.Stock); err != nil {
		return utils.ServiceErrorResponse(c, err, "updateVariantStock")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Decrement handles POST /api/variants/:id/decrement
// @Summary Take stock from a variant
// @Tags Variants
// @Accept json
// @Produce json
// @Param id path string true "Variant id"
// @Param body body DecrementRequest true "Quantity to take"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /variants/{id}/decrement [post]
func (h *VariantHandler) Decrement(c *fiber.Ctx) error {
	var req DecrementRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.DecrementStock(c.UserContext(), h.DB, id, req.Quantity); err != nil {
		return utils.ServiceErrorResponse(c, err, "decrementStock")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Remove handles DELETE /api/variants/:id
// @Summary Delete a variant
// @Tags Variants
// @Produce json
// @Param id path string true "Variant id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /variants/{id} [delete]
func (h *VariantHandler) Remove(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.RemoveVariant(c.UserContext(), h.DB, id); err != nil {
		return utils.ServiceErrorResponse(c, err, "removeVariant")
	}
	return utils.MutationSuccessResponse(c, id)
}
