// products.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/types"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// ProductHandler handles product routes
type ProductHandler struct {
	DB *gorm.DB
}

// List handles GET /api/products
// @Summary List products
// @Description All filters combine; limit caps the result when positive
// @Tags Products
// @Produce json
// @Param categoryId query string false "Category id"
// @Param type query string false "physical or digital"
// @Param activeOnly query bool false "Only active products"
// @Param limit query int false "Maximum number of products"
// @Success 200 {array} models.Product
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	filter := services.ProductFilter{
		CategoryID: c.Query("categoryId"),
		Type:       models.ProductType(c.Query("type")),
		ActiveOnly: activeOnly(c),
		Limit:      c.QueryInt("limit", 0),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return utils.ErrorResponse(c, "type must be physical or digital", fiber.StatusBadRequest, types.ErrorTypeInvalidArgument)
	}

	products, err := services.ListProducts(c.UserContext(), h.DB, filter)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listProducts")
	}
	return c.JSON(products)
}

// Search handles GET /api/products/search
// @Summary Search products
// @Description Case-insensitive substring match on name or description
// @Tags Products
// @Produce json
// @Param q query string true "Search term"
// @Param activeOnly query bool false "Only active products"
// @Success 200 {array} models.Product
// @Router /products/search [get]
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	products, err := services.SearchProducts(c.UserContext(), h.DB, c.Query("q"), activeOnly(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "searchProducts")
	}
	return c.JSON(products)
}

// GetBySlug handles GET /api/products/slug/:slug
// @Summary Get a product by slug
// @Tags Products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} models.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /products/slug/{slug} [get]
func (h *ProductHandler) GetBySlug(c *fiber.Ctx) error {
	product, err := services.GetProductBySlug(c.UserContext(), h.DB, c.Params("slug"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getProductBySlug")
	}
	return c.JSON(product)
}

// GetByID handles GET /api/products/:id
// @Summary Get a product by id
// @Tags Products
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} models.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	product, err := services.GetProductByID(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getProductById")
	}
	return c.JSON(product)
}

// Create handles POST /api/products
// @Summary Create a product
// @Tags Products
// @Accept json
// @Produce json
// @Param body body services.ProductInput true "Product"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var input services.ProductInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	id, err := services.CreateProduct(c.UserContext(), h.DB, input)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "createProduct")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Update handles PATCH /api/products/:id
// @Summary Update a product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product id"
// @Param body body services.ProductPatch true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id} [patch]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var patch services.ProductPatch
	if ok, err := parseBody(c, &patch); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.UpdateProduct(c.UserContext(), h.DB, id, patch); err != nil {
		return utils.ServiceErrorResponse(c, err, "updateProduct")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Remove handles DELETE /api/products/:id
// @Summary Delete a product
// @Description Fails while the product has variants or digital files
// @Tags Products
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Remove(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.RemoveProduct(c.UserContext(), h.DB, id); err != nil {
		return utils.ServiceErrorResponse(c, err, "removeProduct")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Toggle handles POST /api/products/:id/toggle
// @Summary Flip a product's active flag
// @Tags Products
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} ToggleResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id}/toggle [post]
func (h *ProductHandler) Toggle(c *fiber.Ctx) error {
	id := c.Params("id")
	active, err := services.ToggleProductActive(c.UserContext(), h.DB, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "toggleProduct")
	}
	return c.JSON(ToggleResponse{ID: id, IsActive: active})
}

// Variants handles GET /api/products/:id/variants
// @Summary List the variants of a product
// @Tags Variants
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {array} models.Variant
// @Router /products/{id}/variants [get]
func (h *ProductHandler) Variants(c *fiber.Ctx) error {
	variants, err := services.ListVariantsByProduct(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listVariantsByProduct")
	}
	return c.JSON(variants)
}

// Files handles GET /api/products/:id/files
// @Summary List the digital files of a product
// @Tags DigitalFiles
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {array} models.DigitalFile
// @Router /products/{id}/files [get]
func (h *ProductHandler) Files(c *fiber.Ctx) error {
	files, err := services.ListDigitalFilesByProduct(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listDigitalFilesByProduct")
	}
	return c.JSON(files)
}
