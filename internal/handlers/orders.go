// orders.go
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
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// OrderHandler handles order and download routes
type OrderHandler struct {
	DB      *gorm.DB
	Store   storage.BlobStore
	Options services.OrderOptions
	Storage services.StorageOptions
}

// StatusRequest moves an order to a new status
type StatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// TrackingRequest records a tracking number
type TrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

// OrderCreatedResponse identifies a placed order
type OrderCreatedResponse struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	Total       string `json:"total"`
}

// Create handles POST /api/orders
// @Summary Place an order
// @Description Prices the items, takes stock, allocates the order number and computes shipping in one transaction
// @Tags Orders
// @Accept json
// @Produce json
// @Param body body services.OrderInput true "Order"
// @Success 200 {object} OrderCreatedResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var input services.OrderInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	order, err := services.CreateOrder(c.UserContext(), h.DB, h.Options, input)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "createOrder")
	}
	return c.JSON(OrderCreatedResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Total.StringFixed(2),
	})
}

// List handles GET /api/orders
// @Summary List orders, newest first
// @Tags Orders
// @Produce json
// @Param status query string false "Order status"
// @Param email query string false "Customer e-mail"
// @Param limit query int false "Maximum number of orders"
// @Success 200 {array} models.Order
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := services.ListOrders(c.UserContext(), h.DB, services.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Email:  c.Query("email"),
		Limit:  c.QueryInt("limit", 0),
	})
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listOrders")
	}
	return c.JSON(orders)
}

// GetByID handles GET /api/orders/:id
// @Summary Get an order by id
// @Tags Orders
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {object} models.Order
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := services.GetOrderByID(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getOrderById")
	}
	return c.JSON(order)
}

// GetByNumber handles GET /api/orders/number/:number
// @Summary Get an order by its number
// @Description The leading '#' may be omitted
// @Tags Orders
// @Produce json
// @Param number path string true "Order number"
// @Success 200 {object} models.Order
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /orders/number/{number} [get]
func (h *OrderHandler) GetByNumber(c *fiber.Ctx) error {
	order, err := services.GetOrderByNumber(c.UserContext(), h.DB, c.Params("number"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getOrderByNumber")
	}
	return c.JSON(order)
}

// UpdateStatus handles PATCH /api/orders/:id/status
// @Summary Move an order forward
// @Description Statuses only move forward; leaving pending_payment issues download links
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order id"
// @Param body body StatusRequest true "New status"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.UpdateOrderStatus(c.UserContext(), h.DB, h.Options, id, req.Status); err != nil {
		return utils.ServiceErrorResponse(c, err, "updateOrderStatus")
	}
	return utils.MutationSuccessResponse(c, id)
}

// SetTracking handles PATCH /api/orders/:id/tracking
// @Summary Record the tracking number
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order id"
// @Param body body TrackingRequest true "Tracking number"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /orders/{id}/tracking [patch]
func (h *OrderHandler) SetTracking(c *fiber.Ctx) error {
	var req TrackingRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.SetOrderTracking(c.UserContext(), h.DB, id, req.TrackingNumber); err != nil {
		return utils.ServiceErrorResponse(c, err, "setOrderTracking")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Downloads handles GET /api/orders/:id/downloads
// @Summary List the download links of an order
// @Tags Downloads
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {array} models.DownloadLink
// @Security BearerAuth
// @Router /orders/{id}/downloads [get]
func (h *OrderHandler) Downloads(c *fiber.Ctx) error {
	links, err := services.ListDownloadLinksByOrder(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listDownloadLinks")
	}
	return c.JSON(links)
}

// IssueDownloads handles POST /api/orders/:id/downloads
// @Summary Issue missing download links for a paid order
// @Tags Downloads
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {array} models.DownloadLink
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /orders/{id}/downloads [post]
func (h *OrderHandler) IssueDownloads(c *fiber.Ctx) error {
	links, err := services.IssueDownloadLinks(c.UserContext(), h.DB, h.Options.Downloads, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "issueDownloadLinks")
	}
	return c.JSON(links)
}

// Redeem handles GET /api/downloads/:token
// @Summary Redeem a download link
// @Description Spends one download and redirects to the file
// @Tags Downloads
// @Param token path string true "Download token"
// @Success 302 "Redirect to the file URL"
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 410 {object} utils.ErrorResponseStruct
// @Router /downloads/{token} [get]
func (h *OrderHandler) Redeem(c *fiber.Ctx) error {
	url, err := services.RedeemDownloadLink(c.UserContext(), h.DB, h.Store, h.Storage, c.Params("token"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "redeemDownloadLink")
	}
	return c.Redirect(url, fiber.StatusFound)
}
