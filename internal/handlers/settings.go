package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// SettingsHandler handles store settings routes
type SettingsHandler struct {
	DB       *gorm.DB
	Defaults services.StoreDefaults
}

// OrderNumberResponse carries a freshly allocated order number
type OrderNumberResponse struct {
	OrderNumber string `json:"orderNumber"`
}

// Get handles GET /api/settings
// @Summary Get the store settings
// @Tags Settings
// @Produce json
// @Success 200 {object} models.StoreSettings
// @Success 204 "Store not initialized"
// @Router /settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := services.GetSettings(c.UserContext(), h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getSettings")
	}
	if settings == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(settings)
}

// Initialize handles POST /api/settings/initialize
// @Summary Create the store settings from the configured defaults
// @Description Leaves existing settings untouched
// @Tags Settings
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Security BearerAuth
// @Router /settings/initialize [post]
func (h *SettingsHandler) Initialize(c *fiber.Ctx) error {
	id, err := services.InitializeSettings(c.UserContext(), h.DB, h.Defaults)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "initializeSettings")
	}
	return utils.MutationSuccessResponse(c, strconv.FormatUint(uint64(id), 10))
}

// Update handles PATCH /api/settings
// @Summary Update the store settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body services.SettingsUpdate true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /settings [patch]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var update services.SettingsUpdate
	if ok, err := parseBody(c, &update); !ok {
		return err
	}

	if err := services.UpdateSettings(c.UserContext(), h.DB, update); err != nil {
		return utils.ServiceErrorResponse(c, err, "updateSettings")
	}
	return utils.MutationSuccessResponse(c, "")
}

// NextOrderNumber handles POST /api/settings/next-order-number
// @Summary Allocate the next order number
// @Tags Settings
// @Produce json
// @Success 200 {object} OrderNumberResponse
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /settings/next-order-number [post]
func (h *SettingsHandler) NextOrderNumber(c *fiber.Ctx) error {
	number, err := services.GetNextOrderNumber(c.UserContext(), h.DB, h.Defaults.OrderNumberPrefix)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getNextOrderNumber")
	}
	return c.JSON(OrderNumberResponse{OrderNumber: number})
}
