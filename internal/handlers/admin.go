package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// AdminHandler handles login, admin users, maintenance and health routes
type AdminHandler struct {
	Config   *config.Config
	DB       *gorm.DB
	Store    storage.BlobStore
	Auth     services.AuthOptions
	Defaults services.StoreDefaults
}

// CredentialsRequest carries a username and password
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/admin/login
// @Summary Log in as an admin
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body CredentialsRequest true "Credentials"
// @Success 200 {object} services.LoginResult
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req CredentialsRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	result, err := services.Authenticate(c.UserContext(), h.DB, h.Auth, req.Username, req.Password)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "login")
	}
	return c.JSON(result)
}

// CreateUser handles POST /api/admin/users
// @Summary Create an admin user
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body CredentialsRequest true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req CredentialsRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	id, err := services.CreateAdminUser(c.UserContext(), h.DB, req.Username, req.Password)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "createAdminUser")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Seed handles POST /api/admin/seed
// @Summary Populate the demo catalog
// @Description Idempotent; returns how many records were created
// @Tags Admin
// @Produce json
// @Success 200 {object} services.SeedResult
// @Security BearerAuth
// @Router /admin/seed [post]
func (h *AdminHandler) Seed(c *fiber.Ctx) error {
	result, err := services.SeedAll(c.UserContext(), h.DB, h.Defaults)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "seedAll")
	}
	return c.JSON(result)
}

// Clear handles POST /api/admin/clear
// @Summary Delete all data
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Security BearerAuth
// @Router /admin/clear [post]
func (h *AdminHandler) Clear(c *fiber.Ctx) error {
	if err := services.ClearAll(c.UserContext(), h.DB); err != nil {
		return utils.ServiceErrorResponse(c, err, "clearAll")
	}
	return utils.MutationSuccessResponse(c, "")
}

// Cleanups handles GET /api/admin/cleanups
// @Summary List blobs queued for deletion
// @Tags Admin
// @Produce json
// @Success 200 {array} models.BlobCleanup
// @Security BearerAuth
// @Router /admin/cleanups [get]
func (h *AdminHandler) Cleanups(c *fiber.Ctx) error {
	pending, err := services.ListBlobCleanups(c.UserContext(), h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "listBlobCleanups")
	}
	return c.JSON(pending)
}

// Sweep handles POST /api/admin/cleanups/sweep
// @Summary Retry deletion of queued blobs now
// @Tags Admin
// @Produce json
// @Success 200 {object} services.CleanupResult
// @Security BearerAuth
// @Router /admin/cleanups/sweep [post]
func (h *AdminHandler) Sweep(c *fiber.Ctx) error {
	result, err := services.SweepBlobCleanups(c.UserContext(), h.DB, h.Store)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "sweepBlobCleanups")
	}
	return c.JSON(result)
}

// Health handles GET /api/health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB, h.Store)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
