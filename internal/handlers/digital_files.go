package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/localnerve/storefront-data/internal/utils"
	"gorm.io/gorm"
)

// DigitalFileHandler handles digital file routes
type DigitalFileHandler struct {
	DB    *gorm.DB
	Store storage.BlobStore
}

// GetByID handles GET /api/files/:id
// @Summary Get a digital file by id
// @Tags DigitalFiles
// @Produce json
// @Param id path string true "Digital file id"
// @Success 200 {object} models.DigitalFile
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /files/{id} [get]
func (h *DigitalFileHandler) GetByID(c *fiber.Ctx) error {
	file, err := services.GetDigitalFileByID(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getDigitalFileById")
	}
	return c.JSON(file)
}

// Create handles POST /api/files
// @Summary Attach a file to a digital product
// @Tags DigitalFiles
// @Accept json
// @Produce json
// @Param body body services.DigitalFileInput true "Digital file"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /files [post]
func (h *DigitalFileHandler) Create(c *fiber.Ctx) error {
	var input services.DigitalFileInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	id, err := services.CreateDigitalFile(c.UserContext(), h.DB, input)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "createDigitalFile")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Update handles PATCH /api/files/:id
// @Summary Update a digital file
// @Description A replaced or cleared storageId queues the old blob for deletion
// @Tags DigitalFiles
// @Accept json
// @Produce json
// @Param id path string true "Digital file id"
// @Param body body services.DigitalFilePatch true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /files/{id} [patch]
func (h *DigitalFileHandler) Update(c *fiber.Ctx) error {
	var patch services.DigitalFilePatch
	if ok, err := parseBody(c, &patch); !ok {
		return err
	}

	id := c.Params("id")
	if err := services.UpdateDigitalFile(c.UserContext(), h.DB, id, patch); err != nil {
		return utils.ServiceErrorResponse(c, err, "updateDigitalFile")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Remove handles DELETE /api/files/:id
// @Summary Delete a digital file and its blob
// @Tags DigitalFiles
// @Produce json
// @Param id path string true "Digital file id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *DigitalFileHandler) Remove(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.RemoveDigitalFile(c.UserContext(), h.DB, h.Store, id); err != nil {
		return utils.ServiceErrorResponse(c, err, "removeDigitalFile")
	}
	return utils.MutationSuccessResponse(c, id)
}
