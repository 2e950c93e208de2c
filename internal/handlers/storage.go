package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/localnerve/storefront-data/internal/types"
	"github.com/localnerve/storefront-data/internal/utils"
)

// StorageHandler handles blob storage routes
type StorageHandler struct {
	Store          storage.BlobStore
	Options        services.StorageOptions
	MaxUploadBytes int
}

// UploadURLResponse is a one-time upload URL
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
}

// UploadResponse carries the id of a stored blob
type UploadResponse struct {
	StorageID string `json:"storageId"`
}

// FileURLResponse carries a public blob URL, or null when the blob is unknown
type FileURLResponse struct {
	URL *string `json:"url"`
}

// FileURLsRequest lists the blobs to resolve. A single id string is accepted too.
type FileURLsRequest struct {
	StorageIDs types.FlexList[string] `json:"storageIds" swaggertype:"array,string"`
}

// GenerateUploadURL handles POST /api/storage/upload-url
// @Summary Create a one-time upload URL
// @Tags Storage
// @Produce json
// @Success 200 {object} UploadURLResponse
// @Security BearerAuth
// @Router /storage/upload-url [post]
func (h *StorageHandler) GenerateUploadURL(c *fiber.Ctx) error {
	url, err := services.GenerateUploadURL(c.UserContext(), h.Store, h.Options)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "generateUploadUrl")
	}
	return c.JSON(UploadURLResponse{UploadURL: url})
}

// Upload handles POST /api/storage/upload/:token
// @Summary Upload a blob with a one-time token
// @Description The raw request body is stored with the request Content-Type
// @Tags Storage
// @Accept octet-stream
// @Produce json
// @Param token path string true "Upload token"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 410 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Router /storage/upload/{token} [post]
func (h *StorageHandler) Upload(c *fiber.Ctx) error {
	body := c.Body()
	if h.MaxUploadBytes > 0 && len(body) > h.MaxUploadBytes {
		return utils.ErrorResponse(c, fmt.Sprintf("Upload exceeds %d bytes", h.MaxUploadBytes),
			fiber.StatusRequestEntityTooLarge, types.ErrorTypeInvalidArgument)
	}

	// fasthttp reuses the body buffer after the handler returns
	data := make([]byte, len(body))
	copy(data, body)

	id, err := services.UploadBlob(c.UserContext(), h.Store, c.Params("token"), c.Get(fiber.HeaderContentType), data)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "uploadBlob")
	}
	return c.JSON(UploadResponse{StorageID: id})
}

// Serve handles GET /api/storage/files/:id
// @Summary Download a blob
// @Tags Storage
// @Produce octet-stream
// @Param id path string true "Storage id"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /storage/files/{id} [get]
func (h *StorageHandler) Serve(c *fiber.Ctx) error {
	blob, err := services.GetBlob(c.UserContext(), h.Store, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getFile")
	}

	c.Set(fiber.HeaderContentType, blob.ContentType)
	c.Set(fiber.HeaderLastModified, blob.CreatedAt.UTC().Format(time.RFC1123))
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(blob.Data)
}

// GetURL handles GET /api/storage/url/:id
// @Summary Resolve a blob id to its URL
// @Tags Storage
// @Produce json
// @Param id path string true "Storage id"
// @Success 200 {object} FileURLResponse
// @Security BearerAuth
// @Router /storage/url/{id} [get]
func (h *StorageHandler) GetURL(c *fiber.Ctx) error {
	url, err := services.GetFileURL(c.UserContext(), h.Store, h.Options, c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getUrl")
	}
	return c.JSON(FileURLResponse{URL: url})
}

// GetURLs handles POST /api/storage/urls
// @Summary Resolve several blob ids to URLs
// @Description Ids come from the body or the ids query parameter; unknown ids resolve to null
// @Tags Storage
// @Accept json
// @Produce json
// @Param body body FileURLsRequest false "Storage ids"
// @Param ids query string false "Comma-separated storage ids"
// @Success 200 {array} string
// @Security BearerAuth
// @Router /storage/urls [post]
func (h *StorageHandler) GetURLs(c *fiber.Ctx) error {
	var req FileURLsRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
	}
	ids := types.TrimStrings(req.StorageIDs.Slice())
	if len(ids) == 0 {
		ids = parseList(c, "ids")
	}

	urls, err := services.GetFileURLs(c.UserContext(), h.Store, h.Options, ids)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "getUrls")
	}
	return c.JSON(urls)
}

// Delete handles DELETE /api/storage/files/:id
// @Summary Delete a blob
// @Tags Storage
// @Produce json
// @Param id path string true "Storage id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /storage/files/{id} [delete]
func (h *StorageHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.DeleteFile(c.UserContext(), h.Store, id); err != nil {
		return utils.ServiceErrorResponse(c, err, "deleteFile")
	}
	return utils.MutationSuccessResponse(c, id)
}
