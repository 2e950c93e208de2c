package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, types.ErrorTypeNotFound)
}

// MutationSuccessResponse sends a success response for mutations, with the affected record id when there is one
func MutationSuccessResponse(c *fiber.Ctx, id string) error {
	body := fiber.Map{
		"message":   "Success",
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if id != "" {
		body["id"] = id
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// ErrorStatus maps an error to its HTTP status and envelope type
func ErrorStatus(err error) (int, string) {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		return custom.Code, custom.Type
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, types.ErrorTypeUnknown
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, types.ErrorTypeNotFound
	case errors.Is(err, services.ErrDuplicate):
		return fiber.StatusConflict, types.ErrorTypeDuplicate
	case errors.Is(err, services.ErrReferenced):
		return fiber.StatusConflict, types.ErrorTypeReferenced
	case errors.Is(err, services.ErrInvalidArgument):
		return fiber.StatusBadRequest, types.ErrorTypeInvalidArgument
	case errors.Is(err, services.ErrInsufficientStock):
		return fiber.StatusConflict, types.ErrorTypeInsufficientStock
	case errors.Is(err, services.ErrNotInitialized):
		return fiber.StatusConflict, types.ErrorTypeNotInitialized
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict, types.ErrorTypeConflict
	case errors.Is(err, services.ErrExpired):
		return fiber.StatusGone, types.ErrorTypeExpired
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized, types.ErrorTypeUnauthorized
	}
	return fiber.StatusInternalServerError, types.ErrorTypeUnknown
}

// ServiceErrorResponse answers with the envelope for err. Internal errors are reported under operation.
func ServiceErrorResponse(c *fiber.Ctx, err error, operation string) error {
	status, errorType := ErrorStatus(err)
	message := err.Error()
	var custom *types.CustomError
	if errors.As(err, &custom) {
		message = custom.Message
	}
	if status == fiber.StatusInternalServerError {
		errorType = operation
	}
	return ErrorResponse(c, message, status, errorType)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp"`
}
