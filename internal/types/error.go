package types

import "fmt"

// Error types reported in the response envelope
const (
	ErrorTypeNotFound          = "notFound"
	ErrorTypeDuplicate         = "duplicate"
	ErrorTypeReferenced        = "referenced"
	ErrorTypeInvalidArgument   = "invalidArgument"
	ErrorTypeInsufficientStock = "insufficientStock"
	ErrorTypeNotInitialized    = "notInitialized"
	ErrorTypeConflict          = "conflict"
	ErrorTypeExpired           = "expired"
	ErrorTypeUnauthorized      = "authorization"
	ErrorTypeUnknown           = "unknown"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
