package dto

import "net/http"

// API error codes, ERR_<DESCRIPTION>
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"

	// ErrCodeUnauthorized means the session is not logged in
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"

	ErrCodeNotFound = "ERR_NOT_FOUND"
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeCancelled means navigation abandoned a pending login, signup or
	// checkout
	ErrCodeCancelled = "ERR_OPERATION_CANCELLED"

	ErrCodeInvalidQuantity   = "ERR_INVALID_QUANTITY"
	ErrCodeEmptyCart         = "ERR_EMPTY_CART"
	ErrCodeInvalidSort       = "ERR_INVALID_SORT"
	ErrCodeInvalidPriceRange = "ERR_INVALID_PRICE_RANGE"

	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

var statuses = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeCancelled:          http.StatusConflict,
	ErrCodeInvalidQuantity:    http.StatusBadRequest,
	ErrCodeInvalidSort:        http.StatusBadRequest,
	ErrCodeInvalidPriceRange:  http.StatusBadRequest,
	ErrCodeEmptyCart:          http.StatusUnprocessableEntity,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
}

// domainAliases covers domain codes whose API code is not ERR_ + the code
var domainAliases = map[string]string{
	"INVALID_PRICE":    ErrCodeInvalidInput,
	"INVALID_PRODUCT":  ErrCodeInvalidInput,
	"VALIDATION_ERROR": ErrCodeValidation,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// GetHTTPStatus is the status for an API error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := statuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode turns a domain error code such as EMPTY_CART into its
// API form. API codes and unknown codes come back unchanged.
func NormalizeErrorCode(code string) string {
	if alias, ok := domainAliases[code]; ok {
		return alias
	}
	if _, ok := statuses["ERR_"+code]; ok {
		return "ERR_" + code
	}
	return code
}
