package dto

import "net/http"

// API error codes. Clients branch on these, the message text is advisory.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInsufficientLots    = "ERR_INSUFFICIENT_LOTS"
	ErrCodeInvariantViolation  = "ERR_INVARIANT_VIOLATION"
	ErrCodeInvalidLocationPair = "ERR_INVALID_LOCATION_PAIR"
)

// httpStatusByCode decides the response status for each API code. Business
// rule rejections are 422 so clients can tell them apart from malformed
// input, conflicts from optimistic locking and duplicates are 409.
var httpStatusByCode = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeInsufficientLots:    http.StatusUnprocessableEntity,
	ErrCodeInvariantViolation:  http.StatusUnprocessableEntity,
	ErrCodeInvalidLocationPair: http.StatusUnprocessableEntity,
}

// GetHTTPStatus resolves an API code to its status, unknown codes are a 500
func GetHTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeToAPI translates the bare codes raised by the domain layer into
// the prefixed API codes
var domainCodeToAPI = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":    ErrCodeInsufficientStock,
	"INSUFFICIENT_LOTS":     ErrCodeInsufficientLots,
	"INVARIANT_VIOLATION":   ErrCodeInvariantViolation,
	"INVALID_LOCATION_PAIR": ErrCodeInvalidLocationPair,
}

// NormalizeErrorCode maps a domain code to its API form, passing through
// anything already in API form or unrecognized
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodeToAPI[code]; ok {
		return apiCode
	}
	return code
}
