package dto

import (
	"net/http"
	"strings"
)

// Error codes returned by the API. Format: ERR_<CATEGORY>[_<DESCRIPTION>]
const (
	ErrCodeInternal       = "ERR_INTERNAL"
	ErrCodeValidation     = "ERR_VALIDATION"
	ErrCodeBadRequest     = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput   = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON    = "ERR_INVALID_JSON"
	ErrCodeNotFound       = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists  = "ERR_ALREADY_EXISTS"
	ErrCodeConflict       = "ERR_CONFLICT"
	ErrCodeInvalidState   = "ERR_INVALID_STATE"
	ErrCodeUnsupported    = "ERR_UNSUPPORTED"
	ErrCodeRequestTooBig  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeServiceUnready = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeAlreadyExists:  http.StatusConflict,
	ErrCodeConflict:       http.StatusConflict,
	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodeUnsupported:    http.StatusNotImplemented,
	ErrCodeRequestTooBig:  http.StatusRequestEntityTooLarge,
	ErrCodeServiceUnready: http.StatusServiceUnavailable,
}

// domainCodes maps domain error codes to API codes
var domainCodes = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"INVALID_STATE":  ErrCodeInvalidState,
	"UNSUPPORTED":    ErrCodeUnsupported,
}

// GetHTTPStatus returns the HTTP status for an API code. Domain INVALID_*
// codes are client errors; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its API code.
// Codes without a mapping pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	return code
}
