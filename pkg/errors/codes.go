package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Aliases used at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")

	CodeInvalidGoal     = ErrCodeAdvisoryInvalidGoal
	CodeCaseQueryFailed = ErrCodeCaseQueryFailed
)

// Case-study store error codes
const (
	ErrCodeCaseQueryFailed    ErrorCode = "CASE_001"
	ErrCodeCaseStoreUnhealthy ErrorCode = "CASE_002"
	ErrCodeCaseDecodeFailed   ErrorCode = "CASE_003"
)

// Advisory error codes
const (
	ErrCodeAdvisoryInvalidGoal   ErrorCode = "ADVISORY_001"
	ErrCodeAdvisoryUnknownAction ErrorCode = "ADVISORY_002"
)

// Lead error codes
const (
	ErrCodeLeadInvalid     ErrorCode = "LEAD_001"
	ErrCodeLeadNotFound    ErrorCode = "LEAD_002"
	ErrCodeLeadStoreFailed ErrorCode = "LEAD_003"
	ErrCodeLeadPublish     ErrorCode = "LEAD_004"
)

// Text generation error codes
const (
	ErrCodeTextGenNotConfigured ErrorCode = "TEXTGEN_001"
	ErrCodeTextGenFailed        ErrorCode = "TEXTGEN_002"
	ErrCodeTextGenEmpty         ErrorCode = "TEXTGEN_003"
)

// Spreadsheet sync error codes
const (
	ErrCodeSheetsNotConfigured ErrorCode = "SHEETS_001"
	ErrCodeSheetsReadFailed    ErrorCode = "SHEETS_002"
	ErrCodeSheetsWriteFailed   ErrorCode = "SHEETS_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusServiceUnavailable,

	ErrCodeCaseQueryFailed:    http.StatusBadGateway,
	ErrCodeCaseStoreUnhealthy: http.StatusServiceUnavailable,
	ErrCodeCaseDecodeFailed:   http.StatusBadGateway,

	ErrCodeAdvisoryInvalidGoal:   http.StatusBadRequest,
	ErrCodeAdvisoryUnknownAction: http.StatusBadRequest,

	ErrCodeLeadInvalid:     http.StatusBadRequest,
	ErrCodeLeadNotFound:    http.StatusNotFound,
	ErrCodeLeadStoreFailed: http.StatusInternalServerError,
	ErrCodeLeadPublish:     http.StatusBadGateway,

	ErrCodeTextGenNotConfigured: http.StatusServiceUnavailable,
	ErrCodeTextGenFailed:        http.StatusBadGateway,
	ErrCodeTextGenEmpty:         http.StatusBadGateway,

	ErrCodeSheetsNotConfigured: http.StatusServiceUnavailable,
	ErrCodeSheetsReadFailed:    http.StatusBadGateway,
	ErrCodeSheetsWriteFailed:   http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",

	ErrCodeCaseQueryFailed:    "case study query failed",
	ErrCodeCaseStoreUnhealthy: "case study store unavailable",
	ErrCodeCaseDecodeFailed:   "failed to decode case study documents",

	ErrCodeAdvisoryInvalidGoal:   "invalid reduction goal",
	ErrCodeAdvisoryUnknownAction: "unknown action",

	ErrCodeLeadInvalid:     "invalid lead",
	ErrCodeLeadNotFound:    "lead not found",
	ErrCodeLeadStoreFailed: "failed to store lead",
	ErrCodeLeadPublish:     "failed to publish lead event",

	ErrCodeTextGenNotConfigured: "text generation not configured",
	ErrCodeTextGenFailed:        "text generation failed",
	ErrCodeTextGenEmpty:         "text generation returned no content",

	ErrCodeSheetsNotConfigured: "spreadsheet sync not configured",
	ErrCodeSheetsReadFailed:    "failed to read spreadsheet",
	ErrCodeSheetsWriteFailed:   "failed to write spreadsheet",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
