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
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Aliases kept for readability at call sites.
const (
	CodeUnknown = ErrorCode("UNKNOWN")
	CodeOK      = ErrorCode("OK")
)

// Prompt Module Error Codes
const (
	ErrCodePromptNotFound      ErrorCode = "PRM_001"
	ErrCodePromptAlreadyExists ErrorCode = "PRM_002"
	ErrCodePromptTextEmpty     ErrorCode = "PRM_003"
	ErrCodePromptStatusInvalid ErrorCode = "PRM_004"
	ErrCodePromptImportFailed  ErrorCode = "PRM_005"
)

// Page Module Error Codes
const (
	ErrCodePageNotFound       ErrorCode = "PGE_001"
	ErrCodePageURLInvalid     ErrorCode = "PGE_002"
	ErrCodePageAlreadyExists  ErrorCode = "PGE_003"
	ErrCodePageSnapshotFailed ErrorCode = "PGE_004"
)

// Match Module Error Codes
const (
	ErrCodeMatchTypeInvalid    ErrorCode = "MTC_001"
	ErrCodeMatchSearchFailed   ErrorCode = "MTC_002"
	ErrCodeMatchReplaceFailed  ErrorCode = "MTC_003"
	ErrCodeMatchCorpusEmpty    ErrorCode = "MTC_004"
	ErrCodeThresholdInvalid    ErrorCode = "MTC_005"
	ErrCodeVectorDimMismatch   ErrorCode = "MTC_006"
	ErrCodeVectorIndexFailed   ErrorCode = "MTC_007"
)

// Opportunity Module Error Codes
const (
	ErrCodeOpportunityNotFound      ErrorCode = "OPP_001"
	ErrCodeOpportunityActionInvalid ErrorCode = "OPP_002"
	ErrCodeOpportunityStatusInvalid ErrorCode = "OPP_003"
	ErrCodeSuggestionFailed         ErrorCode = "OPP_004"
	ErrCodeOpportunityWriteFailed   ErrorCode = "OPP_005"
)

// NLP Module Error Codes
const (
	ErrCodeIntentInvalid           ErrorCode = "NLP_001"
	ErrCodeClassificationFailed    ErrorCode = "NLP_002"
	ErrCodeLanguageDetectionFailed ErrorCode = "NLP_003"
)

// Embedding Module Error Codes
const (
	ErrCodeEmbeddingFailed      ErrorCode = "EMB_001"
	ErrCodeEmbeddingUnavailable ErrorCode = "EMB_002"
	ErrCodeEmbeddingDimInvalid  ErrorCode = "EMB_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodePromptNotFound:      http.StatusNotFound,
	ErrCodePromptAlreadyExists: http.StatusConflict,
	ErrCodePromptTextEmpty:     http.StatusBadRequest,
	ErrCodePromptStatusInvalid: http.StatusBadRequest,
	ErrCodePromptImportFailed:  http.StatusInternalServerError,

	ErrCodePageNotFound:       http.StatusNotFound,
	ErrCodePageURLInvalid:     http.StatusBadRequest,
	ErrCodePageAlreadyExists:  http.StatusConflict,
	ErrCodePageSnapshotFailed: http.StatusInternalServerError,

	ErrCodeMatchTypeInvalid:   http.StatusBadRequest,
	ErrCodeMatchSearchFailed:  http.StatusInternalServerError,
	ErrCodeMatchReplaceFailed: http.StatusInternalServerError,
	ErrCodeMatchCorpusEmpty:   http.StatusUnprocessableEntity,
	ErrCodeThresholdInvalid:   http.StatusBadRequest,
	ErrCodeVectorDimMismatch:  http.StatusBadRequest,
	ErrCodeVectorIndexFailed:  http.StatusInternalServerError,

	ErrCodeOpportunityNotFound:      http.StatusNotFound,
	ErrCodeOpportunityActionInvalid: http.StatusBadRequest,
	ErrCodeOpportunityStatusInvalid: http.StatusBadRequest,
	ErrCodeSuggestionFailed:         http.StatusInternalServerError,
	ErrCodeOpportunityWriteFailed:   http.StatusInternalServerError,

	ErrCodeIntentInvalid:           http.StatusBadRequest,
	ErrCodeClassificationFailed:    http.StatusInternalServerError,
	ErrCodeLanguageDetectionFailed: http.StatusInternalServerError,

	ErrCodeEmbeddingFailed:      http.StatusInternalServerError,
	ErrCodeEmbeddingUnavailable: http.StatusServiceUnavailable,
	ErrCodeEmbeddingDimInvalid:  http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodePromptNotFound:      "prompt not found",
	ErrCodePromptAlreadyExists: "prompt already exists",
	ErrCodePromptTextEmpty:     "prompt text must not be empty",
	ErrCodePromptStatusInvalid: "invalid match status",
	ErrCodePromptImportFailed:  "failed to import prompts",

	ErrCodePageNotFound:       "page not found",
	ErrCodePageURLInvalid:     "invalid page URL",
	ErrCodePageAlreadyExists:  "page already exists",
	ErrCodePageSnapshotFailed: "failed to store page snapshot",

	ErrCodeMatchTypeInvalid:   "invalid match type",
	ErrCodeMatchSearchFailed:  "match search failed",
	ErrCodeMatchReplaceFailed: "failed to replace match set",
	ErrCodeMatchCorpusEmpty:   "page corpus is empty",
	ErrCodeThresholdInvalid:   "invalid similarity threshold",
	ErrCodeVectorDimMismatch:  "embedding dimension mismatch",
	ErrCodeVectorIndexFailed:  "vector index operation failed",

	ErrCodeOpportunityNotFound:      "opportunity not found",
	ErrCodeOpportunityActionInvalid: "invalid recommended action",
	ErrCodeOpportunityStatusInvalid: "invalid opportunity status",
	ErrCodeSuggestionFailed:         "content suggestion failed",
	ErrCodeOpportunityWriteFailed:   "failed to write opportunity",

	ErrCodeIntentInvalid:           "invalid intent category",
	ErrCodeClassificationFailed:    "intent classification failed",
	ErrCodeLanguageDetectionFailed: "language detection failed",

	ErrCodeEmbeddingFailed:      "embedding generation failed",
	ErrCodeEmbeddingUnavailable: "embedding service unavailable",
	ErrCodeEmbeddingDimInvalid:  "invalid embedding dimension",
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
