package utils

import "fmt"

// Exit codes
const (
	ExitSuccess = 0
	// Auth errors (10-19)
	ExitAuthRequired = 10
	ExitAuthExpired  = 11
	// Remote API errors (20-29)
	ExitNotFound         = 20
	ExitPermissionDenied = 21
	// Network errors (30-39)
	ExitNetworkError   = 30
	ExitRateLimited    = 31
	ExitRetryExhausted = 32
	// Persistence errors (40-49)
	ExitCatalogFailure = 40
	ExitStorageFailure = 41
	// Validation errors (50-59)
	ExitInvalidArgument = 50
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable). Each catch site maps a failure to exactly
// one of these and decides: retry, fall back, skip-and-record, or propagate.
const (
	ErrCodeAuthRequired      = "AUTH_REQUIRED"
	ErrCodeCredentialExpired = "CREDENTIAL_EXPIRED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeRetryExhausted    = "RETRY_EXHAUSTED"
	ErrCodeStorageFailure    = "STORAGE_FAILURE"
	ErrCodeCatalogFailure    = "CATALOG_FAILURE"
	ErrCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrCodeUnknown           = "UNKNOWN"
)

// SyncError carries a classified error across component boundaries
type SyncError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"httpStatus,omitempty"`
	// RemoteCode is the diagnostic code returned by the remote API, verbatim.
	// The orchestrator's fallback logic inspects it on FORBIDDEN.
	RemoteCode string                 `json:"remoteCode,omitempty"`
	Retryable  bool                   `json:"retryable"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// SyncErrorBuilder helps construct SyncError instances
type SyncErrorBuilder struct {
	err SyncError
}

// NewSyncError creates a new error builder
func NewSyncError(code, message string) *SyncErrorBuilder {
	return &SyncErrorBuilder{
		err: SyncError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *SyncErrorBuilder) WithHTTPStatus(status int) *SyncErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *SyncErrorBuilder) WithRemoteCode(code string) *SyncErrorBuilder {
	b.err.RemoteCode = code
	return b
}

func (b *SyncErrorBuilder) WithRetryable(retryable bool) *SyncErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *SyncErrorBuilder) WithContext(key string, value interface{}) *SyncErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *SyncErrorBuilder) Build() SyncError {
	return b.err
}

// AppError is the error type that carries classification info
type AppError struct {
	SyncError SyncError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.SyncError.Code, e.SyncError.Message)
}

// NewAppError creates an AppError from a SyncError
func NewAppError(syncErr SyncError) *AppError {
	return &AppError{SyncError: syncErr}
}

// CodeOf extracts the error code from any error, or ErrCodeUnknown
func CodeOf(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.SyncError.Code
	}
	return ErrCodeUnknown
}

// IsCode reports whether err is an AppError with the given code
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeAuthRequired:      ExitAuthRequired,
		ErrCodeCredentialExpired: ExitAuthExpired,
		ErrCodeForbidden:         ExitPermissionDenied,
		ErrCodeNotFound:          ExitNotFound,
		ErrCodeNetworkError:      ExitNetworkError,
		ErrCodeRateLimited:       ExitRateLimited,
		ErrCodeRetryExhausted:    ExitRetryExhausted,
		ErrCodeStorageFailure:    ExitStorageFailure,
		ErrCodeCatalogFailure:    ExitCatalogFailure,
		ErrCodeInvalidArgument:   ExitInvalidArgument,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}
