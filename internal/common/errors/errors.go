// Package errors provides standardized error handling for the assessment pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingFeature   ErrorCode = "MISSING_FEATURE"
	ErrCodeShapeMismatch    ErrorCode = "SHAPE_MISMATCH"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePredictionFailed ErrorCode = "PREDICTION_FAILED"

	ErrCodeArtifactNotFound  ErrorCode = "ARTIFACT_NOT_FOUND"
	ErrCodeArtifactCorrupted ErrorCode = "ARTIFACT_CORRUPTED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeRecordNotFound           ErrorCode = "RECORD_NOT_FOUND"

	ErrCodeCacheBackendFailed ErrorCode = "CACHE_BACKEND_FAILED"
	ErrCodeIndexingFailed     ErrorCode = "INDEXING_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewMissingFeatureError reports a feature that cannot be resolved after
// defaulting and encoding. Always fatal for the current request.
func NewMissingFeatureError(feature string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFeature,
		Message:   "Required feature missing from preprocessed input",
		Details:   fmt.Sprintf("feature: %s", feature),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewShapeMismatchError reports a feature vector whose length does not match
// the expected feature count.
func NewShapeMismatchError(expected, got int) *StandardError {
	return &StandardError{
		Code:      ErrCodeShapeMismatch,
		Message:   "Feature vector length does not match feature order",
		Details:   fmt.Sprintf("expected: %d, got: %d", expected, got),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Assessment input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPredictionFailedError wraps an error raised during scaling or inference.
func NewPredictionFailedError(model string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictionFailed,
		Message:   "Model prediction failed",
		Details:   fmt.Sprintf("model: %s, error: %s", model, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactNotFoundError reports a model or preprocessor key that does not
// resolve in the artifact store. No fallback artifact is ever substituted.
func NewArtifactNotFoundError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactNotFound,
		Message:   "Model artifact not found in store",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactCorruptedError reports an artifact that resolved but failed to decode.
func NewArtifactCorruptedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactCorrupted,
		Message:   "Model artifact could not be decoded",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable lookup error.
func NewRecordNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "Assessment record not found",
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheBackendFailedError creates a retryable cache backend error.
func NewCacheBackendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheBackendFailed,
		Message:   "Result cache backend error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable analytics indexing error.
func NewIndexingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Usage analytics indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the code carried by an error chain. Errors that are not
// StandardErrors report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeCacheBackendFailed,
		ErrCodeIndexingFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "FEATURE") || strings.Contains(codeStr, "SHAPE") || strings.Contains(codeStr, "INPUT"):
		return "PREPROCESSING"
	case strings.Contains(codeStr, "ARTIFACT"):
		return "ARTIFACT"
	case strings.Contains(codeStr, "PREDICTION"):
		return "INFERENCE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "RECORD"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "INDEX"):
		return "ANALYTICS"
	default:
		return "OTHER"
	}
}
