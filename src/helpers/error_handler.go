package helpers

import (
	"errors"
	"fmt"

	"market-watchlist/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type WatchlistError struct {
	Message string
	Cause   error
}

func (e *WatchlistError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *WatchlistError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks
type TransientFetchError struct{ WatchlistError }
type MalformedResponseError struct{ WatchlistError }
type PersistenceReadError struct{ WatchlistError }
type ConfigurationError struct{ WatchlistError }
type ValidationError struct{ WatchlistError }

// Error kinds reported on the status channel
const (
	KindTransient     = "transient"
	KindMalformed     = "malformed"
	KindPersistence   = "persistence"
	KindConfiguration = "configuration"
	KindValidation    = "validation"
	KindUnknown       = "unknown"
)

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewTransientFetchError(message string, cause error) error {
	return &TransientFetchError{WatchlistError{Message: message, Cause: cause}}
}

func NewMalformedResponseError(message string, cause error) error {
	return &MalformedResponseError{WatchlistError{Message: message, Cause: cause}}
}

func NewPersistenceReadError(message string, cause error) error {
	return &PersistenceReadError{WatchlistError{Message: message, Cause: cause}}
}

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{WatchlistError{Message: message, Cause: cause}}
}

func NewValidationError(message string) error {
	return &ValidationError{WatchlistError{Message: message}}
}

// -----------------------------------------------------------------------------

// ErrorKind classifies err for status reporting. Nil yields "".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		transient   *TransientFetchError
		malformed   *MalformedResponseError
		persistence *PersistenceReadError
		configErr   *ConfigurationError
		validation  *ValidationError
	)
	switch {
	case errors.As(err, &malformed):
		return KindMalformed
	case errors.As(err, &transient):
		return KindTransient
	case errors.As(err, &persistence):
		return KindPersistence
	case errors.As(err, &configErr):
		return KindConfiguration
	case errors.As(err, &validation):
		return KindValidation
	default:
		return KindUnknown
	}
}

// IsTransient reports whether a later retry may succeed.
func IsTransient(err error) bool {
	return ErrorKind(err) == KindTransient
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler counts consecutive failures of one operation and logs them by kind.
type ErrorHandler struct {
	Logger           *logger.Logger
	ConsecutiveFails int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

// Success resets the failure streak.
func (e *ErrorHandler) Success(context string) {
	if e.ConsecutiveFails > 0 {
		e.Logger.Info("%s recovered after %d failure(s)", context, e.ConsecutiveFails)
	}
	e.ConsecutiveFails = 0
}

// -----------------------------------------------------------------------------

// Handle logs err with a severity matching its kind and returns the kind.
func (e *ErrorHandler) Handle(err error, context string) string {
	if err == nil {
		return ""
	}
	e.ConsecutiveFails++
	kind := ErrorKind(err)
	switch kind {
	case KindTransient:
		e.Logger.Warning("%s failed (%s, streak %d): %v", context, kind, e.ConsecutiveFails, err)
	default:
		e.Logger.Error("%s failed (%s, streak %d): %v", context, kind, e.ConsecutiveFails, err)
	}
	return kind
}
