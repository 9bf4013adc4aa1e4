// Package errors provides structured error handling with typed error codes.
//
// Error codes are grouped by range:
//   - General errors (1-99)
//   - Validation errors (100-199): bad parameters and configuration
//   - Data errors (200-299): datasource and history lookups
//   - Signal errors (300-399): statistical engines read before they are ready
//   - Strategy errors (400-499): strategy construction and criterion violations
//   - Trading errors (500-599): orders, prices and instruments
//   - Backtest errors (600-699)
//   - Market data errors (700-799)
//
// Per-tick failures such as a missing price or an absent position are expected
// during normal operation. Callers test for them with IsPriceUnavailable and
// IsNoOrderAvailable and downgrade them to "no action".
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodePriceUnavailable, "no price for %s", symbol)
//	if errors.IsPriceUnavailable(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// NewPriceUnavailableError reports that no price is cached for symbol.
func NewPriceUnavailableError(symbol string) *Error {
	return Newf(ErrCodePriceUnavailable, "price is not available for %s", symbol)
}

// NewNoOrderAvailableError reports that no outstanding order exists for symbol.
func NewNoOrderAvailableError(symbol string) *Error {
	return Newf(ErrCodeNoOrderAvailable, "no order available for %s", symbol)
}

// IsPriceUnavailable checks whether err reports a missing price.
func IsPriceUnavailable(err error) bool {
	return HasCode(err, ErrCodePriceUnavailable)
}

// IsNoOrderAvailable checks whether err reports an absent position.
func IsNoOrderAvailable(err error) bool {
	return HasCode(err, ErrCodeNoOrderAvailable)
}

// IsCriterionViolation checks whether err reports a criterion that could not be evaluated.
func IsCriterionViolation(err error) bool {
	return HasCode(err, ErrCodeCriterionViolation)
}

// IsFatal reports errors that must abort a run instead of being absorbed per tick.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInstrumentNotTracked, ErrCodeUnresolvableInstrument, ErrCodeInvalidConfiguration:
		return true
	default:
		return false
	}
}
