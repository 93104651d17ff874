package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent update collided with this one. The ledger
// service retries a bounded number of times before surfacing it, so callers
// that see it may retry the whole request.
var ErrConflict = errors.New("concurrent update conflict")

// Payment draft errors. All are caller-input errors rejected before any write.
var (
	// ErrInvalidAmount indicates a payment or rate amount that is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInstrumentRefCardinality indicates a payment draft that references zero
	// or more than one debt instrument. A payment settles exactly one instrument.
	ErrInstrumentRefCardinality = errors.New("payment must reference exactly one instrument")

	// ErrMissingTripReference indicates a trip-revenue payment without a trip reference.
	ErrMissingTripReference = errors.New("trip reference is required for trip revenue payments")
)

// ErrRateNotFound indicates that no conversion path exists between two
// currencies. This is a data condition, not a caller mistake: resolution
// genuinely has no answer for the pair. It must never be silently replaced by
// a 1.0 factor inside the core.
var ErrRateNotFound = errors.New("no exchange rate path between currencies")

// NewRateNotFoundError wraps ErrRateNotFound with the requested pair.
func NewRateNotFoundError(fromCurrency, toCurrency string) error {
	return fmt.Errorf("%w: %s to %s", ErrRateNotFound, fromCurrency, toCurrency)
}

// AppError carries an HTTP-ish status code alongside a message and cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a generic AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewValidationError creates an AppError that matches errors.Is(err, ErrValidation).
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// NewConflictError creates an AppError that matches errors.Is(err, ErrConflict).
func NewConflictError(message string, err error) *AppError {
	return &AppError{Code: 409, Message: message, Err: fmt.Errorf("%w: %w", ErrConflict, err)}
}
