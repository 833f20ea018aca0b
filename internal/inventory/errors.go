package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ErrInvalidStatus also matches ErrValidation.
var ErrInvalidStatus error = &statusError{}

// statusError is a validation error of its own so callers can tell
// "bad status" apart while still mapping it to 400.
type statusError struct{}

func (*statusError) Error() string        { return "invalid status" }
func (*statusError) Is(target error) bool { return target == ErrValidation }

// StockError carries the shortfall for one product of a rejected order.
type StockError struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", e.Name, e.Available, e.Required)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
