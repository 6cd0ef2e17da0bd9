package assertions

import "errors"

var (
	// ErrValidation is wrapped by every client-side precondition failure. Nothing has been
	// broadcast when it is returned.
	ErrValidation = errors.New("validation failed")

	ErrNonPositiveQuantity      = errors.New("quantity is not positive")
	ErrQuantityOverflow         = errors.New("quantity does not fit in uint256")
	ErrNotMultipleOfNaturalUnit = errors.New("quantity is not a multiple of the natural unit")
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrInsufficientAllowance    = errors.New("insufficient allowance")
	ErrInvalidComponents        = errors.New("invalid components")
)

// ValidationError carries the message shown to the caller and matches both ErrValidation
// and its specific kind with errors.Is.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() []error {
	return []error{e.Kind, ErrValidation}
}

func invalid(kind error, message string) error {
	return &ValidationError{Kind: kind, Message: message}
}
