package invoice

import "errors"

// ErrNotFound is returned when an invoice id is unknown so HTTP handlers can respond with 404.
var ErrNotFound = errors.New("invoice not found")

// validationError communicates rule violations back to HTTP handlers.
type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return validationError{message: msg}
}

// IsValidation helps callers distinguish between business and infrastructure failures.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}
