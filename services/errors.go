package services

import (
	"errors"
	"fmt"
	"strings"
)

// Typed errors the workflows return. Handlers map each to a stable HTTP
// status; nothing is retried inside the services.
var (
	ErrAlreadyRegistered  = errors.New("user with this email already exists")
	ErrCodeNotFound       = errors.New("OTP expired or not found")
	ErrCodeMismatch       = errors.New("invalid OTP")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrEmptyContent       = errors.New("update content is empty")
	ErrEmailDispatch      = errors.New("failed to send OTP email")
)

// ValidationError carries every missing or invalid field of a request, not
// just the first one found.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
