package rpc

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned by auth-required procedures when no token is
// stored. The call is rejected before any network request is issued.
var ErrUnauthorized = errors.New("rpc: unauthorized")

// ValidationError rejects malformed procedure input synchronously. It is
// deliberately distinct from the API error taxonomy: nothing was dispatched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rpc: invalid input: %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is a client-side input rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
