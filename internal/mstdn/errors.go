package mstdn

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a non-2xx API response. Callers switch on the kind,
// never on concrete error types.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindUnprocessableEntity
	KindOtherHTTP
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindUnprocessableEntity:
		return "unprocessable_entity"
	default:
		return "other_http"
	}
}

func kindForStatus(code int) ErrorKind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusUnprocessableEntity:
		return KindUnprocessableEntity
	default:
		return KindOtherHTTP
	}
}

// APIError is a non-2xx response from the remote service. The body is
// captured at raise time and exposed through ResponseBody so callers that
// only switch on the kind never pay for reading it.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mstdn: api error %s (status=%d)", e.Kind, e.StatusCode)
}

// ResponseBody returns the raw response body for logging and diagnostics.
func (e *APIError) ResponseBody() string { return string(e.body) }

// TransportError wraps a network or decoding failure. It is never folded
// into an APIError kind.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mstdn: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsCredentialInvalid reports whether err means the current token is no
// longer usable (401/403/422).
func IsCredentialInvalid(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.Kind {
	case KindUnauthorized, KindForbidden, KindUnprocessableEntity:
		return true
	}
	return false
}

// IsNotFound reports whether err is a 404 from the remote service.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == KindNotFound
}
