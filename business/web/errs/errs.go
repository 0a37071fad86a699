// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/validate"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context. Its message is safe to show the
// caller.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (t *Trusted) Error() string {
	return t.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (t *Trusted) Unwrap() error {
	return t.Err
}

// GetTrusted returns the Trusted error in the chain, if any.
func GetTrusted(err error) *Trusted {
	var t *Trusted
	if !errors.As(err, &t) {
		return nil
	}
	return t
}

// ToResponse converts an error returned by a handler into the document and
// status code sent to the caller. Field validation failures are reported
// field by field. Errors that were not marked as trusted never leak their
// message.
func ToResponse(err error) (Response, int) {
	if fe := validate.GetFieldErrors(err); fe != nil {
		resp := Response{
			Error:  "data validation error",
			Fields: fe.Fields(),
		}
		return resp, http.StatusBadRequest
	}

	if t := GetTrusted(err); t != nil {
		resp := Response{
			Error: t.Error(),
		}
		return resp, t.Status
	}

	resp := Response{
		Error: http.StatusText(http.StatusInternalServerError),
	}
	return resp, http.StatusInternalServerError
}
