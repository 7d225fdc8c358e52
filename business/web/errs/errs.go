// Package errs provides the error types the node's web handlers use to shape
// API failure responses.
package errs

import "errors"

// Response is the form used for API responses from failures in the API. The
// Fields map is populated for validation failures so a client can see which
// parts of a telemetry submission were rejected.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted wraps an error whose message is safe to return to the client along
// with the HTTP status to respond with. Handlers use it for expected
// failures, like mining with an empty pending queue or registering a peer
// with a bad address; anything else is reported as a plain 500.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (t *Trusted) Error() string {
	return t.Err.Error()
}

// IsTrusted checks if an error of type Trusted exists in the chain.
func IsTrusted(err error) bool {
	var t *Trusted
	return errors.As(err, &t)
}

// GetTrusted returns the Trusted pointer from the error chain.
func GetTrusted(err error) *Trusted {
	var t *Trusted
	if !errors.As(err, &t) {
		return nil
	}
	return t
}
