package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkErrorMessage is shown when a request was sent but no response arrived.
const NetworkErrorMessage = "Network error: No response received from server."

// StatusError reports that the API answered with a non-success status.
type StatusError struct {
	Method  string
	URL     string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.Code, e.Message)
}

// ConnectivityError reports that a request was dispatched but no response
// was received (refused connection, timeout, reset, cancelled context).
type ConnectivityError struct {
	Method string
	URL    string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RequestError reports a failure on the client side: the request could not
// be built or its response could not be understood.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Message renders err as the single line shown to the user. It returns an
// empty string for a nil error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.Message
		if msg == "" {
			msg = http.StatusText(statusErr.Code)
		}
		return fmt.Sprintf("Error: %d - %s", statusErr.Code, msg)
	}
	var connErr *ConnectivityError
	if errors.As(err, &connErr) {
		return NetworkErrorMessage
	}
	return fmt.Sprintf("Error: %v", err)
}
