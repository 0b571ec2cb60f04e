package api

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError reports a network failure or a non-2xx response.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: API error %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that could not be decoded into the expected type.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError reports client-side input that must not be sent to the service.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// IsNotFound reports whether err is a TransportError carrying HTTP 404.
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == http.StatusNotFound
}

// Kind classifies err for display: "transport", "decode", "validation" or "".
func Kind(err error) string {
	var (
		te *TransportError
		de *DecodeError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &de):
		return "decode"
	case errors.As(err, &te):
		return "transport"
	}
	return ""
}
