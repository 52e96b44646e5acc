package errors

import (
	// Go Internal Packages
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
)

// Codes used by ProviderError when no HTTP response was received.
const (
	CodeTimeout     = "TIMEOUT"
	CodeTransport   = "TRANSPORT_ERROR"
	CodeCircuitOpen = "CIRCUIT_OPEN"
)

// ProviderError is the single failure type returned by the Tanda client.
// StatusCode is the HTTP status, zero when the request never got a response.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

// HTTPProviderErr builds a ProviderError for a 4xx/5xx response.
func HTTPProviderErr(status int, message string, details map[string]any) *ProviderError {
	return &ProviderError{
		StatusCode: status,
		Code:       strconv.Itoa(status),
		Message:    message,
		Details:    details,
	}
}

// TransportProviderErr builds a ProviderError for a request that failed below HTTP.
func TransportProviderErr(code string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: err.Error()}
}

func CircuitOpenErr(err error) *ProviderError {
	return &ProviderError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       CodeCircuitOpen,
		Message:    err.Error(),
	}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("tanda api error (%s): %s", e.Code, e.Message)
}

// Retryable reports whether the failure was on the provider side or below HTTP.
// It feeds the circuit breaker, the client never retries on its own.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
}

// AsProviderError extracts a ProviderError from err.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
