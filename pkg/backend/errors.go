package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed backend call
type Kind string

const (
	KindRejected    Kind = "rejected"    // the backend answered with an error status
	KindTransport   Kind = "transport"   // the request never got an answer
	KindUnavailable Kind = "unavailable" // the circuit breaker refused the call
	KindDecode      Kind = "decode"      // the answer could not be read
)

// APIError carries the user-facing message of a failed backend call
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// MessageForStatus maps a backend status to the message shown to the vendor
func MessageForStatus(status int, statusText string) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid data. Please check the information you entered."
	case http.StatusUnauthorized:
		return "You are not authorized to perform this action."
	case http.StatusForbidden:
		return "Access denied. Please sign in."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusConflict:
		return "A shop with this name already exists."
	case http.StatusRequestEntityTooLarge:
		return "The files are too large."
	case http.StatusUnprocessableEntity:
		return "Unprocessable data. Please correct the errors."
	case http.StatusInternalServerError:
		return "Internal server error. Please try again later."
	default:
		return fmt.Sprintf("Error %d: %s", status, statusText)
	}
}

func rejected(status int, statusText string) *APIError {
	return &APIError{
		Kind:    KindRejected,
		Status:  status,
		Message: MessageForStatus(status, statusText),
		Err:     fmt.Errorf("backend responded %d", status),
	}
}

func transport(err error) *APIError {
	return &APIError{Kind: KindTransport, Message: "Client error: " + err.Error(), Err: err}
}

func unavailable(err error) *APIError {
	return &APIError{
		Kind:    KindUnavailable,
		Status:  http.StatusServiceUnavailable,
		Message: "Service temporarily unavailable. Please try again later.",
		Err:     err,
	}
}

func decode(err error) *APIError {
	return &APIError{Kind: KindDecode, Status: http.StatusBadGateway, Message: "Unexpected response from the server.", Err: err}
}

// AsAPIError unwraps err into an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// countsAsFailure keeps vendor mistakes (4xx) from opening the circuit
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		return true
	}
	return apiErr.Kind == KindTransport || apiErr.Status >= 500
}
