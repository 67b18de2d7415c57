package submission

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoInputProvided means neither text nor a file was supplied
var ErrNoInputProvided = errors.New("no job description text or file provided")

// ErrSubmissionInFlight means the same session already has a submission pending
var ErrSubmissionInFlight = errors.New("submission already in progress")

// NetworkError wraps a transport failure where no response was received
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError means the service answered with something that is
// not the JSON envelope we expect (wrong content type, bad body, no result).
type MalformedResponseError struct {
	ContentType string
	Err         error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response (content-type %q): %v", e.ContentType, e.Err)
	}
	return fmt.Sprintf("malformed response (content-type %q)", e.ContentType)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ServiceError is a failure reported by the scoring service itself.
// Message is shown to the user as-is.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Message)
}

// DefaultServiceMessage is used when a failed response carries no error text
const DefaultServiceMessage = "Analysis failed"

const (
	msgNoInput   = "Please provide job description text or upload a file"
	msgInFlight  = "An analysis is already running. Please wait for it to finish."
	msgNetwork   = "Network error. Please try again."
	msgMalformed = "The analysis service returned an unexpected response. Please try again."
	msgUnknown   = "Something went wrong. Please try again."
)

// Kind is a short, stable label for an error, used in logs and the attempt log
func Kind(err error) string {
	var (
		netErr *NetworkError
		badErr *MalformedResponseError
		svcErr *ServiceError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoInputProvided):
		return "no_input"
	case errors.Is(err, ErrSubmissionInFlight):
		return "in_flight"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &badErr):
		return "malformed_response"
	case errors.As(err, &svcErr):
		return "service"
	default:
		return "internal"
	}
}

// UserMessage turns any submission error into the single line shown on the form
func UserMessage(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Message == "" {
			return DefaultServiceMessage
		}
		return svcErr.Message
	}
	switch Kind(err) {
	case "no_input":
		return msgNoInput
	case "in_flight":
		return msgInFlight
	case "network":
		return msgNetwork
	case "malformed_response":
		return msgMalformed
	default:
		return msgUnknown
	}
}

// HTTPStatus is the status the host answers with for a submission error.
// Client errors reported by the service pass through; everything upstream
// is a bad gateway.
func HTTPStatus(err error) int {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.StatusCode >= 400 && svcErr.StatusCode < 500 {
			return svcErr.StatusCode
		}
		return http.StatusBadGateway
	}
	switch Kind(err) {
	case "no_input":
		return http.StatusBadRequest
	case "in_flight":
		return http.StatusConflict
	case "network", "malformed_response":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
