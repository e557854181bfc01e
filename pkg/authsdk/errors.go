package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is returned for any non-success response from the service.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Message is the failure message from the envelope, or the raw body when
	// the response was not an envelope
	Message string

	// IsUserVisible mirrors the envelope flag
	IsUserVisible bool
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("auth api: %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsNotFound reports whether err is a 404 from the service, e.g. an unknown
// refresh token or client.
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// parseErrorResponse builds an APIError from a failed response body.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		return &APIError{
			StatusCode:    resp.StatusCode,
			Message:       env.Error.Message,
			IsUserVisible: env.Error.IsUserVisible,
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
