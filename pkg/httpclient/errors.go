package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/KyoTung/camera-store-client/pkg/errors"
)

// APIErrorBody is the error shape returned by the store API on failure.
// The backend reports a human-readable message and, for form endpoints,
// a map of per-field validation errors.
type APIErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. If the body matches the API's error format
// the server message is preserved; otherwise a generic error carrying the
// status code and raw body is returned.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, endpoint string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", endpoint, resp.StatusCode, err)
	}

	var apiErr APIErrorBody
	if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Message != "" {
		return mapAPIError(resp.StatusCode, apiErr.Message, endpoint)
	}

	// Fallback: unstructured error body.
	return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, string(bodyBytes))
}

// mapAPIError translates the API's HTTP status code and message into an
// AppError that preserves the error semantics.
func mapAPIError(status int, message, endpoint string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", endpoint, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(endpoint, message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualifiedMsg)
	case status >= 500:
		return fmt.Errorf("%s server error (%d): %s", endpoint, status, message)
	default:
		return &apperrors.AppError{
			Code:    "API_ERROR",
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors should not be retried or trip the circuit breaker.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
