package skybase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/imroc/req/v3"
)

var (
	// config
	ErrNoProjectKey      = errors.New("skybase: project key missing")
	ErrInvalidProjectKey = errors.New("skybase: invalid project key")

	// base
	ErrEmptyKey     = errors.New("skybase: record key missing")
	ErrTooManyItems = errors.New("skybase: put accepts at most 25 records per call")

	// query
	ErrLimitSet = errors.New("skybase: limit must be unset for full-walk mode")

	// drive
	ErrEmptyName = errors.New("skybase: file name missing")

	// malformed or empty response body
	ErrInvalidResponse = errors.New("skybase: invalid response body")
)

// Status taxonomy. Non-2xx responses outside this set surface as *HTTPError.
var (
	ErrBadRequest      = errors.New("skybase: bad request")
	ErrUnauthorized    = errors.New("skybase: unauthorized")
	ErrNotFound        = errors.New("skybase: not found")
	ErrConflict        = errors.New("skybase: conflict")
	ErrPayloadTooLarge = errors.New("skybase: payload too large")
)

// HTTPError carries a non-2xx status with no dedicated sentinel.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("skybase: http error: %d %s", e.Status, e.Message)
}

// apiError is the error body shape returned by the service.
type apiError struct {
	Errors []string `json:"errors"`
}

func (e *apiError) message() string {
	return strings.Join(e.Errors, "; ")
}

func statusError(status int, msg string) error {
	var sentinel error
	switch status {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusRequestEntityTooLarge:
		sentinel = ErrPayloadTooLarge
	default:
		return &HTTPError{Status: status, Message: msg}
	}
	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// handleAPIError is a helper function that handles the common error pattern
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	// got a response, but the service returned an error
	if resp.IsErrorState() {
		var msg string
		if apiErr, ok := resp.ErrorResult().(*apiError); ok && apiErr != nil {
			msg = apiErr.message()
		}
		return fmt.Errorf("%s: %w", operation, statusError(resp.StatusCode, msg))
	}

	return nil
}
