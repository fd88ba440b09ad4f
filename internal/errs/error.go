package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrProfileNotLoaded     = errors.New("user profile not loaded")
	ErrInvalidDuration      = errors.New("reservation days must be one of 7, 14, 21")
	ErrBookUnavailable      = errors.New("book is not available")
	ErrAlreadyReturned      = errors.New("reservation is already returned")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrNotFound             = errors.New("not found")
	ErrDefault              = errors.New("some error")
)

// APIError is a non-2xx answer of the library API. Payload is the raw
// response body, kept as the server sent it.
type APIError struct {
	Code    int
	Payload string
}

func (e *APIError) Error() string {
	if e.Payload == "" {
		return fmt.Sprintf("library api: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("library api: %d %s", e.Code, e.Payload)
}

func (e *APIError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

// Message returns the payload as banner text. JSON objects carrying a
// "message" or "error" field are unwrapped, anything else is returned as is.
func (e *APIError) Message() string {
	payload := strings.TrimSpace(e.Payload)
	if strings.HasPrefix(payload, "{") {
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err == nil {
			if body.Message != "" {
				return body.Message
			}
			if body.Error != "" {
				return body.Error
			}
		}
	}
	return payload
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Failure pairs an error with the banner text a page shows for it.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Message
	}
	return f.Message + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

var banners = map[error]string{
	ErrNotAuthenticated:     "Please log in to continue.",
	ErrProfileNotLoaded:     "User profile not fully loaded. Please refresh the page or log in again.",
	ErrInvalidDuration:      "Please choose a reservation period of 7, 14 or 21 days.",
	ErrBookUnavailable:      "This book is currently reserved.",
	ErrAlreadyReturned:      "This reservation has already been returned.",
	ErrConfirmationRequired: "Please confirm the action.",
}

// UserMessage is the banner text shown for err. Local guards have their own
// text, the server supplied message wins for remote failures and anything
// else gets the generic fallback.
func UserMessage(err error, fallback string) string {
	var failure *Failure
	if errors.As(err, &failure) && failure.Message != "" {
		return failure.Message
	}
	for target, text := range banners {
		if errors.Is(err, target) {
			return text
		}
	}
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message() != "" {
		return apiErr.Message()
	}
	return fallback
}

// StatusCode maps an error onto the HTTP status a page answers with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrProfileNotLoaded), errors.Is(err, ErrBookUnavailable), errors.Is(err, ErrAlreadyReturned):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDuration), errors.Is(err, ErrConfirmationRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Code
	}
	return http.StatusBadGateway
}

type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}
