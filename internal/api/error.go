package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx API response. Message carries the server's envelope
// message when one was given, so the UI can surface it verbatim; Code is the
// server's machine-readable error code when present.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// AuthFailure reports whether the server rejected the credentials.
func (e *Error) AuthFailure() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// UserMessage extracts a message suitable for display. Server-provided
// messages win; anything else collapses to the fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func newError(status int, raw []byte) *Error {
	e := &Error{Status: status}
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if json.Unmarshal(raw, &body) == nil {
		e.Message = body.Message
		e.Code = body.Code
	}
	return e
}
