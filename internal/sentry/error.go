package sentry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Iron-Ham/smrelease/internal/errors"
)

const maxErrorBody = 4096

// APIError is a non-2xx response from the API. The status is passed through
// untouched; Is maps the common ones onto sentinel errors.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string // "detail" field of the JSON body, when present
	Body       string
}

func newAPIError(method, path string, status int, raw []byte) *APIError {
	e := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       strings.TrimSpace(string(raw)),
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Detail != nil {
		switch d := payload.Detail.(type) {
		case string:
			e.Detail = d
		default:
			if b, err := json.Marshal(d); err == nil {
				e.Detail = string(b)
			}
		}
	}
	return e
}

// Error implements error.
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Body
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("sentry %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is reports whether the response corresponds to target.
func (e *APIError) Is(target error) bool {
	switch target {
	case errors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case errors.ErrReleaseExists:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Temporary reports whether the failure is likely transient (rate limiting
// or a server-side error).
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
