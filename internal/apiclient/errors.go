package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches (via errors.Is) any HTTPStatusError carrying a 404.
var ErrNotFound = errors.New("resource not found")

// TransportError is returned when no HTTP response was obtained: the request
// could not be built, the connection failed, the context was cancelled or the
// response body could not be read.
type TransportError struct {
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	// Detail is the backend's "detail" message when the body carries one.
	Detail string
}

func (e *HTTPStatusError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = strings.TrimSpace(string(e.Body))
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrNotFound) recognise 404 responses.
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// DecodeError is returned when a 2xx body is not the expected JSON shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) a 404 status error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not a
// status error.
func StatusCode(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func newStatusError(op, method, url string, status int, body []byte) *HTTPStatusError {
	return &HTTPStatusError{
		Op:         op,
		Method:     method,
		URL:        url,
		StatusCode: status,
		Body:       body,
		Detail:     parseDetail(body),
	}
}

// parseDetail extracts {"detail": ...}. Non-string details (validation error
// lists) are returned in their raw JSON form.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return string(payload.Detail)
}
