// ABOUTME: RequestError, the single structured error surfaced by the API client
// ABOUTME: Carries the HTTP status and parsed body of any non-2xx response
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RequestError reports a response whose status was outside [200,300).
type RequestError struct {
	Method string
	Path   string
	Status int
	Body   json.RawMessage // nil when the body was empty or not JSON
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s %s failed with status %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if detail := e.Message(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Message extracts a human-readable message from common error body shapes.
func (e *RequestError) Message() string {
	if len(e.Body) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Error != "":
		return body.Error
	default:
		return body.Title
	}
}

// StatusOf returns the HTTP status carried by err, if it wraps a RequestError.
func StatusOf(err error) (int, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status, true
	}
	return 0, false
}

// HasStatus reports whether err is a RequestError with one of the statuses.
func HasStatus(err error, statuses ...int) bool {
	status, ok := StatusOf(err)
	if !ok {
		return false
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
