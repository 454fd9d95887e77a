package pveapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/smnsjas/go-pve/pveapi/transport"
)

// APIError is returned for non-2xx API responses.
type APIError struct {
	// Method and Path identify the failed request.
	Method string
	Path   string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the status reason sent by the server, if any.
	Message string

	// Errors holds per-parameter validation messages.
	Errors map[string]string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("pveapi: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Errors) > 0 {
		keys := make([]string, 0, len(e.Errors))
		for k := range e.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+strings.TrimSpace(e.Errors[k]))
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}

// Unwrap lets errors.Is(err, transport.ErrUnauthorized) match 401 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return transport.ErrUnauthorized
	}
	return nil
}

// IsNotFound returns true if the error is a 404 or the server's "no such"
// style 500 answer for a missing resource.
func (e *APIError) IsNotFound() bool {
	if e.StatusCode == http.StatusNotFound {
		return true
	}
	return e.StatusCode == http.StatusInternalServerError &&
		strings.Contains(strings.ToLower(e.Message), "does not exist")
}

// newAPIError builds an APIError from a response. The server puts the
// reason in the status line and, for parameter errors, an "errors" object
// in the body.
func newAPIError(method, path string, resp *transport.Response) *APIError {
	e := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))),
	}

	var body struct {
		Errors  map[string]string `json:"errors"`
		Message string            `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		e.Errors = body.Errors
		if e.Message == "" {
			e.Message = strings.TrimSpace(body.Message)
		}
	} else if e.Message == "" {
		e.Message = strings.TrimSpace(string(resp.Body))
	}
	return e
}
