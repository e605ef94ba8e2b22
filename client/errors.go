package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error taxonomy. ErrUnavailable and ErrTransport are retryable by the
// caller; the client itself never retries. A blocking invocation that
// outlives the server wait window is not an error, it is a timedout result.
var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrBadRequest     = errors.New("bad request")
	ErrUnavailable    = errors.New("unavailable")
	ErrTransport      = errors.New("transport failure")
)

// statusError maps a non-2xx control plane status to the taxonomy above,
// keeping method, resource path and the remote message for the caller.
func statusError(method, path string, status int, remote string) error {
	var kind error
	switch {
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status == http.StatusConflict:
		kind = ErrConflict
	case status == http.StatusRequestTimeout || status >= 500:
		kind = ErrUnavailable
	default:
		kind = ErrBadRequest
	}
	if remote != "" {
		return fmt.Errorf("%s %s: %w: status %d: %s", method, path, kind, status, remote)
	}
	return fmt.Errorf("%s %s: %w: status %d", method, path, kind, status)
}

// remoteMessage extracts the error field from a control plane error body,
// falling back to the raw text.
func remoteMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var doc struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil && doc.Error != "" {
		return doc.Error
	}
	return strings.TrimSpace(string(raw))
}
