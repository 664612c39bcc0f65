package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrMalformedResponse is wrapped by errors for 2xx responses whose body
// could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// HTTPError is a non-success response from the backend.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int

	// Message is the server-provided "message" field, or the raw body text
	// when the body is not JSON.
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}

// ServerMessage returns the message the server attached to err, if any.
func ServerMessage(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return ""
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	he := &HTTPError{Method: method, Path: path, StatusCode: status}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		he.Message = payload.Message
		if he.Message == "" {
			he.Message = payload.Error
		}
		return he
	}
	he.Message = truncate(strings.TrimSpace(string(body)), maxMessageBytes)
	return he
}

// maxMessageBytes caps a plain-text error body kept as HTTPError.Message.
const maxMessageBytes = 200

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
