package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/serroba/registry-client/internal/document"
	"github.com/serroba/registry-client/internal/ratelimit"
)

var (
	ErrInvalidDocument   = errors.New("registry: document rejected")
	ErrUnauthorized      = errors.New("registry: unauthorized")
	ErrThrottled         = errors.New("registry: throttled")
	ErrUnavailable       = errors.New("registry: unavailable")
	ErrUnexpectedStatus  = errors.New("registry: unexpected status")
	ErrMalformedResponse = errors.New("registry: malformed response")
)

const maxMessageLen = 256

// StatusError is returned for every non-2xx registry response.
type StatusError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.kind, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

type errorBody struct {
	ErrorMessage string `json:"error_message"`
	Description  string `json:"description"`
}

func newStatusError(status int, body []byte) *StatusError {
	return &StatusError{
		StatusCode: status,
		Message:    errorMessage(body),
		kind:       classify(status),
	}
}

func classify(status int) error {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrInvalidDocument
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrThrottled
	case status >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return ErrUnexpectedStatus
	}
}

func errorMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.ErrorMessage != "" {
			return parsed.ErrorMessage
		}

		if parsed.Description != "" {
			return parsed.Description
		}
	}

	msg := strings.TrimSpace(string(body))
	return truncate(msg, maxMessageLen)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return strings.ToValidUTF8(s, "")
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return strings.ToValidUTF8(s[:n], "")
}

// IsPermanent reports whether repeating the same call cannot succeed.
// Cancellation, throttling, outages and transport failures are not permanent.
func IsPermanent(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ratelimit.ErrCancelled),
		errors.Is(err, ErrThrottled),
		errors.Is(err, ErrUnavailable):
		return false
	case errors.Is(err, ErrInvalidDocument),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUnexpectedStatus),
		errors.Is(err, ErrMalformedResponse),
		errors.Is(err, document.ErrEmptySignature):
		return true
	default:
		return false
	}
}
