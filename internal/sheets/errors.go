package sheets

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated indicates the token source yielded no access token.
// It is surfaced immediately, before any network call and without retry,
// so callers can trigger re-authentication.
var ErrUnauthenticated = errors.New("unauthenticated: no valid access token")

// ErrorKind classifies a remote API failure. Kinds are preserved up to
// the facade boundary for programmatic branching and collapsed to text
// only at the UI edge.
type ErrorKind string

const (
	KindPermissionDenied ErrorKind = "permission_denied"
	KindNotFound         ErrorKind = "not_found"
	KindRateLimited      ErrorKind = "rate_limited"
	KindQuotaExceeded    ErrorKind = "quota_exceeded"
	KindServerError      ErrorKind = "server_error"
	KindTransport        ErrorKind = "transport"
	KindUnexpected       ErrorKind = "unexpected"
)

// APIError is a classified failure from the remote tabular API.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("sheets api: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sheets api: %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the error is worth another attempt.
// Only rate limiting and transport failures qualify; auth and
// not-found failures abort immediately.
func (e *APIError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransport
}

// classifyStatus maps an HTTP status and response body to an APIError.
func classifyStatus(status int, body string) *APIError {
	kind := KindUnexpected
	switch {
	case status == 403:
		kind = KindPermissionDenied
		// Google-style quota errors arrive as 403 with quota phrasing.
		if containsAny(body, "quota", "rate limit", "rateLimitExceeded") {
			kind = KindQuotaExceeded
		}
	case status == 404:
		kind = KindNotFound
	case status == 429:
		kind = KindRateLimited
	case status >= 500:
		kind = KindServerError
	}
	return &APIError{Kind: kind, StatusCode: status, Message: strings.TrimSpace(body)}
}

// transportError wraps a network-level failure (DNS, reset, timeout).
func transportError(err error) *APIError {
	return &APIError{Kind: KindTransport, Message: err.Error()}
}

// KindOf extracts the ErrorKind from err, or KindUnexpected if err is
// not an APIError. ErrUnauthenticated has no kind; check it with
// errors.Is before calling this.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnexpected
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
