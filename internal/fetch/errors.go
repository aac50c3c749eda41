package fetch

import (
	"fmt"
	"time"
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
	RequestID  string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("fetch %s: status=%d", e.URL, e.StatusCode)
	if e.RequestID != "" {
		msg += " request_id=" + e.RequestID
	}
	if e.Body != "" {
		msg += " body=" + e.Body
	}
	return msg
}

// NotFoundError indicates the resource does not exist (404/410).
type NotFoundError struct{ *StatusError }

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %s", e.StatusError.Error()) }

func (e *NotFoundError) Unwrap() error { return e.StatusError }

// RateLimitError indicates 429 responses and may include a Retry-After.
type RateLimitError struct {
	*StatusError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.StatusError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.StatusError.Error())
}

func (e *RateLimitError) Unwrap() error { return e.StatusError }

// UnreachableError indicates the host could not be reached at all.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("host unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("host unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }
