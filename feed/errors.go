package feed

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTier = errors.New("unknown snapshot tier")
	ErrNoVersion   = errors.New("no snapshot version")
	ErrDecompress  = errors.New("decompression failed")
	ErrStatus      = errors.New("unexpected http status")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed: status %d, body: %s", e.URL, e.StatusCode, e.Body)
}

// Is implements errors.Is support
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
