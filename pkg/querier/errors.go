package querier

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// NetworkError is returned when page can not be retrieved from remote
type NetworkError struct {
	URL string
	// StatusCode is zero if no response was received
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("request to %s failed: unexpected response code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether request was interrupted by deadline
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
