package ai

import "fmt"

// APIError indicates the backend accepted the connection but rejected the
// request with a non-success status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("ollama error: status=%d body=%s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("ollama error: status=%d", e.StatusCode)
}

// UnreachableError indicates the backend could not be reached at all.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("ollama unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("ollama unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// TimeoutError indicates a request or stream read exceeded its deadline.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ollama %s timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
