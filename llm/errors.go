package llm

import (
	"errors"
	"fmt"
)

// Typed failures of a single analyze call, shared across providers. None of
// these are retried internally; the caller owns any retry affordance.
var (
	// ErrUnauthorized is returned for an HTTP 401 from the provider.
	ErrUnauthorized = errors.New("unauthorized: API key rejected")

	// ErrTimeout is returned when the transport times out. Callers are
	// expected to present this one specially ("servers are busy").
	ErrTimeout = errors.New("analysis request timed out")

	// ErrDecoding is returned when a 2xx response carries no usable
	// envelope (undecodable body or an empty choice/candidate list).
	ErrDecoding = errors.New("failed to decode analysis response")
)

// ServerError is any non-2xx, non-401 status from the provider.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}
