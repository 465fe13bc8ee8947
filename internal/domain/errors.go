package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionBusy is returned when a submission for the same session id
	// is already in flight. Overlapping submissions are rejected, not queued.
	ErrSessionBusy = errors.New("session has a submission in flight")

	// ErrTruncatedStream is returned by the client stream reader when the
	// response body ends without the completion sentinel. The server aborts
	// the stream without a terminal frame on mid-stream failure, so a
	// missing sentinel means the reply is incomplete.
	ErrTruncatedStream = errors.New("stream ended without completion sentinel")

	// ErrAgentNotFound is returned when an agent id resolves to no record.
	ErrAgentNotFound = errors.New("agent not found")
)

// RetrievalError marks a configured retrieval backend that was reached but
// failed. Unlike an unconfigured backend (silently skipped), this is terminal
// for the whole request.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// BlockedError carries the admission-policy decision for a rejected request.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("request blocked by policy: %s", e.Reason)
}
