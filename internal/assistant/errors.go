package assistant

import "fmt"

// TransportError indicates a non-success HTTP status, or a network failure
// before any response bytes were received. Status is zero when the failure
// happened below HTTP.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("assistant request failed with status %d", e.Status)
	}
	return fmt.Sprintf("assistant request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StreamError indicates a failure while consuming a partially received
// streaming body. Deltas already delivered to the handler are the caller's to
// keep; nothing is rolled back.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("assistant stream interrupted: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// ProtocolError indicates a response that was received and parsed but carried
// an explicit error field, or no usable reply at all.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("assistant protocol error: %s", e.Detail)
}
