package assistant

import (
	"context"

	"tutorchat-backend/internal/models"
)

// Request carries one outbound turn to the remote assistant. ThreadID and the
// attachment fields are optional; History is only consulted by webhook-style
// integrations configured to send the whole prior transcript.
type Request struct {
	Message           string
	AttachmentName    string
	AttachmentPayload string
	ThreadID          string
	History           []models.ChatHistoryEntry
}

// Handler receives the normalized event sequence for one turn: zero or more
// Delta calls, with ThreadID surfaced as soon as the token is known (before
// body consumption begins, so it survives a later stream failure).
type Handler interface {
	// ThreadID delivers a continuity token carried by the response.
	ThreadID(id string)
	// Delta delivers one decoded text fragment in arrival order.
	Delta(text string)
}

// Client issues one request to the remote assistant and drives the handler.
// Both response modes normalize to the same contract: deltas in order, then a
// nil return for completion or a non-nil error for failure.
type Client interface {
	Send(ctx context.Context, req Request, h Handler) error
}

// Prober is implemented by clients that support an explicit, user-triggered
// connection probe against their configured endpoint.
type Prober interface {
	Probe(ctx context.Context) error
}
