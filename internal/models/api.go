package models

import (
	"github.com/google/uuid"
)

// --- Request Structs ---

// SendMessageRequest defines the body for sending a message into a session.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// --- Response Structs ---

// CreateSessionResponse defines the response for a newly created session.
type CreateSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
}

// TranscriptResponse defines the transcript snapshot returned to the caller.
type TranscriptResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Messages  []Message `json:"messages"`
	Busy      bool      `json:"busy"`
}

// SendMessageResponse defines the response for a completed turn. Error is the
// structured failure surfaced alongside the transcript; the transcript itself
// already carries the user-visible notice.
type SendMessageResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Messages  []Message `json:"messages"`
	Error     string    `json:"error,omitempty"`
}

// AttachmentResponse defines the response after staging an attachment.
type AttachmentResponse struct {
	DisplayName string `json:"display_name"`
	PreviewRef  string `json:"preview_ref"`
}

// RetryResponse defines the response for a connection retry probe.
type RetryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
