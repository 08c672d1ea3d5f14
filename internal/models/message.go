package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message represents a single entry in a session transcript.
// The ID is assigned at creation and is the mutation key used while an
// assistant reply is being streamed into the entry.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	IsError   bool      `json:"is_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryEntry is the role/content pair shape sent to webhook-style
// assistant integrations that expect the whole prior transcript.
type ChatHistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
