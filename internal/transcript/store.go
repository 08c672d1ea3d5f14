package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tutorchat-backend/internal/models"
)

// Store is an append-only, order-preserving message sequence for one session.
// Messages are never reordered or deleted; the only permitted mutation is
// replacing the text of an existing entry by id, which the turn controller
// uses to fill the in-flight assistant bubble as chunks arrive.
type Store struct {
	mu       sync.Mutex
	messages []models.Message
	welcome  string
}

// NewStore creates a transcript seeded with the given welcome message.
func NewStore(welcome string) *Store {
	s := &Store{welcome: welcome}
	s.seed()
	return s
}

func (s *Store) seed() {
	s.messages = nil
	if s.welcome != "" {
		s.messages = append(s.messages, models.Message{
			ID:        uuid.New(),
			Sender:    models.SenderAssistant,
			Text:      s.welcome,
			CreatedAt: time.Now(),
		})
	}
}

// Append adds a message to the end of the transcript and returns its id.
func (s *Store) Append(sender models.Sender, text string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.messages = append(s.messages, models.Message{
		ID:        id,
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now(),
	})
	return id
}

// UpdateText replaces the text of the message with the given id. Unknown ids
// are a silent no-op: a late chunk for a turn that was already finalized must
// not resurrect or corrupt a closed message.
func (s *Store) UpdateText(id uuid.UUID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Text = text
			return
		}
	}
}

// AppendText appends extra text to the message with the given id, marking it
// as an error notice. Used to attach a failure note below partially streamed
// content without discarding what already arrived. Unknown ids are a no-op.
func (s *Store) AppendText(id uuid.UUID, extra string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Text += extra
			s.messages[i].IsError = true
			return
		}
	}
}

// SetError replaces the text of the message with the given id and flags it
// as an error notice. Unknown ids are a silent no-op.
func (s *Store) SetError(id uuid.UUID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Text = text
			s.messages[i].IsError = true
			return
		}
	}
}

// Reset clears all messages and reinitializes the transcript with the
// welcome message. Used only by an explicit user-triggered start-over.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed()
}

// Messages returns a copy of the transcript in append order.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages currently in the transcript.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
