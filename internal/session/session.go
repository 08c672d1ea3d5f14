package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tutorchat-backend/internal/assistant"
	"tutorchat-backend/internal/attachment"
	"tutorchat-backend/internal/models"
	"tutorchat-backend/internal/thread"
	"tutorchat-backend/internal/transcript"
)

// ErrBusy is returned when a send arrives while a turn is already in flight.
// The transcript is untouched and no request is made; the caller may simply
// drop the attempt.
var ErrBusy = errors.New("a turn is already in flight")

// ErrNothingToSend is returned when a send carries neither text nor a
// pending attachment.
var ErrNothingToSend = errors.New("nothing to send")

// ErrProbeUnsupported is returned by RetryConnection when the configured
// protocol client has no probe support (streaming mode).
var ErrProbeUnsupported = errors.New("connection probe is not supported by this integration")

const (
	// errorNotice is the only failure text users ever see inline. Technical
	// detail goes to logs and the structured error, not the transcript.
	errorNotice = "Sorry, something went wrong on our end. Please try again in a moment."

	// streamNotice is appended below partially streamed content when the
	// stream fails mid-body, so the user keeps whatever arrived.
	streamNotice = "\n\nThe connection was interrupted before this reply finished."

	// attachmentPrompt synthesizes display text for attachment-only turns.
	attachmentPrompt = "Please analyze this document: %s"

	// restoredNotice is appended after a successful connection probe.
	restoredNotice = "Connection restored."
)

// Session is the turn controller for one conversation. It owns its
// transcript, continuity provider and pending attachment exclusively, and
// enforces at most one in-flight turn at a time.
type Session struct {
	ID uuid.UUID

	store   *transcript.Store
	threads thread.Provider
	client  assistant.Client
	encoder *attachment.Encoder

	mu      sync.Mutex
	state   State
	pending *models.Attachment
}

// NewSession creates a session from fully independent component instances.
// Sessions never share a transcript, continuity provider or pending
// attachment slot.
func NewSession(client assistant.Client, threads thread.Provider, store *transcript.Store) *Session {
	return &Session{
		ID:      uuid.New(),
		store:   store,
		threads: threads,
		client:  client,
		encoder: attachment.NewEncoder(),
		state:   StateIdle,
	}
}

// transition moves the session between admission states, rejecting illegal
// moves instead of silently ignoring them.
func (s *Session) transition(to State) error {
	if !canTransition(s.state, to) {
		return fmt.Errorf("illegal session state transition %s -> %s", s.state, to)
	}
	s.state = to
	return nil
}

// Busy reports whether a turn is currently in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateIdle
}

// Messages returns a snapshot of the transcript in append order.
func (s *Session) Messages() []models.Message {
	return s.store.Messages()
}

// Pending returns the currently staged attachment, if any.
func (s *Session) Pending() *models.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stage encodes a newly selected file and makes it the session's one pending
// attachment, replacing any previous one. Staging never queues: the session
// holds at most one attachment, consumed by the next turn.
func (s *Session) Stage(ctx context.Context, r io.Reader, displayName string) (*models.Attachment, error) {
	att, err := s.encoder.Encode(ctx, r, displayName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pending = att
	s.mu.Unlock()
	return att, nil
}

// Send runs one full turn: append the user message, dispatch the request
// with the current continuity token and pending attachment, apply response
// events to a placeholder assistant message, and finalize. A send while busy
// is rejected with ErrBusy and mutates nothing; an empty send is rejected
// with ErrNothingToSend and mutates nothing. Any turn failure is written to
// the transcript as a user-safe notice and returned as the structured error.
// The pending attachment and the busy state are always released, on every
// path.
func (s *Session) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	if trimmed == "" && s.pending == nil {
		s.mu.Unlock()
		return ErrNothingToSend
	}
	if err := s.transition(StateSending); err != nil {
		s.mu.Unlock()
		return err
	}
	att := s.pending
	s.mu.Unlock()

	// The attachment is single-use: it never survives past this turn,
	// success or not.
	defer func() {
		s.mu.Lock()
		s.pending = nil
		if s.state != StateIdle {
			if err := s.transition(StateIdle); err != nil {
				log.Printf("WARN [Session %s] %v", s.ID, err)
				s.state = StateIdle
			}
		}
		s.mu.Unlock()
	}()

	display := trimmed
	if display == "" {
		display = fmt.Sprintf(attachmentPrompt, att.DisplayName)
	}

	// History is captured before this turn's messages are appended, for
	// webhook integrations configured to send the whole prior transcript.
	history := mapHistory(s.store.Messages())

	s.store.Append(models.SenderUser, display)
	placeholderID := s.store.Append(models.SenderAssistant, "")

	req := assistant.Request{
		Message: display,
		History: history,
	}
	if att != nil {
		req.AttachmentName = att.DisplayName
		req.AttachmentPayload = att.EncodedPayload
	}
	if token, ok := s.threads.Get(); ok {
		req.ThreadID = token
	}

	h := &turnHandler{session: s, placeholderID: placeholderID}
	err := s.client.Send(ctx, req, h)
	if err == nil {
		return nil
	}

	log.Printf("WARN [Session %s] Turn failed: %v", s.ID, err)

	var streamErr *assistant.StreamError
	if errors.As(err, &streamErr) && h.buf.Len() > 0 {
		// Partial output stays visible; the notice goes below it.
		s.store.AppendText(placeholderID, streamNotice)
	} else {
		s.store.SetError(placeholderID, errorNotice)
	}
	return err
}

// Reset starts the conversation over: transcript back to the welcome
// message, continuity token dropped.
func (s *Session) Reset() {
	s.store.Reset()
	s.threads.Clear()
}

// RetryConnection issues a single explicit probe against the configured
// endpoint. Only webhook-style integrations support it; there is no backoff
// and no automatic invocation. Success appends an informational transcript
// entry; failure changes nothing and returns the error.
func (s *Session) RetryConnection(ctx context.Context) error {
	prober, ok := s.client.(assistant.Prober)
	if !ok {
		return ErrProbeUnsupported
	}
	if err := prober.Probe(ctx); err != nil {
		log.Printf("WARN [Session %s] Connection probe failed: %v", s.ID, err)
		return err
	}
	s.store.Append(models.SenderAssistant, restoredNotice)
	return nil
}

// turnHandler applies one turn's normalized events to the placeholder
// message. It accumulates deltas and always writes the whole running text,
// so each update is an idempotent overwrite rather than a store-side append.
type turnHandler struct {
	session       *Session
	placeholderID uuid.UUID
	buf           strings.Builder
}

// ThreadID persists the continuity token as soon as it is surfaced, so a
// later stream failure does not lose it.
func (h *turnHandler) ThreadID(id string) {
	h.session.threads.Set(id)
}

// Delta applies one text fragment to the placeholder message.
func (h *turnHandler) Delta(text string) {
	s := h.session

	s.mu.Lock()
	if s.state == StateIdle {
		// The turn already closed; a late delta must not resurrect it.
		s.mu.Unlock()
		log.Printf("WARN [Session %s] Dropping delta received while idle", s.ID)
		return
	}
	if s.state == StateSending {
		if err := s.transition(StateStreaming); err != nil {
			log.Printf("WARN [Session %s] %v", s.ID, err)
		}
	}
	s.mu.Unlock()

	h.buf.WriteString(text)
	s.store.UpdateText(h.placeholderID, h.buf.String())
}

// mapHistory converts transcript entries to the role/content pairs webhook
// integrations expect. Error notices are conversation chrome, not context,
// and are skipped; so are unfilled placeholders.
func mapHistory(messages []models.Message) []models.ChatHistoryEntry {
	out := make([]models.ChatHistoryEntry, 0, len(messages))
	for _, m := range messages {
		if m.IsError || m.Text == "" {
			continue
		}
		out = append(out, models.ChatHistoryEntry{
			Role:    string(m.Sender),
			Content: m.Text,
		})
	}
	return out
}
