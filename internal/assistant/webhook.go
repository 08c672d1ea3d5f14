package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tutorchat-backend/internal/models"
)

// HistoryShape selects which conversation context a webhook integration
// receives: the whole prior transcript or just the latest message. This is a
// deployment choice, not something the core infers.
type HistoryShape string

const (
	HistoryFull   HistoryShape = "full"
	HistoryLatest HistoryShape = "latest"
)

// WebhookClient talks to a webhook-style integration that answers each turn
// with a single JSON payload.
type WebhookClient struct {
	endpoint   string
	shape      HistoryShape
	httpClient *http.Client
}

// NewWebhookClient creates a single-shot protocol client for the given
// endpoint and history shape.
func NewWebhookClient(endpoint string, shape HistoryShape) *WebhookClient {
	if shape == "" {
		shape = HistoryFull
	}
	return &WebhookClient{
		endpoint:   endpoint,
		shape:      shape,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// fullHistoryRequest is the wire shape sending the whole prior transcript.
type fullHistoryRequest struct {
	CurrentMessage string                    `json:"currentMessage"`
	ChatHistory    []models.ChatHistoryEntry `json:"chatHistory"`
}

// latestMessageRequest is the wire shape sending only the newest message.
type latestMessageRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId,omitempty"`
}

// Send issues the turn and delivers the extracted reply as a single delta,
// so webhook responses normalize to the same event sequence streaming
// responses produce.
func (c *WebhookClient) Send(ctx context.Context, req Request, h Handler) error {
	var payload interface{}
	switch c.shape {
	case HistoryLatest:
		payload = latestMessageRequest{Message: req.Message, ThreadID: req.ThreadID}
	default:
		payload = fullHistoryRequest{CurrentMessage: req.Message, ChatHistory: req.History}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StreamError{Err: err}
	}

	parsed := parseReply(raw)
	switch parsed.kind {
	case replyError:
		return &ProtocolError{Detail: parsed.text}
	case replyRaw:
		if strings.TrimSpace(parsed.text) == "" {
			return &ProtocolError{Detail: "response contained no usable reply"}
		}
	}

	if parsed.threadID != "" {
		h.ThreadID(parsed.threadID)
	}
	h.Delta(parsed.text)
	return nil
}

// Probe re-issues a minimal request against the configured endpoint. It is a
// single attempt with no backoff, used only by an explicit user retry.
func (c *WebhookClient) Probe(ctx context.Context) error {
	body, err := json.Marshal(latestMessageRequest{Message: "ping"})
	if err != nil {
		return fmt.Errorf("failed to marshal probe request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Status: resp.StatusCode}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// replyKind tags the outcome of parsing a single-shot response body.
type replyKind int

const (
	replyOK replyKind = iota
	replyError
	replyRaw
)

// parsedReply is the tagged result of reply extraction. The fallback order
// (reply, response, message, then error, then raw body) is an explicit
// policy here rather than implicit code order.
type parsedReply struct {
	kind     replyKind
	text     string
	threadID string
}

func parseReply(raw []byte) parsedReply {
	var fields struct {
		Reply    *string `json:"reply"`
		Response *string `json:"response"`
		Message  *string `json:"message"`
		Error    *string `json:"error"`
		ThreadID string  `json:"threadId"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Not JSON at all: the raw body is the last-resort reply.
		return parsedReply{kind: replyRaw, text: string(raw)}
	}

	switch {
	case fields.Reply != nil:
		return parsedReply{kind: replyOK, text: *fields.Reply, threadID: fields.ThreadID}
	case fields.Response != nil:
		return parsedReply{kind: replyOK, text: *fields.Response, threadID: fields.ThreadID}
	case fields.Message != nil:
		return parsedReply{kind: replyOK, text: *fields.Message, threadID: fields.ThreadID}
	case fields.Error != nil:
		return parsedReply{kind: replyError, text: *fields.Error}
	default:
		return parsedReply{kind: replyRaw, text: string(raw), threadID: fields.ThreadID}
	}
}
