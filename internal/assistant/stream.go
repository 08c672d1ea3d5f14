package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// DefaultThreadIDHeader is the response header carrying the continuity token.
const DefaultThreadIDHeader = "x-openai-thread-id"

// StreamClient talks to an assistant endpoint that answers with a raw UTF-8
// text stream, delivering each decoded fragment to the handler as it arrives.
type StreamClient struct {
	endpoint     string
	threadHeader string
	httpClient   *http.Client
}

// NewStreamClient creates a streaming-mode protocol client for the given
// endpoint. threadHeader may be empty to use DefaultThreadIDHeader.
func NewStreamClient(endpoint, threadHeader string) *StreamClient {
	if threadHeader == "" {
		threadHeader = DefaultThreadIDHeader
	}
	return &StreamClient{
		endpoint:     endpoint,
		threadHeader: threadHeader,
		// No global timeout: the body is a long-lived stream. Connection
		// setup failures still surface promptly from the transport.
		httpClient: &http.Client{},
	}
}

// streamRequest is the wire shape of a streaming-mode turn.
type streamRequest struct {
	Message  string `json:"message"`
	FileName string `json:"fileName,omitempty"`
	FileData string `json:"fileData,omitempty"`
	ThreadID string `json:"threadId,omitempty"`
}

// Send issues the turn and incrementally decodes the response body. The
// continuity token header is surfaced before any body bytes are consumed.
// Multi-byte characters split across chunk boundaries are held back until
// complete, and any remainder is flushed when the stream ends.
func (c *StreamClient) Send(ctx context.Context, req Request, h Handler) error {
	body, err := json.Marshal(streamRequest{
		Message:  req.Message,
		FileName: req.AttachmentName,
		FileData: req.AttachmentPayload,
		ThreadID: req.ThreadID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal stream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build stream request: %w", err)
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

	if token := resp.Header.Get(c.threadHeader); token != "" {
		h.ThreadID(token)
	}

	return c.decodeBody(resp.Body, h)
}

// decodeBody reads the raw byte stream and emits UTF-8-safe text fragments.
func (c *StreamClient) decodeBody(r io.Reader, h Handler) error {
	buf := make([]byte, 4096)
	var carry []byte

	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := append(carry, buf[:n]...)
			complete, rest := splitCompleteUTF8(data)
			if len(complete) > 0 {
				h.Delta(string(complete))
			}
			carry = append([]byte(nil), rest...)
		}
		if err == io.EOF {
			// Flush boundary-straddling bytes on the final decode.
			if len(carry) > 0 {
				h.Delta(string(carry))
			}
			return nil
		}
		if err != nil {
			if len(carry) > 0 {
				h.Delta(string(carry))
			}
			return &StreamError{Err: err}
		}
	}
}

// splitCompleteUTF8 splits b into a prefix containing only complete UTF-8
// sequences and a suffix holding the trailing bytes of an unfinished rune.
func splitCompleteUTF8(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && len(b)-i < utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return b, nil
			}
			return b[:i], b[i:]
		}
	}
	return b, nil
}
