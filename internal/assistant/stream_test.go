package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures the normalized event sequence for assertions.
type recordingHandler struct {
	deltas          []string
	threadID        string
	tokenAfterDelta bool
}

func (h *recordingHandler) ThreadID(id string) {
	h.threadID = id
	if len(h.deltas) > 0 {
		h.tokenAfterDelta = true
	}
}

func (h *recordingHandler) Delta(text string) {
	h.deltas = append(h.deltas, text)
}

func (h *recordingHandler) text() string {
	return strings.Join(h.deltas, "")
}

func TestStreamClientDeliversDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fl := w.(http.Flusher)
		for _, chunk := range []string{"Hel", "lo wo", "rld"} {
			w.Write([]byte(chunk))
			fl.Flush()
		}
	}))
	defer srv.Close()

	h := &recordingHandler{}
	err := NewStreamClient(srv.URL, "").Send(context.Background(), Request{Message: "hi"}, h)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", h.text())
}

func TestStreamClientMultiByteBoundarySafety(t *testing.T) {
	// "é" is 0xC3 0xA9; split it across two flushed chunks.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fl := w.(http.Flusher)
		w.Write([]byte("caf\xc3"))
		fl.Flush()
		w.Write([]byte("\xa9 au lait"))
		fl.Flush()
	}))
	defer srv.Close()

	h := &recordingHandler{}
	err := NewStreamClient(srv.URL, "").Send(context.Background(), Request{Message: "hi"}, h)
	require.NoError(t, err)

	assert.Equal(t, "café au lait", h.text())
	for _, d := range h.deltas {
		assert.True(t, utf8.ValidString(d), "delta %q is not valid UTF-8", d)
	}
}

func TestStreamClientSurfacesThreadIDBeforeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(DefaultThreadIDHeader, "th_42")
		w.Write([]byte("reply"))
	}))
	defer srv.Close()

	h := &recordingHandler{}
	err := NewStreamClient(srv.URL, "").Send(context.Background(), Request{Message: "hi"}, h)
	require.NoError(t, err)

	assert.Equal(t, "th_42", h.threadID)
	assert.False(t, h.tokenAfterDelta, "token must be surfaced before body consumption")
}

func TestStreamClientCustomThreadHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-custom-thread", "th_custom")
	}))
	defer srv.Close()

	h := &recordingHandler{}
	err := NewStreamClient(srv.URL, "x-custom-thread").Send(context.Background(), Request{Message: "hi"}, h)
	require.NoError(t, err)
	assert.Equal(t, "th_custom", h.threadID)
}

func TestStreamClientNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := &recordingHandler{}
	err := NewStreamClient(srv.URL, "").Send(context.Background(), Request{Message: "hi"}, h)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadGateway, te.Status)
	assert.Empty(t, h.deltas)
}

func TestStreamClientConnectionRefused(t *testing.T) {
	h := &recordingHandler{}
	err := NewStreamClient("http://127.0.0.1:1", "").Send(context.Background(), Request{Message: "hi"}, h)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
}

func TestStreamClientRequestBody(t *testing.T) {
	var got streamRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	h := &recordingHandler{}
	req := Request{
		Message:           "look at this",
		AttachmentName:    "essay.txt",
		AttachmentPayload: "aGVsbG8=",
		ThreadID:          "th_9",
	}
	require.NoError(t, NewStreamClient(srv.URL, "").Send(context.Background(), req, h))

	assert.Equal(t, "look at this", got.Message)
	assert.Equal(t, "essay.txt", got.FileName)
	assert.Equal(t, "aGVsbG8=", got.FileData)
	assert.Equal(t, "th_9", got.ThreadID)
}

func TestStreamClientOmitsAbsentOptionalFields(t *testing.T) {
	var raw map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer srv.Close()

	h := &recordingHandler{}
	require.NoError(t, NewStreamClient(srv.URL, "").Send(context.Background(), Request{Message: "hi"}, h))

	assert.NotContains(t, raw, "fileName")
	assert.NotContains(t, raw, "fileData")
	assert.NotContains(t, raw, "threadId")
}

func TestSplitCompleteUTF8(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantComplete string
		wantRest     string
	}{
		{"ascii", "hello", "hello", ""},
		{"complete multibyte", "café", "café", ""},
		{"dangling lead byte", "caf\xc3", "caf", "\xc3"},
		{"dangling three of four", "a\xf0\x9f\x98", "a", "\xf0\x9f\x98"},
		{"empty", "", "", ""},
		{"lone continuation bytes", "\xa9\xa9", "\xa9\xa9", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, rest := splitCompleteUTF8([]byte(tt.in))
			assert.Equal(t, tt.wantComplete, string(complete))
			assert.Equal(t, tt.wantRest, string(rest))
		})
	}
}

func TestStreamErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &StreamError{Err: inner}
	assert.ErrorIs(t, err, inner)
}
