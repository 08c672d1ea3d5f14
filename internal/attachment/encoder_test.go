package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk exploded")
}

func TestEncodeProducesBase64Payload(t *testing.T) {
	e := NewEncoder()

	att, err := e.Encode(context.Background(), strings.NewReader("hello homework"), "essay.txt")
	require.NoError(t, err)

	assert.Equal(t, "essay.txt", att.DisplayName)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("hello homework")), att.EncodedPayload)

	decoded, err := base64.StdEncoding.DecodeString(att.EncodedPayload)
	require.NoError(t, err)
	assert.Equal(t, "hello homework", string(decoded))
}

func TestEncodePreviewRefIsDataURI(t *testing.T) {
	e := NewEncoder()

	att, err := e.Encode(context.Background(), strings.NewReader("plain text content"), "notes.txt")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(att.PreviewRef, "data:text/plain"), "got %q", att.PreviewRef)
	assert.True(t, strings.HasSuffix(att.PreviewRef, att.EncodedPayload))
}

func TestEncodeEmptyInput(t *testing.T) {
	e := NewEncoder()

	_, err := e.Encode(context.Background(), strings.NewReader(""), "empty.txt")
	require.ErrorIs(t, err, ErrEmptyAttachment)
}

func TestEncodeUnreadableInput(t *testing.T) {
	e := NewEncoder()

	_, err := e.Encode(context.Background(), failingReader{}, "broken.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.bin")
}

func TestEncodeCancelledContext(t *testing.T) {
	e := NewEncoder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Encode(ctx, strings.NewReader("content"), "doc.txt")
	require.ErrorIs(t, err, context.Canceled)
}
