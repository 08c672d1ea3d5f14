package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"tutorchat-backend/internal/models"
)

// ErrEmptyAttachment is returned when the selected file has no content.
var ErrEmptyAttachment = errors.New("attachment is empty")

// Encoder converts a raw file into a transport-safe payload plus a
// display-ready preview reference.
type Encoder struct{}

// NewEncoder creates a new attachment Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode reads the file content, base64-encodes it for transport and derives
// a data-URI preview reference from the sniffed content type. It returns
// ErrEmptyAttachment for empty input and a wrapped error if the source is
// unreadable; the transcript is never touched on either path.
func (e *Encoder) Encode(ctx context.Context, r io.Reader, displayName string) (*models.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %q: %w", displayName, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyAttachment
	}

	encoded := base64.StdEncoding.EncodeToString(raw)
	contentType := http.DetectContentType(raw)

	return &models.Attachment{
		EncodedPayload: encoded,
		DisplayName:    displayName,
		PreviewRef:     "data:" + contentType + ";base64," + encoded,
	}, nil
}
