package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tutorchat-backend/internal/attachment"
	"tutorchat-backend/internal/models"
	"tutorchat-backend/internal/session"
	"tutorchat-backend/pkg/httputil"
)

// maxAttachmentBytes caps multipart uploads held in memory.
const maxAttachmentBytes = 10 << 20

// SessionHandlers handles HTTP requests related to chat sessions.
type SessionHandlers struct {
	manager *session.Manager
}

// NewSessionHandlers creates a new SessionHandlers instance.
func NewSessionHandlers(manager *session.Manager) *SessionHandlers {
	return &SessionHandlers{
		manager: manager,
	}
}

// sessionFromRequest resolves the session referenced by the URL, writing the
// error response itself when the id is malformed or unknown.
func (h *SessionHandlers) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	idStr := chi.URLParam(r, "sessionID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}

	s, ok := h.manager.Get(id)
	if !ok {
		httputil.RespondError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

// HandleCreateSession handles requests to create a new chat session.
func (h *SessionHandlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()
	httputil.RespondJSON(w, http.StatusCreated, models.CreateSessionResponse{SessionID: s.ID})
}

// HandleGetTranscript handles requests for a session's transcript snapshot.
func (h *SessionHandlers) HandleGetTranscript(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.TranscriptResponse{
		SessionID: s.ID,
		Messages:  s.Messages(),
		Busy:      s.Busy(),
	})
}

// HandleSendMessage handles requests to run one turn in a session.
func (h *SessionHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.Send(r.Context(), req.Message)
	switch {
	case errors.Is(err, session.ErrBusy):
		httputil.RespondError(w, http.StatusConflict, "A reply is already in progress")
		return
	case errors.Is(err, session.ErrNothingToSend):
		httputil.RespondError(w, http.StatusBadRequest, "Message is empty and no attachment is staged")
		return
	}

	resp := models.SendMessageResponse{
		SessionID: s.ID,
		Messages:  s.Messages(),
	}
	if err != nil {
		// The turn completed with a failure already written into the
		// transcript; surface the structured detail alongside it.
		resp.Error = err.Error()
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleStageAttachment handles multipart uploads staging a session's one
// pending attachment.
func (h *SessionHandlers) HandleStageAttachment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Missing 'file' form field")
		return
	}
	defer file.Close()

	att, err := s.Stage(r.Context(), file, header.Filename)
	if err != nil {
		if errors.Is(err, attachment.ErrEmptyAttachment) {
			httputil.RespondError(w, http.StatusBadRequest, "Attachment is empty")
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to stage attachment: "+err.Error())
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.AttachmentResponse{
		DisplayName: att.DisplayName,
		PreviewRef:  att.PreviewRef,
	})
}

// HandleReset handles requests to start a session over.
func (h *SessionHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	s.Reset()
	httputil.RespondJSON(w, http.StatusOK, models.TranscriptResponse{
		SessionID: s.ID,
		Messages:  s.Messages(),
		Busy:      s.Busy(),
	})
}

// HandleRetryConnection handles explicit connection retry probes.
func (h *SessionHandlers) HandleRetryConnection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	err := s.RetryConnection(r.Context())
	if errors.Is(err, session.ErrProbeUnsupported) {
		httputil.RespondError(w, http.StatusConflict, "Connection retry is only available for webhook integrations")
		return
	}
	if err != nil {
		httputil.RespondJSON(w, http.StatusOK, models.RetryResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.RetryResponse{Success: true})
}
