package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"swipeinterview/internal/extractor"
	"swipeinterview/internal/service"
)

const maxResumeSize = 10 << 20

// SessionHandler handles candidate session endpoints
type SessionHandler struct {
	interviewSvc *service.InterviewService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(interviewSvc *service.InterviewService) *SessionHandler {
	return &SessionHandler{
		interviewSvc: interviewSvc,
	}
}

// DraftRequest is the request body for saving a draft
type DraftRequest struct {
	Draft string `json:"draft"`
}

// AnswerRequest is the request body for submitting an answer
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// Create handles POST /v1/sessions (multipart field "resume")
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResumeSize)
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a resume file")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing resume file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read resume file")
		return
	}

	session, err := h.interviewSvc.CreateFromResume(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// List handles GET /v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.interviewSvc.List())
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.interviewSvc.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.interviewSvc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /v1/sessions/{id}/activate
func (h *SessionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	view, err := h.interviewSvc.Activate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SaveDraft handles PUT /v1/sessions/{id}/draft
func (h *SessionHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.interviewSvc.SaveDraft(mux.Vars(r)["id"], req.Draft); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// Submit handles POST /v1/sessions/{id}/answers. Scoring is asynchronous;
// the result arrives as an evaluation_result event.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.interviewSvc.Submit(mux.Vars(r)["id"], req.Answer); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
}

// Close handles POST /v1/sessions/{id}/close
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	view, err := h.interviewSvc.Close(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Resume handles GET /v1/sessions/{id}/resume
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	data, key, err := h.interviewSvc.ResumeFile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	name := path.Base(key)
	if mime := extractor.DetectType(name, ""); mime != "" {
		w.Header().Set("Content-Type", mime)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
