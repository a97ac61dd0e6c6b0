package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"swipeinterview/internal/model"
)

// Handler serves the proxy routes. Paths are matched by suffix so the
// handler works both at the root and mounted under a prefix.
type Handler struct {
	service *Service
}

// NewHandler creates a proxy HTTP handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.service.completer == nil {
		writeError(w, http.StatusInternalServerError, ErrMissingAPIKey.Error())
		return
	}

	switch path := r.URL.Path; {
	case strings.HasSuffix(path, "/api/score"), strings.HasSuffix(path, "/api/openai/score"):
		h.score(w, r)
	case strings.HasSuffix(path, "/api/generate"), strings.HasSuffix(path, "/api/openai/generate"):
		h.generate(w, r)
	default:
		writeError(w, http.StatusNotFound, "unknown endpoint")
	}
}

func (h *Handler) score(w http.ResponseWriter, r *http.Request) {
	var req model.ScoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.service.Score(r.Context(), req)
	if err != nil {
		log.Printf("proxy score: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		log.Printf("proxy generate: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeBody accepts an empty body as {}
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
