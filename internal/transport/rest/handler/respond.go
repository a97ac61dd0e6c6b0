package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"swipeinterview/internal/interview"
	"swipeinterview/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrNoResume):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionActive),
		errors.Is(err, service.ErrSessionNotActive),
		errors.Is(err, interview.ErrFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrExtraction):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, interview.ErrEmptyCatalog):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
