package handler

import (
	"net/http"
	"strconv"

	"swipeinterview/internal/service"
)

// DashboardHandler serves the interviewer views
type DashboardHandler struct {
	interviewSvc *service.InterviewService
}

func NewDashboardHandler(interviewSvc *service.InterviewService) *DashboardHandler {
	return &DashboardHandler{
		interviewSvc: interviewSvc,
	}
}

// Dashboard handles GET /v1/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activeSessionId": h.interviewSvc.ActiveID(),
		"sessions":        h.interviewSvc.Dashboard(),
	})
}

// Leaderboard handles GET /v1/leaderboard?limit=
func (h *DashboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.interviewSvc.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
	})
}
