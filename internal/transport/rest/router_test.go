package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"swipeinterview/internal/model"
	"swipeinterview/internal/proxy"
	"swipeinterview/internal/service"
	"swipeinterview/internal/transport/ws"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions []*model.Session
}

func (m *memoryStore) Load(ctx context.Context) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions, nil
}

func (m *memoryStore) Save(ctx context.Context, sessions []*model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = sessions
	return nil
}

type fixedScorer struct{}

func (fixedScorer) ScoreAnswer(ctx context.Context, question, answer string) (*model.ScoreResult, error) {
	return &model.ScoreResult{Score: 7, Feedback: "solid"}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *service.InterviewService) {
	t.Helper()
	svc := service.NewInterviewService(&memoryStore{}, fixedScorer{}, []model.Question{
		{ID: "q1", Text: "Why Go?", Difficulty: model.DifficultyEasy, TimeLimit: 20},
	}, service.InterviewConfig{ScoreTimeout: time.Second})
	if err := svc.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	t.Cleanup(func() { svc.Shutdown(context.Background()) })

	router := NewRouter(&Container{
		InterviewService: svc,
		Proxy:            proxy.NewHandler(proxy.NewService(nil, 0, 0)),
		WSHub:            ws.NewHub(),
	})
	return router, svc
}

func do(h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, h http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("resume", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	router, svc := newTestRouter(t)

	rec := upload(t, router, "cv.txt", "Ada Lovelace\nada@example.com\nAnalyst")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var created model.Session
	json.NewDecoder(rec.Body).Decode(&created)
	if created.Status != model.SessionCreated || created.Email != "ada@example.com" {
		t.Fatalf("unexpected session %+v", created)
	}

	if rec := do(router, http.MethodGet, "/v1/sessions/"+created.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = do(router, http.MethodPost, "/v1/sessions/"+created.ID+"/activate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: expected 200, got %d", rec.Code)
	}
	var view model.SessionView
	json.NewDecoder(rec.Body).Decode(&view)
	if view.Total != 1 || view.Question == nil || view.Question.QuestionID != "q1" {
		t.Fatalf("unexpected view %+v", view)
	}

	if rec := do(router, http.MethodDelete, "/v1/sessions/"+created.ID, ""); rec.Code != http.StatusConflict {
		t.Fatalf("delete active: expected 409, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPut, "/v1/sessions/"+created.ID+"/draft", `{"draft":"because"}`); rec.Code != http.StatusOK {
		t.Fatalf("draft: expected 200, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/v1/sessions/"+created.ID+"/answers", `{"answer":"because"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("submit: expected 202, got %d", rec.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for svc.ActiveID() != "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	rec = do(router, http.MethodGet, "/v1/dashboard", "")
	var dash struct {
		ActiveSessionID string           `json:"activeSessionId"`
		Sessions        []*model.Session `json:"sessions"`
	}
	json.NewDecoder(rec.Body).Decode(&dash)
	if len(dash.Sessions) != 1 || dash.Sessions[0].Status != model.SessionFinished {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
	if fs := dash.Sessions[0].FinalScore; fs == nil || *fs != 7 {
		t.Fatalf("unexpected final score %v", fs)
	}

	if rec := do(router, http.MethodPost, "/v1/sessions/"+created.ID+"/activate", ""); rec.Code != http.StatusConflict {
		t.Fatalf("activate finished: expected 409, got %d", rec.Code)
	}
	if rec := do(router, http.MethodDelete, "/v1/sessions/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing session", http.MethodGet, "/v1/sessions/s_nope", "", http.StatusNotFound},
		{"activate missing", http.MethodPost, "/v1/sessions/s_nope/activate", "", http.StatusNotFound},
		{"bad answer body", http.MethodPost, "/v1/sessions/s_nope/answers", "{", http.StatusBadRequest},
		{"no archive", http.MethodGet, "/v1/sessions/s_nope/resume", "", http.StatusNotFound},
		{"bad limit", http.MethodGet, "/v1/leaderboard?limit=abc", "", http.StatusBadRequest},
		{"upload without form", http.MethodPost, "/v1/sessions", "plain", http.StatusBadRequest},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"preflight", http.MethodOptions, "/v1/sessions", "", http.StatusOK},
		{"proxy get", http.MethodGet, "/api/score", "", http.StatusMethodNotAllowed},
		{"proxy without key", http.MethodPost, "/api/score", "{}", http.StatusInternalServerError},
		{"proxy unknown without key", http.MethodPost, "/api/unknown", "{}", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(router, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestUploadUnsupportedTypeIs422(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := upload(t, router, "photo.png", "\x89PNG")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
