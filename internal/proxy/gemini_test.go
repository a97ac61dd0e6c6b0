package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"swipeinterview/internal/config"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiCompleter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g, err := NewGeminiCompleter(context.Background(), &config.AIConfig{
		Provider:  config.ProviderGemini,
		APIKey:    "gm-test",
		BaseURL:   srv.URL + "/",
		Model:     "gemini-2.0-flash",
		TimeoutMS: 2000,
	})
	if err != nil {
		t.Fatalf("NewGeminiCompleter: %v", err)
	}
	return g
}

func TestGeminiCompleterReturnsText(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"score\":8,\"feedback\":\"ok\"}"}]}}]}`))
	})

	got, err := g.Complete(context.Background(), "rate this", 200)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"score":8,"feedback":"ok"}` {
		t.Fatalf("got %q", got)
	}
}

func TestGeminiCompleterMapsAPIErrors(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := g.Complete(context.Background(), "rate this", 200)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != http.StatusTooManyRequests {
		t.Fatalf("expected UpstreamError 429, got %v", err)
	}

	// the proxy still answers 200 with the heuristic score
	rec := serve(NewHandler(NewService(g, 0, 0)), http.MethodPost, "/api/score", `{"question":"q","answer":"a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"score":0`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
