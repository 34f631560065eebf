package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"go-equation-solver/internal/recognition"
	"go-equation-solver/internal/session"
	"go-equation-solver/internal/solver"
)

func TestMain(m *testing.M) {
	if err := solver.InitMetrics(); err != nil {
		fmt.Fprintf(os.Stderr, "initializing solver metrics: %v\n", err)
		os.Exit(1)
	}
	if err := session.InitMetrics(); err != nil {
		fmt.Fprintf(os.Stderr, "initializing session metrics: %v\n", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newTestRouter(maxBody int64) http.Handler {
	rec := recognition.NewRecognizer(
		recognition.NewFakeExtractor(nil, 0),
		recognition.NewPreprocessor(recognition.DefaultPreprocessOptions()),
		time.Second,
	)
	return NewRouter(Deps{
		Solver:       solver.NewHandler(rec),
		Sessions:     session.NewHandler(session.NewStore(rec, time.Minute), time.Second),
		MaxBodyBytes: maxBody,
	})
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterSolveSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(1 << 20)
	body := []byte(`{"equation":"2x+5=13"}`)
	req := httptest.NewRequest(http.MethodPost, "/equations/solve", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got := payload["solution"]; got != "x = 4.00" {
		t.Fatalf("expected solution %q, got %#v", "x = 4.00", got)
	}
}

func TestNewRouterUnknownSession(t *testing.T) {
	router := newTestRouter(0)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestNewRouterRejectsOversizedBody(t *testing.T) {
	router := newTestRouter(64)
	body := `{"equation":"` + strings.Repeat("1+", 100) + `1"}`
	req := httptest.NewRequest(http.MethodPost, "/equations/solve", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status %d, got %d", http.StatusRequestEntityTooLarge, w.Code)
	}
}
