package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func ExecuteRequest(req *http.Request, handler http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// NewJSONRequest builds a request with body sent as application/json. An
// empty body sends no payload.
func NewJSONRequest(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func CheckResponseCode(t testing.TB, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

// DecodeJSONBody decodes body into dst and checks nothing trails the value.
func DecodeJSONBody(t testing.TB, body io.Reader, dst any) {
	t.Helper()
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if dec.More() {
		t.Fatal("unexpected data after JSON response")
	}
}
