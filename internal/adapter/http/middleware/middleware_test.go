package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/assemble", "/api/assemble"},
		{"/job/3f1b6c52", "/job/{id}"},
		{"/download/out.mp4", "/download/{filename}"},
		{"/healthz", "/healthz"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsResponseWriter_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := newMetricsResponseWriter(rec)

	wrapped.WriteHeader(http.StatusAccepted)
	if wrapped.statusCode != http.StatusAccepted {
		t.Errorf("statusCode = %d, want %d", wrapped.statusCode, http.StatusAccepted)
	}

	// Default is 200 when WriteHeader is never called.
	if got := newMetricsResponseWriter(rec).statusCode; got != http.StatusOK {
		t.Errorf("default statusCode = %d, want %d", got, http.StatusOK)
	}
}

func TestLogging_PassesThrough(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assemble", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
