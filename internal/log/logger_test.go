package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf}).WithComponent(ComponentStorage)

	logger.InfoContext(context.Background(), "Record stored", FieldRecordID, "abc")

	out := buf.String()
	if !strings.Contains(out, "component=storage") {
		t.Errorf("missing component in %q", out)
	}
	if !strings.Contains(out, "record_id=abc") {
		t.Errorf("missing record id in %q", out)
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})
	reqID := func(context.Context) string { return "req_1" }

	h := Middleware(logger, reqID)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Errorf("request id not propagated: %q", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger: %+v", l)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithRecord("expense", "", "u1").
		WithError(errors.New("boom"), ErrorTypeDatabase).
		WithHTTPResponse(500, 12)

	if _, ok := f[FieldRecordID]; ok {
		t.Errorf("empty record id should be omitted")
	}
	if f[FieldError] != "boom" || f[FieldErrorType] != ErrorTypeDatabase {
		t.Errorf("error fields = %v", f)
	}
	if f[FieldSuccess] != false {
		t.Errorf("500 must not be a success")
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice length = %d", got)
	}
}
