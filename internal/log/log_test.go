package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentItems, Handler: NewHandler(&buf, slog.LevelInfo, "json")})

	logger.Info("Item created", FieldItemID, "abc")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentItems || rec[FieldItemID] != "abc" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestLoggerComponentAttachedOnce(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Handler: NewHandler(&buf, slog.LevelInfo, "text")})

	base.With(FieldRequestID, "r1").WithComponent(ComponentTrace).Info("hello")

	line := buf.String()
	if n := strings.Count(line, "component="); n != 1 {
		t.Fatalf("component appears %d times in %q", n, line)
	}
	if !strings.Contains(line, "component=trace") || !strings.Contains(line, "request_id=r1") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestNewHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelWarn, "text"))
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithItem("id-1", "Coffee", "once", 12.5).
		WithOperation(OpCreate).
		WithError(errors.New("boom"))
	if f[FieldItemID] != "id-1" || f[FieldCostPerDay] != 12.5 || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("ToSlice must hold key/value pairs")
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Fatalf("nil error must not add a field")
	}
}

func TestWithLogger(t *testing.T) {
	logger := New(Config{Component: ComponentHTTP, Handler: slog.NewTextHandler(&bytes.Buffer{}, nil)})
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger from context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestStructuredLoggerHTTPEnd(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentHTTP, Handler: NewHandler(&buf, slog.LevelInfo, "json")}))
	r := httptest.NewRequest(http.MethodPost, "/api/items?x=1", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusUnprocessableEntity, 12, "10.0.0.1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec["level"] != "WARN" || rec[FieldStatusCode] != float64(422) || rec[FieldPath] != "/api/items" {
		t.Fatalf("unexpected record %v", rec)
	}
	if strings.Count(buf.String(), `"component":`) != 1 {
		t.Fatalf("component duplicated in %s", buf.String())
	}
}
