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

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG ":  slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLoggerTagsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})

	l.Info("hello", FieldIndex, 3)
	out := buf.String()
	assert.Contains(t, out, "component=ledger")
	assert.Contains(t, out, "index=3")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("component=")))

	buf.Reset()
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	httpLog := l.With(FieldRequestID, "req-1").WithComponent(ComponentHTTP)
	httpLog.Info("served")
	out = buf.String()
	assert.Equal(t, 1, strings.Count(out, "component="), out)
	assert.Contains(t, out, "component=http")
	assert.Contains(t, out, "request_id=req-1")
	assert.Equal(t, ComponentHTTP, httpLog.Component())

	buf.Reset()
	httpLog.WithComponent(ComponentBackend).Info("nested")
	assert.Equal(t, 1, strings.Count(buf.String(), "component="), buf.String())
	assert.Contains(t, buf.String(), "component=backend")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentHTTP, Output: &buf})

	ctx := context.WithValue(context.Background(), LoggerContextKey, l.With(FieldRequestID, "req-1"))
	got := FromContext(ctx)

	got.Info("inside")
	assert.Contains(t, buf.String(), "request_id=req-1")
	assert.Equal(t, ComponentHTTP, got.Component())

	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentLedger, Output: &buf}).With(FieldSession, "s1"))

	sl.LogTransaction(context.Background(), OpAdd, 30, "2025-03-01", "Expense", "Rent", "100")
	assert.Contains(t, buf.String(), "operation=add")
	assert.Contains(t, buf.String(), "category=Rent")
	assert.Equal(t, 1, strings.Count(buf.String(), "session="), buf.String())

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("bad"), OpDelete, nil)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=bad")
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentHTTP, Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/export.csv?start=2025-01-01", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusOK, 3, "10.0.0.1")
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "path=/export.csv")
	assert.Contains(t, buf.String(), "client_ip=10.0.0.1")

	buf.Reset()
	sl.LogHTTPEnd(context.Background(), r, http.StatusUnprocessableEntity, 1, "")
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	sl.LogHTTPEnd(context.Background(), r, http.StatusBadGateway, 1, "")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestFieldsWithRange(t *testing.T) {
	f := NewFields().WithRange("2025-01-01", "2025-01-31")
	assert.Equal(t, "2025-01-01", f[FieldRangeStart])
	assert.Equal(t, "2025-01-31", f[FieldRangeEnd])
}
