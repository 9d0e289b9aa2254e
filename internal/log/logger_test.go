package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Level:     slog.LevelDebug,
		Component: ComponentApp,
		Handler:   slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLoggerEmitsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Info("hello", "key", "value")

	entry := decodeLine(t, &buf)
	if entry[FieldComponent] != ComponentApp {
		t.Errorf("component = %v, want %s", entry[FieldComponent], ComponentApp)
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want value", entry["key"])
	}
}

func TestWithComponentRescopes(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WithComponent(ComponentHTTP).Info("scoped")

	entry := decodeLine(t, &buf)
	if entry[FieldComponent] != ComponentHTTP {
		t.Errorf("component = %v, want %s", entry[FieldComponent], ComponentHTTP)
	}
	if n := strings.Count(buf.String(), `"`+FieldComponent+`"`); n != 1 {
		t.Errorf("component key emitted %d times, want 1", n)
	}
}

func TestLogFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithRecord("expense", 7, "groceries", 12.5, "EUR").
		WithUser(3).
		WithOperation(OpCreate).
		WithError(errors.New("boom"))

	if fields[FieldRecordKind] != "expense" || fields[FieldRecordID] != int64(7) {
		t.Errorf("record fields = %v", fields)
	}
	if fields[FieldUserID] != int64(3) {
		t.Errorf("user field = %v", fields[FieldUserID])
	}
	if fields[FieldError] != "boom" {
		t.Errorf("error field = %v", fields[FieldError])
	}

	slice := fields.ToSlice()
	if len(slice) != len(fields)*2 {
		t.Errorf("ToSlice length = %d, want %d", len(slice), len(fields)*2)
	}
}

func TestWithErrorNilIsNoop(t *testing.T) {
	fields := NewFields().WithError(nil)
	if _, present := fields[FieldError]; present {
		t.Error("nil error should not add a field")
	}
}

func TestStructuredLoggerRecordChange(t *testing.T) {
	var buf bytes.Buffer
	structured := NewStructuredLogger(newBufferLogger(&buf))

	structured.LogRecordChange(context.Background(), "created", "expense", 7, 3, "groceries", 12.5, "EUR")

	entry := decodeLine(t, &buf)
	if entry["msg"] != "record created" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry[FieldComponent] != "expense" {
		t.Errorf("component = %v, want expense", entry[FieldComponent])
	}
	if entry[FieldRecordID] != 7.0 || entry[FieldUserID] != 3.0 {
		t.Errorf("ids = %v/%v", entry[FieldRecordID], entry[FieldUserID])
	}
	if entry[FieldOperation] != "created" {
		t.Errorf("operation = %v", entry[FieldOperation])
	}
}

func TestStructuredLoggerError(t *testing.T) {
	var buf bytes.Buffer
	structured := NewStructuredLogger(newBufferLogger(&buf))

	structured.LogError(context.Background(), "publish failed", errors.New("broker down"),
		ComponentAMQP, OpSync, NewFields().WithUser(3))

	entry := decodeLine(t, &buf)
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry[FieldComponent] != ComponentAMQP {
		t.Errorf("component = %v, want %s", entry[FieldComponent], ComponentAMQP)
	}
	if entry[FieldError] != "broker down" {
		t.Errorf("error = %v", entry[FieldError])
	}
}
