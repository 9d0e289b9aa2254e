package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

type fakeWriter struct {
	mu     sync.Mutex
	sheets []export.Sheet
	err    error
}

func (f *fakeWriter) Write(ctx context.Context, baseName string, sheet export.Sheet) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sheets = append(f.sheets, sheet)
	return "http://example.com/exports/" + baseName, nil
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sheets)
}

func testEvent(id int64) *amqp.RecordEvent {
	return amqp.NewRecordEvent(amqp.KindExpense, amqp.ActionCreated, id, 1, "rent", 800, "EUR")
}

func TestAuditWorkerBuffersUntilBatchFull(t *testing.T) {
	writer := &fakeWriter{}
	w := NewAuditWorker(writer, 3, log.New(log.DefaultConfig()))
	ctx := context.Background()

	for i := int64(1); i <= 2; i++ {
		if err := w.HandleEvent(ctx, testEvent(i)); err != nil {
			t.Fatalf("HandleEvent(%d) error = %v", i, err)
		}
	}
	if writer.count() != 0 {
		t.Errorf("writer called %d times before batch full, want 0", writer.count())
	}
	if w.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", w.Pending())
	}

	if err := w.HandleEvent(ctx, testEvent(3)); err != nil {
		t.Fatalf("HandleEvent(3) error = %v", err)
	}
	if writer.count() != 1 {
		t.Errorf("writer called %d times after batch full, want 1", writer.count())
	}
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d after flush, want 0", w.Pending())
	}

	writer.mu.Lock()
	sheet := writer.sheets[0]
	writer.mu.Unlock()
	if len(sheet.Rows) != 3 {
		t.Errorf("flushed sheet has %d rows, want 3", len(sheet.Rows))
	}
	if sheet.Name != "Audit" {
		t.Errorf("sheet name = %q, want Audit", sheet.Name)
	}
}

func TestAuditWorkerFlushEmptyIsNoop(t *testing.T) {
	writer := &fakeWriter{}
	w := NewAuditWorker(writer, 10, log.New(log.DefaultConfig()))

	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if writer.count() != 0 {
		t.Errorf("writer called %d times for empty flush, want 0", writer.count())
	}
}

func TestAuditWorkerRequeuesOnWriteFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("sheets unavailable")}
	w := NewAuditWorker(writer, 10, log.New(log.DefaultConfig()))
	ctx := context.Background()

	if err := w.HandleEvent(ctx, testEvent(1)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if err := w.Flush(ctx); err == nil {
		t.Fatal("Flush() error = nil, want error")
	}
	if w.Pending() != 1 {
		t.Errorf("Pending() = %d after failed flush, want 1", w.Pending())
	}

	// Writer recovers; retry drains the buffer.
	writer.mu.Lock()
	writer.err = nil
	writer.mu.Unlock()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush() after recovery error = %v", err)
	}
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d after retry, want 0", w.Pending())
	}
}
