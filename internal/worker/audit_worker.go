// Package worker consumes record events and writes periodic audit exports.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

// AuditWorker buffers record events from AMQP and flushes them to a
// spreadsheet in batches. A flush happens when the buffer reaches the batch
// size or when the periodic interval fires, whichever comes first.
type AuditWorker struct {
	exporter  export.Writer
	logger    *log.Logger
	batchSize int

	mu     sync.Mutex
	buffer []*amqp.RecordEvent
}

func NewAuditWorker(exporter export.Writer, batchSize int, logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		exporter:  exporter,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
	}
}

// HandleEvent buffers one event, flushing if the batch is full.
func (w *AuditWorker) HandleEvent(ctx context.Context, event *amqp.RecordEvent) error {
	w.mu.Lock()
	w.buffer = append(w.buffer, event)
	full := len(w.buffer) >= w.batchSize
	w.mu.Unlock()

	if full {
		return w.Flush(ctx)
	}
	return nil
}

// Flush writes all buffered events as one audit sheet. On write failure the
// events are put back so the next flush retries them.
func (w *AuditWorker) Flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.buffer
	w.buffer = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(batch))
	for _, event := range batch {
		rows = append(rows, []any{
			event.Timestamp.UTC().Format(time.RFC3339),
			event.Kind,
			event.Action,
			event.ID,
			event.UserID,
			event.Title,
			event.Amount,
			event.Currency,
		})
	}

	url, err := w.exporter.Write(ctx, "audit-log", export.Sheet{
		Name:   "Audit",
		Header: []string{"Timestamp", "Kind", "Action", "ID", "User ID", "Title", "Amount", "Currency"},
		Rows:   rows,
	})
	if err != nil {
		w.mu.Lock()
		w.buffer = append(batch, w.buffer...)
		w.mu.Unlock()
		return fmt.Errorf("flush audit batch: %w", err)
	}

	w.logger.InfoContext(ctx, "Flushed audit batch",
		"events", len(batch),
		log.FieldExportURL, url)

	return nil
}

// Run flushes the buffer on every tick until the context is cancelled. A
// final flush runs on shutdown so buffered events are not lost.
func (w *AuditWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := w.Flush(flushCtx); err != nil {
				w.logger.Error("Final flush failed", log.FieldError, err.Error())
			}
			return ctx.Err()
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic flush failed", log.FieldError, err.Error())
			}
		}
	}
}

// Pending returns the number of buffered events.
func (w *AuditWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buffer)
}
