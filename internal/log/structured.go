package log

import "context"

// StructuredLogger groups the recurring log shapes of the API so handlers
// emit consistent fields without repeating them.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogRecordChange logs a create, update or delete of an expense or income.
func (sl *StructuredLogger) LogRecordChange(ctx context.Context, op, kind string, id, userID int64, title string, amount float64, currency string) {
	fields := NewFields().
		WithRecord(kind, id, title, amount, currency).
		WithUser(userID).
		WithOperation(op)

	sl.logger.WithComponent(kind).InfoContext(ctx, "record "+op, fields.ToSlice()...)
}

// LogError logs an error with structured context.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, allFields.ToSlice()...)
}
