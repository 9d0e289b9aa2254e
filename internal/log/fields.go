package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldRecordID   = "record_id"
	FieldRecordKind = "record_kind"
	FieldTitle      = "title"
	FieldAmount     = "amount"
	FieldCurrency   = "currency"
	FieldExportURL  = "export_url"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentAMQP   = "amqp"
	ComponentWorker = "worker"
	ComponentExport = "export"
)

// Operations defines standard operation names
const (
	OpCreate = "create"
	OpDelete = "delete"
	OpExport = "export"
	OpSync   = "sync"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithUser adds the acting user's id
func (f LogFields) WithUser(userID int64) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithRecord adds record-related fields
func (f LogFields) WithRecord(kind string, id int64, title string, amount float64, currency string) LogFields {
	f[FieldRecordKind] = kind
	f[FieldRecordID] = id
	f[FieldTitle] = title
	f[FieldAmount] = amount
	f[FieldCurrency] = currency
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
