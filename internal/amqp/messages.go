package amqp

import (
	"encoding/json"
	"time"
)

// Record event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Record kinds.
const (
	KindExpense = "expense"
	KindIncome  = "income"
)

// RecordEvent announces a change to an expense or income. Consumers fetch the
// full record from the database when they need more than these fields.
type RecordEvent struct {
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event stamped with the current time.
func NewRecordEvent(kind, action string, id, userID int64, title string, amount float64, currency string) *RecordEvent {
	return &RecordEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Title:     title,
		Amount:    amount,
		Currency:  currency,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON creates an event from JSON bytes
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var event RecordEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
