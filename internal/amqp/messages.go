package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budgetbook/internal/core"
)

// RecordCreatedMessage announces a freshly persisted record. Record carries
// the record exactly as the API returned it to the client.
type RecordCreatedMessage struct {
	Kind      core.Kind       `json:"kind"`
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	Record    json.RawMessage `json:"record"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRecordCreatedMessage builds the event for a stored record.
func NewRecordCreatedMessage[T core.Record[T]](rec T) (*RecordCreatedMessage, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal %s record: %w", rec.Kind(), err)
	}
	return &RecordCreatedMessage{
		Kind:      rec.Kind(),
		ID:        rec.Identity(),
		OwnerID:   rec.Owner(),
		Record:    body,
		Timestamp: time.Now().UTC(),
	}, nil
}

// ToJSON converts the message to JSON bytes
func (m *RecordCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordCreatedMessageFromJSON decodes a message and rejects ones that cannot
// be routed to a record kind.
func RecordCreatedMessageFromJSON(data []byte) (*RecordCreatedMessage, error) {
	var msg RecordCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.IsValid() {
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message has no record id")
	}
	if len(msg.Record) == 0 {
		return nil, fmt.Errorf("message has no record body")
	}
	return &msg, nil
}
