package amqp

import (
	"encoding/json"
	"testing"
	"time"

	"budgetbook/internal/core"
)

func TestNewRecordCreatedMessage(t *testing.T) {
	category := "food"
	rec := core.Expense{
		ID:         "e-1",
		OwnerID:    "u1",
		Title:      "Coffee",
		Amount:     3.5,
		Category:   &category,
		RecordedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	msg, err := NewRecordCreatedMessage(rec)
	if err != nil {
		t.Fatalf("NewRecordCreatedMessage() error = %v", err)
	}
	if msg.Kind != core.KindExpense || msg.ID != "e-1" || msg.OwnerID != "u1" {
		t.Errorf("unexpected envelope: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	var back core.Expense
	if err := json.Unmarshal(msg.Record, &back); err != nil {
		t.Fatalf("record body is not an expense: %v", err)
	}
	if back.Title != "Coffee" || back.Category == nil || *back.Category != "food" {
		t.Errorf("record body = %+v", back)
	}
}

func TestRecordCreatedMessageFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"kind":"goal","id":"g1","ownerId":"u1","record":{"id":"g1"},"timestamp":"2024-01-01T00:00:00Z"}`, false},
		{"not json", `{"kind":`, true},
		{"unknown kind", `{"kind":"loan","id":"x","record":{}}`, true},
		{"missing id", `{"kind":"income","record":{}}`, true},
		{"missing record", `{"kind":"income","id":"i1"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := RecordCreatedMessageFromJSON([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", msg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Kind != core.KindGoal || msg.ID != "g1" {
				t.Errorf("decoded %+v", msg)
			}
		})
	}
}
