package storage

import (
	"context"
	"encoding/json"
	"time"

	"budgetbook/internal/core"
)

// Document is one persisted record: routing columns plus the JSON body.
type Document struct {
	ID        string
	Kind      core.Kind
	OwnerID   string
	CreatedAt time.Time
	Body      json.RawMessage
}

// DocumentStore is the port every backend implements. Insert must be
// all-or-nothing: a failed insert leaves no visible document behind.
type DocumentStore interface {
	Insert(ctx context.Context, doc Document) error
	FindByOwner(ctx context.Context, kind core.Kind, ownerID string) ([]Document, error)
	Ping(ctx context.Context) error
	Close() error
}
