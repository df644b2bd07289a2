package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
)

const (
	opCreate = "create"
	opList   = "list"
)

// Repository persists and queries one record kind over a DocumentStore.
type Repository[T core.Record[T]] struct {
	store DocumentStore
	kind  core.Kind
	now   func() time.Time
	newID func() string
}

type repoOptions struct {
	now   func() time.Time
	newID func() string
}

// Option customises a Repository.
type Option func(*repoOptions)

// WithClock replaces the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *repoOptions) { o.now = now }
}

// WithIDGenerator replaces the uuid id source.
func WithIDGenerator(newID func() string) Option {
	return func(o *repoOptions) { o.newID = newID }
}

func NewRepository[T core.Record[T]](store DocumentStore, opts ...Option) *Repository[T] {
	o := repoOptions{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	var zero T
	return &Repository[T]{
		store: store,
		kind:  zero.Kind(),
		now:   o.now,
		newID: o.newID,
	}
}

func (r *Repository[T]) Kind() core.Kind {
	return r.kind
}

// Create assigns a fresh id and creation time and writes rec as a single
// document. On failure nothing is persisted and a *core.StoreError is returned.
func (r *Repository[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T

	at := r.now().UTC()
	rec = rec.Stamped(r.newID(), at)
	body, err := json.Marshal(rec)
	if err != nil {
		return zero, r.storeErr(opCreate, fmt.Errorf("encode document: %w", err))
	}

	doc := Document{
		ID:        rec.Identity(),
		Kind:      r.kind,
		OwnerID:   rec.Owner(),
		CreatedAt: at,
		Body:      body,
	}
	if err := r.store.Insert(ctx, doc); err != nil {
		return zero, r.storeErr(opCreate, err)
	}

	slog.DebugContext(ctx, "Record stored",
		"kind", r.kind,
		"id", doc.ID,
		"owner_id", doc.OwnerID)

	return rec, nil
}

// ListByOwner returns every record of this kind owned by ownerID, in store
// order. No match yields an empty, non-nil slice.
func (r *Repository[T]) ListByOwner(ctx context.Context, ownerID string) ([]T, error) {
	docs, err := r.store.FindByOwner(ctx, r.kind, ownerID)
	if err != nil {
		return nil, r.storeErr(opList, err)
	}

	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var rec T
		if err := json.Unmarshal(d.Body, &rec); err != nil {
			return nil, r.storeErr(opList, fmt.Errorf("decode document %s: %w", d.ID, err))
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Repository[T]) storeErr(op string, err error) error {
	return &core.StoreError{Op: op, Kind: r.kind, Err: err}
}
