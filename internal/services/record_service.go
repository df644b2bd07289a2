package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cache"
	"budgetbook/internal/core"
)

// Publisher announces stored records to downstream consumers.
type Publisher interface {
	PublishRecordCreated(ctx context.Context, msg *amqp.RecordCreatedMessage) error
}

// RecordStore is the persistence the service needs for one record kind.
// *storage.Repository satisfies it.
type RecordStore[T core.Record[T]] interface {
	Create(ctx context.Context, rec T) (T, error)
	ListByOwner(ctx context.Context, ownerID string) ([]T, error)
	Kind() core.Kind
}

// RecordService orchestrates one record kind across storage, the owner list
// cache and AMQP.
type RecordService[T core.Record[T]] struct {
	store     RecordStore[T]
	publisher Publisher
	lists     *cache.LRUCache[[]T]
	created   atomic.Int64
}

// NewRecordService wires a service. publisher and lists may be nil, which
// disables event publishing and list caching respectively.
func NewRecordService[T core.Record[T]](store RecordStore[T], publisher Publisher, lists *cache.LRUCache[[]T]) *RecordService[T] {
	return &RecordService[T]{
		store:     store,
		publisher: publisher,
		lists:     lists,
	}
}

func (s *RecordService[T]) Kind() core.Kind {
	return s.store.Kind()
}

// Create persists rec and then publishes a record.created event. Publishing
// problems are logged and never fail the call.
func (s *RecordService[T]) Create(ctx context.Context, rec T) (T, error) {
	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return created, err
	}

	s.created.Add(1)
	if s.lists != nil {
		s.lists.Delete(created.Owner())
	}

	if err := s.publish(ctx, created); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record created message",
			"kind", created.Kind(),
			"record_id", created.Identity(),
			"error", err)
	}

	return created, nil
}

// ListByOwner returns the owner's records, from cache when fresh. Callers
// receive their own slice.
func (s *RecordService[T]) ListByOwner(ctx context.Context, ownerID string) ([]T, error) {
	if s.lists == nil {
		return s.store.ListByOwner(ctx, ownerID)
	}

	if cached, ok := s.lists.Get(ownerID); ok {
		slog.DebugContext(ctx, "List served from cache",
			"kind", s.Kind(),
			"owner_id", ownerID,
			"count", len(cached))
		return slices.Clone(cached), nil
	}

	gen := s.lists.Generation()
	recs, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.lists.SetIfGeneration(ownerID, slices.Clone(recs), gen)
	return recs, nil
}

// CreatedCount is the number of records this service has stored since start.
func (s *RecordService[T]) CreatedCount() int64 {
	return s.created.Load()
}

// CachedLists is the number of owner lists currently held in the cache.
func (s *RecordService[T]) CachedLists() int {
	if s.lists == nil {
		return 0
	}
	return s.lists.Size()
}

func (s *RecordService[T]) publish(ctx context.Context, rec T) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping record created message",
			"kind", rec.Kind())
		return nil
	}

	msg, err := amqp.NewRecordCreatedMessage(rec)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	// the record is already committed; a client disconnect must not drop the event
	return s.publisher.PublishRecordCreated(context.WithoutCancel(ctx), msg)
}
