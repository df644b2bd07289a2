package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// Store keeps documents in process memory. Documents come back in insertion
// order; nothing survives a restart.
type Store struct {
	mu   sync.Mutex
	docs []storage.Document
	ids  map[string]struct{}
}

var _ storage.DocumentStore = (*Store)(nil)

func New() *Store {
	return &Store{ids: map[string]struct{}{}}
}

// Insert rejects a duplicate id the way a primary key would.
func (s *Store) Insert(_ context.Context, doc storage.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[doc.ID]; ok {
		return fmt.Errorf("duplicate document id %q", doc.ID)
	}
	doc.Body = append([]byte(nil), doc.Body...)
	s.docs = append(s.docs, doc)
	s.ids[doc.ID] = struct{}{}
	return nil
}

func (s *Store) FindByOwner(_ context.Context, kind core.Kind, ownerID string) ([]storage.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.Document
	for _, d := range s.docs {
		if d.Kind == kind && d.OwnerID == ownerID {
			d.Body = append([]byte(nil), d.Body...)
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored documents of every kind.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
