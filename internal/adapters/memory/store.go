package memory

import (
	"context"
	"sync"

	"github.com/fermata-io/purgatory/pkg/wire"
)

// Store implements ports.Backend in memory. Intended for tests and for
// embedding the store without durability.
type Store struct {
	mu  sync.Mutex
	doc *wire.Document
}

// New creates an empty in-memory backend.
func New() *Store {
	return &Store{}
}

// Load returns a deep copy of the last saved document, or an empty default
// if nothing was saved yet.
func (s *Store) Load(ctx context.Context) (*wire.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return wire.NewDocument(), nil
	}
	return s.doc.Clone(), nil
}

// Save stores a deep copy of the document, so later mutations of the
// caller's ledger do not leak into the snapshot.
func (s *Store) Save(ctx context.Context, doc *wire.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc.Clone()
	return nil
}
