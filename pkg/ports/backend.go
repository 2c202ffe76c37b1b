package ports

import (
	"context"

	"github.com/fermata-io/purgatory/pkg/wire"
)

// Backend defines the persistence contract for the suspension ledger.
// It is a single opaque slot: always whole-document read/write, never
// partial-key access.
type Backend interface {
	// Load retrieves the persisted document. If nothing has been saved
	// yet, it returns an empty default document, not an error.
	// A document that exists but cannot be decoded is reported as
	// domain.ErrCorruptDocument.
	Load(ctx context.Context) (*wire.Document, error)

	// Save persists the document, replacing any previous content.
	Save(ctx context.Context, doc *wire.Document) error
}
