package wire

import (
	"encoding/json"
	"fmt"

	"github.com/fermata-io/purgatory/pkg/domain"
)

// Version is the current schema version of the persisted document.
const Version = 1

// Document is the wire form of the entire ledger: every token ever ejected,
// keyed by ID, plus a schema version marker. It is always read and written
// as a single atomic unit.
type Document struct {
	Version int                      `json:"version"`
	Tokens  map[string]*domain.Token `json:"tokens"`

	// Sealed carries the base64 ciphertext of an encrypted document.
	// Set only by the encryption middleware; a sealed document has an
	// empty Tokens map at rest.
	Sealed string `json:"sealed,omitempty"`
}

// NewDocument returns an empty document at the current schema version.
// Backends return this when their slot does not exist yet.
func NewDocument() *Document {
	return &Document{
		Version: Version,
		Tokens:  make(map[string]*domain.Token),
	}
}

// Encode serializes the document as indented JSON.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// Decode parses a persisted document. Input produced by an older schema
// version must not fail outright: an absent version is treated as version 1
// and absent optional fields keep their zero values. Unparseable input is
// reported as domain.ErrCorruptDocument.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}
	doc.fillDefaults()
	return &doc, nil
}

// Clone returns a deep copy of the document, so callers can hold a snapshot
// that does not alias the ledger.
func (d *Document) Clone() *Document {
	out := &Document{
		Version: d.Version,
		Tokens:  make(map[string]*domain.Token, len(d.Tokens)),
		Sealed:  d.Sealed,
	}
	for id, tok := range d.Tokens {
		out.Tokens[id] = tok.Clone()
	}
	return out
}

func (d *Document) fillDefaults() {
	if d.Version == 0 {
		d.Version = Version
	}
	if d.Tokens == nil {
		d.Tokens = make(map[string]*domain.Token)
	}
	for id, tok := range d.Tokens {
		if tok == nil {
			delete(d.Tokens, id)
			continue
		}
		// The map key is authoritative for identity.
		if tok.ID == "" {
			tok.ID = id
		}
	}
}
