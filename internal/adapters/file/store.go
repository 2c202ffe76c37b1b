package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fermata-io/purgatory/pkg/wire"
)

// Store implements ports.Backend using a single JSON snapshot file on the
// local filesystem.
type Store struct {
	Path string
}

// New creates a new Store writing to the given file path.
// If path is empty, it defaults to ".purgatory/ledger.json".
func New(path string) *Store {
	if path == "" {
		path = filepath.Join(".purgatory", "ledger.json")
	}
	return &Store{Path: path}
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it
// to the destination, so a crash mid-write never leaves a partial ledger.
func (s *Store) Save(ctx context.Context, doc *wire.Document) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure ledger directory: %w", err)
	}

	data, err := wire.Encode(doc)
	if err != nil {
		return err
	}

	// Same directory as the destination, so the rename stays on one
	// filesystem (required for atomicity).
	tmpFile, err := os.CreateTemp(dir, "tmp-ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if the destination exists, so remove it
	// first. The delete+rename window is acceptable compared to a partial
	// write; POSIX renames replace in place.
	if _, err := os.Stat(s.Path); err == nil {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove existing ledger for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}

	return nil
}

// Load reads the snapshot file. A missing file is an empty default
// document; an unreadable or undecodable file is an error.
func (s *Store) Load(ctx context.Context) (*wire.Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return wire.NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}

	return wire.Decode(data)
}
