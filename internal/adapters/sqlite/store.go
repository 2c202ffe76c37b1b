package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fermata-io/purgatory/pkg/wire"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements ports.Backend using SQLite. The whole ledger snapshot
// lives in one row; SQLite only contributes durability and transactional
// replacement, not per-token queries.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS ledger (
	slot       INTEGER PRIMARY KEY CHECK (slot = 1),
	doc        BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// New opens (or creates) the database at the given DSN and ensures the
// snapshot table exists. Use ":memory:" for an ephemeral store.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}

	return &Store{db: db}, nil
}

// Save replaces the snapshot row transactionally.
func (s *Store) Save(ctx context.Context, doc *wire.Document) error {
	data, err := wire.Encode(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger (slot, doc, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger to sqlite: %w", err)
	}
	return nil
}

// Load reads and decodes the snapshot row. A missing row is an empty
// default document.
func (s *Store) Load(ctx context.Context) (*wire.Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM ledger WHERE slot = 1`).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wire.NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to load ledger from sqlite: %w", err)
	}

	return wire.Decode(data)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
