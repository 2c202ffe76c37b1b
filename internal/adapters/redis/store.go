package redis

import (
	"context"
	"fmt"

	"github.com/fermata-io/purgatory/pkg/wire"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.Backend using Redis. The entire ledger snapshot
// lives under a single key; there is no per-token access.
type Store struct {
	client *backend.Client
	key    string
}

type Option func(*Store)

// WithKey overrides the Redis key holding the ledger snapshot.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		key:    "purgatory:ledger",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Save persists the encoded snapshot. No TTL: a ledger of pending human
// decisions must never expire on its own.
func (s *Store) Save(ctx context.Context, doc *wire.Document) error {
	data, err := wire.Encode(doc)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save ledger to redis: %w", err)
	}
	return nil
}

// Load retrieves and decodes the snapshot. A missing key is an empty
// default document.
func (s *Store) Load(ctx context.Context) (*wire.Document, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == backend.Nil {
			return wire.NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to load ledger from redis: %w", err)
	}

	return wire.Decode([]byte(val))
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
