package purgatory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fermata-io/purgatory/internal/logging"
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/fermata-io/purgatory/pkg/ports"
	"github.com/fermata-io/purgatory/pkg/wire"
)

// Store is the ledger and lifecycle authority for suspension tokens.
// It holds every known token in memory, mutates them only through
// well-defined transitions, and synchronizes a full-ledger snapshot to
// the attached backend on every mutation.
//
// The store performs no internal locking: calls against one instance are
// assumed to be serialized by the host (a single event loop or an external
// mutex). Two calls racing on the same ID resolve as last-write-wins.
type Store struct {
	ledger  map[string]*domain.Token
	backend ports.Backend
	sink    domain.EventSink
	logger  *slog.Logger
	now     func() time.Time
}

// Resolution is the handle returned by Resolve. It carries the resolved
// token (including its opaque frozen state) and the resolution value, which
// together are sufficient to resume the originating computation.
type Resolution struct {
	Token *domain.Token
	Value any
}

// FrozenState returns the opaque resumable state the caller froze at
// suspension time.
func (r *Resolution) FrozenState() []byte {
	return r.Token.FrozenState
}

// Option defines a functional option for configuring the Store.
type Option func(*Store)

// WithBackend attaches a persistence backend at construction.
func WithBackend(backend ports.Backend) Option {
	return func(s *Store) { s.backend = backend }
}

// WithSink registers a lifecycle event sink. Default is a no-op.
func WithSink(sink domain.EventSink) Option {
	return func(s *Store) { s.sink = sink }
}

// WithLogger sets a custom structured logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store. Attach a backend (here or via Attach) and
// call Recover before normal operation when resuming after a restart.
func New(opts ...Option) *Store {
	s := &Store{
		ledger: make(map[string]*domain.Token),
		sink:   domain.NopSink,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach installs a backend for subsequent operations. It performs no I/O
// itself; call Recover to populate the ledger from the backend.
func (s *Store) Attach(backend ports.Backend) {
	s.backend = backend
}

// Eject hands a newly created token to the store. The token is inserted
// into the ledger (last-write-wins by ID), the whole ledger is persisted,
// and an "ejected" event is emitted. The in-memory insert always succeeds;
// a backend write failure is propagated to the caller.
func (s *Store) Eject(ctx context.Context, token *domain.Token) error {
	if token == nil || token.ID == "" {
		return fmt.Errorf("token must have an id")
	}

	s.ledger[token.ID] = token
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("failed to persist after eject of %q: %w", token.ID, err)
	}

	s.emit(domain.EventEjected, token.ID, nil)
	s.logger.Debug("token ejected",
		"token_id", token.ID,
		"reason", token.Reason,
		"severity", token.Severity,
	)
	return nil
}

// Resolve marks a pending token as resolved with the given value and
// returns a handle for resuming the originating computation.
// It returns domain.ErrTokenNotFound for an unknown ID and
// domain.ErrAlreadyTerminal for a token that already reached a terminal
// status (terminal timestamps are permanent; there is no re-resolution).
func (s *Store) Resolve(ctx context.Context, id string, value any) (*Resolution, error) {
	token, err := s.pending(id)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", id, err)
	}

	now := s.now().UTC()
	token.ResolvedAt = &now
	if err := s.persist(ctx); err != nil {
		return nil, fmt.Errorf("failed to persist after resolve of %q: %w", id, err)
	}

	s.emit(domain.EventResolved, id, value)
	s.logger.Debug("token resolved", "token_id", id)
	return &Resolution{Token: token, Value: value}, nil
}

// Cancel marks a pending token as cancelled. Symmetric to Resolve but with
// no associated value. Same not-found and already-terminal semantics.
func (s *Store) Cancel(ctx context.Context, id string) (*domain.Token, error) {
	token, err := s.pending(id)
	if err != nil {
		return nil, fmt.Errorf("cancel %q: %w", id, err)
	}

	now := s.now().UTC()
	token.CancelledAt = &now
	if err := s.persist(ctx); err != nil {
		return nil, fmt.Errorf("failed to persist after cancel of %q: %w", id, err)
	}

	s.emit(domain.EventCancelled, id, nil)
	s.logger.Debug("token cancelled", "token_id", id)
	return token, nil
}

// Sweep evaluates every pending token's deadline and voids those that
// expired. The ledger is persisted once for the whole batch, then one
// "voided" event is emitted per newly-voided token. Persistence
// happens-before event emission, so a crash between the two can
// under-notify but never announces a transition that was not durable.
//
// If the persistence write fails, the in-memory transitions have already
// happened; the voided tokens are returned alongside the error so the
// caller knows the write did not complete.
func (s *Store) Sweep(ctx context.Context) ([]*domain.Token, error) {
	now := s.now()

	var voided []*domain.Token
	for _, token := range s.ledger {
		if token.CheckAndVoidIfExpired(now) {
			voided = append(voided, token)
		}
	}
	if len(voided) == 0 {
		return nil, nil
	}

	if err := s.persist(ctx); err != nil {
		return voided, fmt.Errorf("failed to persist after sweep: %w", err)
	}

	for _, token := range voided {
		s.emit(domain.EventVoided, token.ID, nil)
	}
	s.logger.Info("sweep voided expired tokens", "count", len(voided))
	return voided, nil
}

// Recover reconstructs the ledger from the attached backend; cold-start
// semantics, intended for process startup. The in-memory ledger is fully
// replaced by the persisted document (a replace, not a merge), deadlines
// that elapsed while offline are reconciled by an immediate sweep, and
// the tokens still pending are returned.
//
// With no backend attached it returns an empty list and leaves the ledger
// untouched. A corrupt document is a hard failure
// (domain.ErrCorruptDocument), never a silent empty start.
func (s *Store) Recover(ctx context.Context) ([]*domain.Token, error) {
	if s.backend == nil {
		return nil, nil
	}

	doc, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover ledger: %w", err)
	}

	s.ledger = doc.Tokens
	if _, err := s.Sweep(ctx); err != nil {
		return nil, err
	}

	pending := s.ListPending()
	s.logger.Info("ledger recovered",
		"total", len(s.ledger),
		"pending", len(pending),
	)
	return pending, nil
}

// ListPending returns every token currently in pending status, ordered by
// creation time. Pure in-memory read, no I/O.
func (s *Store) ListPending() []*domain.Token {
	var out []*domain.Token
	for _, token := range s.ledger {
		if token.IsPending() {
			out = append(out, token)
		}
	}
	sortTokens(out)
	return out
}

// ListAll returns every ledger token regardless of status, ordered by
// creation time. Terminal tokens are never removed, only marked.
func (s *Store) ListAll() []*domain.Token {
	out := make([]*domain.Token, 0, len(s.ledger))
	for _, token := range s.ledger {
		out = append(out, token)
	}
	sortTokens(out)
	return out
}

// Get returns the token with the given ID, or domain.ErrTokenNotFound.
func (s *Store) Get(id string) (*domain.Token, error) {
	token, ok := s.ledger[id]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", id, domain.ErrTokenNotFound)
	}
	return token, nil
}

// pending looks up a token and verifies it has not reached a terminal
// status.
func (s *Store) pending(id string) (*domain.Token, error) {
	token, ok := s.ledger[id]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	if token.IsTerminal() {
		return nil, domain.ErrAlreadyTerminal
	}
	return token, nil
}

// persist writes the whole ledger to the backend. Writing the full
// snapshot on every mutation trades throughput for simplicity, which fits
// a human-scale number of pending decisions.
func (s *Store) persist(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Save(ctx, &wire.Document{
		Version: wire.Version,
		Tokens:  s.ledger,
	})
}

func (s *Store) emit(typ domain.EventType, tokenID string, value any) {
	s.sink(domain.Event{
		Type:      typ,
		TokenID:   tokenID,
		Timestamp: s.now().UTC(),
		Value:     value,
	})
}

func sortTokens(tokens []*domain.Token) {
	sort.Slice(tokens, func(i, j int) bool {
		if !tokens[i].CreatedAt.Equal(tokens[j].CreatedAt) {
			return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
		}
		return tokens[i].ID < tokens[j].ID
	})
}
