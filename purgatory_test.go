package purgatory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fermata-io/purgatory"
	"github.com/fermata-io/purgatory/internal/adapters/memory"
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/fermata-io/purgatory/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects lifecycle events for assertions.
type recorder struct {
	events []domain.Event
}

func (r *recorder) sink(e domain.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) ofType(typ domain.EventType) []domain.Event {
	var out []domain.Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// countingBackend wraps the memory backend and counts Save calls.
type countingBackend struct {
	*memory.Store
	saves int
}

func (b *countingBackend) Save(ctx context.Context, doc *wire.Document) error {
	b.saves++
	return b.Store.Save(ctx, doc)
}

// failingBackend returns fixed errors.
type failingBackend struct {
	loadErr error
	saveErr error
}

func (b *failingBackend) Load(ctx context.Context) (*wire.Document, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return wire.NewDocument(), nil
}

func (b *failingBackend) Save(ctx context.Context, doc *wire.Document) error {
	return b.saveErr
}

func pendingToken(id string, opts ...domain.TokenOption) *domain.Token {
	opts = append([]domain.TokenOption{domain.WithID(id)}, opts...)
	return domain.NewToken(domain.ReasonApprovalNeeded, "prompt for "+id, opts...)
}

func ids(tokens []*domain.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.ID)
	}
	return out
}

func TestEject(t *testing.T) {
	ctx := context.Background()

	t.Run("records the token and persists the ledger", func(t *testing.T) {
		backend := memory.New()
		rec := &recorder{}
		store := purgatory.New(purgatory.WithBackend(backend), purgatory.WithSink(rec.sink))

		tok := pendingToken("sem-eject001")
		require.NoError(t, store.Eject(ctx, tok))

		assert.Equal(t, []string{"sem-eject001"}, ids(store.ListPending()))

		doc, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.Contains(t, doc.Tokens, "sem-eject001")

		require.Len(t, rec.events, 1)
		assert.Equal(t, domain.EventEjected, rec.events[0].Type)
		assert.Equal(t, "sem-eject001", rec.events[0].TokenID)
	})

	t.Run("works without a backend", func(t *testing.T) {
		store := purgatory.New()
		require.NoError(t, store.Eject(ctx, pendingToken("sem-eject002")))
		assert.Len(t, store.ListAll(), 1)
	})

	t.Run("last write wins by id", func(t *testing.T) {
		store := purgatory.New()
		require.NoError(t, store.Eject(ctx, pendingToken("sem-eject003")))

		replacement := pendingToken("sem-eject003")
		replacement.Prompt = "replacement prompt"
		require.NoError(t, store.Eject(ctx, replacement))

		all := store.ListAll()
		require.Len(t, all, 1)
		assert.Equal(t, "replacement prompt", all[0].Prompt)
	})

	t.Run("rejects a token without an id", func(t *testing.T) {
		store := purgatory.New()
		assert.Error(t, store.Eject(ctx, &domain.Token{}))
		assert.Error(t, store.Eject(ctx, nil))
	})

	t.Run("backend write failure propagates", func(t *testing.T) {
		saveErr := errors.New("disk full")
		rec := &recorder{}
		store := purgatory.New(
			purgatory.WithBackend(&failingBackend{saveErr: saveErr}),
			purgatory.WithSink(rec.sink),
		)

		err := store.Eject(ctx, pendingToken("sem-eject004"))
		assert.ErrorIs(t, err, saveErr)
		// No event for a transition that was not durably persisted.
		assert.Empty(t, rec.events)
		// The in-memory insert itself succeeded.
		assert.Len(t, store.ListAll(), 1)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a handle carrying value and frozen state", func(t *testing.T) {
		rec := &recorder{}
		store := purgatory.New(purgatory.WithBackend(memory.New()), purgatory.WithSink(rec.sink))

		tok := pendingToken("sem-res00001", domain.WithFrozenState([]byte("frozen")))
		require.NoError(t, store.Eject(ctx, tok))

		res, err := store.Resolve(ctx, "sem-res00001", "approved")
		require.NoError(t, err)
		assert.Equal(t, "approved", res.Value)
		assert.Equal(t, []byte("frozen"), res.FrozenState())
		assert.True(t, res.Token.IsResolved())

		resolved := rec.ofType(domain.EventResolved)
		require.Len(t, resolved, 1)
		assert.Equal(t, "sem-res00001", resolved[0].TokenID)
		assert.Equal(t, "approved", resolved[0].Value)
	})

	t.Run("excludes the token from pending but not from all", func(t *testing.T) {
		store := purgatory.New(purgatory.WithBackend(memory.New()))
		require.NoError(t, store.Eject(ctx, pendingToken("sem-res00002")))
		require.NoError(t, store.Eject(ctx, pendingToken("sem-res00003")))

		_, err := store.Resolve(ctx, "sem-res00002", 42)
		require.NoError(t, err)

		assert.Equal(t, []string{"sem-res00003"}, ids(store.ListPending()))

		all := store.ListAll()
		require.Len(t, all, 2)
		got, err := store.Get("sem-res00002")
		require.NoError(t, err)
		assert.True(t, got.IsResolved())
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		store := purgatory.New()
		_, err := store.Resolve(ctx, "sem-missing0", nil)
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("terminal token is rejected, not re-resolved", func(t *testing.T) {
		store := purgatory.New(purgatory.WithBackend(memory.New()))
		require.NoError(t, store.Eject(ctx, pendingToken("sem-res00004")))

		first, err := store.Resolve(ctx, "sem-res00004", "v1")
		require.NoError(t, err)
		stamp := *first.Token.ResolvedAt

		_, err = store.Resolve(ctx, "sem-res00004", "v2")
		assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)

		_, err = store.Cancel(ctx, "sem-res00004")
		assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)

		// Permanence: the original timestamp never moves and no second
		// terminal timestamp appears.
		got, err := store.Get("sem-res00004")
		require.NoError(t, err)
		assert.Equal(t, stamp, *got.ResolvedAt)
		assert.Nil(t, got.CancelledAt)
		assert.Nil(t, got.VoidedAt)
	})

	t.Run("backend failure propagates without event", func(t *testing.T) {
		saveErr := errors.New("backend down")
		backend := &countingBackend{Store: memory.New()}
		rec := &recorder{}
		store := purgatory.New(purgatory.WithBackend(backend), purgatory.WithSink(rec.sink))
		require.NoError(t, store.Eject(ctx, pendingToken("sem-res00005")))

		store.Attach(&failingBackend{saveErr: saveErr})
		_, err := store.Resolve(ctx, "sem-res00005", nil)
		assert.ErrorIs(t, err, saveErr)
		assert.Empty(t, rec.ofType(domain.EventResolved))
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	store := purgatory.New(purgatory.WithBackend(memory.New()), purgatory.WithSink(rec.sink))

	require.NoError(t, store.Eject(ctx, pendingToken("sem-can00001")))

	tok, err := store.Cancel(ctx, "sem-can00001")
	require.NoError(t, err)
	assert.True(t, tok.IsCancelled())
	assert.Equal(t, domain.StatusCancelled, tok.Status())
	assert.Empty(t, store.ListPending())

	cancelled := rec.ofType(domain.EventCancelled)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "sem-can00001", cancelled[0].TokenID)
	assert.Nil(t, cancelled[0].Value)

	_, err = store.Cancel(ctx, "sem-unknown0")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("voids an expired token and fires one event", func(t *testing.T) {
		rec := &recorder{}
		store := purgatory.New(purgatory.WithBackend(memory.New()), purgatory.WithSink(rec.sink))

		expired := pendingToken("sem-swp00001",
			domain.WithDeadline(time.Now().Add(-time.Hour)))
		require.NoError(t, store.Eject(ctx, expired))

		voided, err := store.Sweep(ctx)
		require.NoError(t, err)
		require.Len(t, voided, 1)
		assert.Equal(t, "sem-swp00001", voided[0].ID)
		assert.True(t, voided[0].IsVoided())

		events := rec.ofType(domain.EventVoided)
		require.Len(t, events, 1, "voided event must fire exactly once")
		assert.Equal(t, "sem-swp00001", events[0].TokenID)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := purgatory.New(purgatory.WithBackend(memory.New()))
		require.NoError(t, store.Eject(ctx, pendingToken("sem-swp00002",
			domain.WithDeadline(time.Now().Add(-time.Minute)))))

		first, err := store.Sweep(ctx)
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := store.Sweep(ctx)
		require.NoError(t, err)
		assert.Empty(t, second, "second sweep with no intervening ejects voids nothing")
	})

	t.Run("ignores unexpired and deadline-free tokens", func(t *testing.T) {
		store := purgatory.New()
		require.NoError(t, store.Eject(ctx, pendingToken("sem-swp00003")))
		require.NoError(t, store.Eject(ctx, pendingToken("sem-swp00004",
			domain.WithDeadline(time.Now().Add(time.Hour)))))

		voided, err := store.Sweep(ctx)
		require.NoError(t, err)
		assert.Empty(t, voided)
		assert.Len(t, store.ListPending(), 2)
	})

	t.Run("persists once per batch and only when something voided", func(t *testing.T) {
		backend := &countingBackend{Store: memory.New()}
		store := purgatory.New(purgatory.WithBackend(backend))

		for _, id := range []string{"sem-swp00005", "sem-swp00006", "sem-swp00007"} {
			require.NoError(t, store.Eject(ctx, pendingToken(id,
				domain.WithDeadline(time.Now().Add(-time.Minute)))))
		}
		savesAfterEjects := backend.saves

		voided, err := store.Sweep(ctx)
		require.NoError(t, err)
		require.Len(t, voided, 3)
		assert.Equal(t, savesAfterEjects+1, backend.saves, "one write for the whole batch")

		_, err = store.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, savesAfterEjects+1, backend.saves, "an empty sweep does not write")
	})

	t.Run("write failure still reports the voided tokens", func(t *testing.T) {
		saveErr := errors.New("flaky disk")
		rec := &recorder{}
		store := purgatory.New(purgatory.WithSink(rec.sink))
		require.NoError(t, store.Eject(ctx, pendingToken("sem-swp00008",
			domain.WithDeadline(time.Now().Add(-time.Minute)))))

		store.Attach(&failingBackend{saveErr: saveErr})
		voided, err := store.Sweep(ctx)
		assert.ErrorIs(t, err, saveErr)
		require.Len(t, voided, 1, "in-memory transition already happened")
		assert.True(t, voided[0].IsVoided())
		assert.Empty(t, rec.ofType(domain.EventVoided), "no event for an unpersisted batch")
	})
}

func TestRecover(t *testing.T) {
	ctx := context.Background()

	t.Run("fidelity across restart", func(t *testing.T) {
		backend := memory.New()
		storeA := purgatory.New(purgatory.WithBackend(backend))

		t1 := pendingToken("sem-rec00001")
		t2 := pendingToken("sem-rec00002", domain.WithDeadline(time.Now().Add(time.Hour)))
		t3 := pendingToken("sem-rec00003", domain.WithDeadline(time.Now().Add(-time.Hour)))
		for _, tok := range []*domain.Token{t1, t2, t3} {
			require.NoError(t, storeA.Eject(ctx, tok))
		}

		// Fresh store, same backend: cold start.
		rec := &recorder{}
		storeB := purgatory.New(purgatory.WithBackend(backend), purgatory.WithSink(rec.sink))
		pending, err := storeB.Recover(ctx)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"sem-rec00001", "sem-rec00002"}, ids(pending))

		all := storeB.ListAll()
		require.Len(t, all, 3)
		got, err := storeB.Get("sem-rec00003")
		require.NoError(t, err)
		assert.True(t, got.IsVoided(), "the offline-expired token is voided by the recovery sweep")

		events := rec.ofType(domain.EventVoided)
		require.Len(t, events, 1)
		assert.Equal(t, "sem-rec00003", events[0].TokenID)
	})

	t.Run("mixed terminal statuses survive restart", func(t *testing.T) {
		backend := memory.New()
		storeA := purgatory.New(purgatory.WithBackend(backend))

		for _, id := range []string{"sem-mix00001", "sem-mix00002", "sem-mix00003", "sem-mix00004", "sem-mix00005"} {
			require.NoError(t, storeA.Eject(ctx, pendingToken(id)))
		}
		_, err := storeA.Resolve(ctx, "sem-mix00001", "ok")
		require.NoError(t, err)
		_, err = storeA.Cancel(ctx, "sem-mix00002")
		require.NoError(t, err)

		storeB := purgatory.New(purgatory.WithBackend(backend))
		pending, err := storeB.Recover(ctx)
		require.NoError(t, err)
		assert.Len(t, pending, 3)
		assert.Len(t, storeB.ListAll(), 5)

		resolved, err := storeB.Get("sem-mix00001")
		require.NoError(t, err)
		assert.True(t, resolved.IsResolved())

		cancelled, err := storeB.Get("sem-mix00002")
		require.NoError(t, err)
		assert.True(t, cancelled.IsCancelled())
	})

	t.Run("replaces the ledger, not merges", func(t *testing.T) {
		backend := memory.New()
		seed := purgatory.New(purgatory.WithBackend(backend))
		require.NoError(t, seed.Eject(ctx, pendingToken("sem-rep00001")))

		store := purgatory.New(purgatory.WithBackend(backend))
		// A stray token that was never persisted must not survive recovery.
		store.Attach(nil)
		require.NoError(t, store.Eject(ctx, pendingToken("sem-stray001")))
		store.Attach(backend)

		pending, err := store.Recover(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"sem-rep00001"}, ids(pending))
		_, err = store.Get("sem-stray001")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("no backend leaves the ledger untouched", func(t *testing.T) {
		store := purgatory.New()
		require.NoError(t, store.Eject(ctx, pendingToken("sem-nob00001")))

		pending, err := store.Recover(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
		assert.Len(t, store.ListAll(), 1)
	})

	t.Run("corrupt document is a hard failure", func(t *testing.T) {
		store := purgatory.New(purgatory.WithBackend(&failingBackend{
			loadErr: domain.ErrCorruptDocument,
		}))

		_, err := store.Recover(ctx)
		assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	})
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()
	store := purgatory.New()

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"sem-ord00003", "sem-ord00001", "sem-ord00002"} {
		tok := pendingToken(id)
		tok.CreatedAt = base.Add(time.Duration(2-i) * time.Hour)
		require.NoError(t, store.Eject(ctx, tok))
	}

	assert.Equal(t, []string{"sem-ord00002", "sem-ord00001", "sem-ord00003"}, ids(store.ListAll()))
}

func TestClockInjection(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	store := purgatory.New(
		purgatory.WithBackend(memory.New()),
		purgatory.WithClock(func() time.Time { return frozen }),
	)

	require.NoError(t, store.Eject(ctx, pendingToken("sem-clk00001")))
	res, err := store.Resolve(ctx, "sem-clk00001", nil)
	require.NoError(t, err)
	assert.True(t, res.Token.ResolvedAt.Equal(frozen))
}
