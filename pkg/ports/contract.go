package ports

import (
	"context"
	"testing"
	"time"

	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/fermata-io/purgatory/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBackendContract runs a suite of tests to verify that a Backend
// implementation adheres to the defined interface contract.
func RunBackendContract(t *testing.T, backend Backend) {
	ctx := context.Background()

	t.Run("Load before any Save returns empty default", func(t *testing.T) {
		doc, err := backend.Load(ctx)
		require.NoError(t, err, "an empty slot is not an error")
		require.NotNil(t, doc)
		assert.Equal(t, wire.Version, doc.Version)
		assert.Empty(t, doc.Tokens)
	})

	t.Run("Save and Load", func(t *testing.T) {
		deadline := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		tok := &domain.Token{
			ID:          "sem-contract1",
			Reason:      domain.ReasonApprovalNeeded,
			Severity:    domain.SeverityWarning,
			Prompt:      "Approve the contract test?",
			Options:     []string{"yes", "no"},
			FrozenState: []byte{0xde, 0xad, 0xbe, 0xef},
			CreatedAt:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
			Deadline:    &deadline,
		}

		doc := wire.NewDocument()
		doc.Tokens[tok.ID] = tok

		err := backend.Save(ctx, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := backend.Load(ctx)
		require.NoError(t, err, "Load should not return error")
		require.Contains(t, loaded.Tokens, tok.ID)
		assert.Equal(t, tok, loaded.Tokens[tok.ID])
	})

	t.Run("Save replaces the whole document", func(t *testing.T) {
		first := wire.NewDocument()
		first.Tokens["sem-contract2"] = &domain.Token{
			ID:        "sem-contract2",
			Reason:    domain.ReasonErrorRecovery,
			Severity:  domain.SeverityInfo,
			Prompt:    "p",
			CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, backend.Save(ctx, first))

		second := wire.NewDocument()
		second.Tokens["sem-contract3"] = &domain.Token{
			ID:        "sem-contract3",
			Reason:    domain.ReasonContextRequired,
			Severity:  domain.SeverityInfo,
			Prompt:    "q",
			CreatedAt: time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, backend.Save(ctx, second))

		loaded, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.NotContains(t, loaded.Tokens, "sem-contract2", "old content must not survive a Save")
		assert.Contains(t, loaded.Tokens, "sem-contract3")
	})

	t.Run("Loaded document does not alias saved one", func(t *testing.T) {
		doc := wire.NewDocument()
		doc.Tokens["sem-contract4"] = &domain.Token{
			ID:        "sem-contract4",
			Reason:    domain.ReasonAmbiguousChoice,
			Severity:  domain.SeverityInfo,
			Prompt:    "original",
			CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, backend.Save(ctx, doc))

		loaded, err := backend.Load(ctx)
		require.NoError(t, err)
		loaded.Tokens["sem-contract4"].Prompt = "mutated"

		reloaded, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "original", reloaded.Tokens["sem-contract4"].Prompt)
	})
}
