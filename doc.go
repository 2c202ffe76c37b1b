/*
Package purgatory is a durable suspension token store: a mechanism by which
an in-flight computation hands control to an external actor (typically a
human decision-maker) for an unbounded or deadline-bounded period, and later
resumes or is abandoned without losing state across process restarts.

The computation encodes its resumable state into an opaque payload, wraps it
in a Token, and Ejects it into the Store. Some external surface (CLI, chat,
HTTP) later Resolves or Cancels the token; an external scheduler periodically
calls Sweep to void tokens whose deadline elapsed. On process restart the
host calls Recover once, which reloads the ledger from the attached backend
and reconciles any deadlines that passed while the process was down.

The store never interprets the frozen payload, never schedules its own
sweeps, and never removes terminal tokens from the ledger.

# Usage

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/fermata-io/purgatory"
		"github.com/fermata-io/purgatory/internal/adapters/file"
		"github.com/fermata-io/purgatory/pkg/domain"
	)

	func main() {
		ctx := context.Background()

		store := purgatory.New(
			purgatory.WithBackend(file.New("")),
		)

		// Replay whatever survived the last shutdown.
		pending, err := store.Recover(ctx)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("%d decisions still pending", len(pending))

		// Suspend: hand a decision to a human.
		token := domain.NewToken(domain.ReasonApprovalNeeded,
			"Deploy build 1421 to production?",
			domain.WithOptions("deploy", "abort"),
			domain.WithFrozenState([]byte(`{"build":1421}`)),
			domain.WithDeadline(time.Now().Add(4*time.Hour)),
		)
		if err := store.Eject(ctx, token); err != nil {
			log.Fatal(err)
		}

		// ... later, once the human decided:
		res, err := store.Resolve(ctx, token.ID, "deploy")
		if err != nil {
			log.Fatal(err)
		}
		resume(res.FrozenState(), res.Value)
	}
*/
package purgatory
