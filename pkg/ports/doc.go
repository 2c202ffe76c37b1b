/*
Package ports defines the driven ports (interfaces) for the Purgatory store.

The Backend interface decouples the ledger from its persistence technology,
allowing file, Redis, SQLite, or in-memory snapshots to be swapped without
touching lifecycle logic. RunBackendContract provides a reusable conformance
suite that every adapter must pass.
*/
package ports
