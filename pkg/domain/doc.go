/*
Package domain defines the core types of the Purgatory suspension store.

A Token represents one suspended decision point: a computation handed its
resumable state to an external actor and is waiting for a resolution. Tokens
are born pending and reach exactly one terminal status (resolved, cancelled,
or voided), after which they are immutable except for being read.
*/
package domain
